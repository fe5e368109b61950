package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhn19/NN-Chatbot/IO"
	"github.com/rhn19/NN-Chatbot/batch"
	"github.com/rhn19/NN-Chatbot/params"
	"github.com/rhn19/NN-Chatbot/seq2seq"
	"github.com/rhn19/NN-Chatbot/vocab"
)

func main() {
	rand.Seed(time.Now().UTC().UnixNano())

	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Dialogue corpus preparation and seq2seq model pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(prepareCmd(), vocabCmd(), batchCmd(), modelCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// prepare: raw dialogue corpus -> tab-separated pairs file.
func prepareCmd() *cobra.Command {
	var corpusDir, outFile string
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Extract sentence pairs from the raw dialogue corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(corpusDir); err != nil {
				return fmt.Errorf("data directory does not exist: %w", err)
			}
			return IO.SavePairs(corpusDir, outFile)
		},
	}
	cmd.Flags().StringVar(&corpusDir, "corpus", "data/cornell movie-dialogs corpus", "raw corpus directory")
	cmd.Flags().StringVar(&outFile, "out", "generated/formatted_pairs.txt", "formatted pairs output file")
	return cmd
}

// vocab: pairs file -> trimmed vocabulary JSON + processed pairs.
func vocabCmd() *cobra.Command {
	var datafile, outDir, name string
	var minCount int
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build, trim and persist the vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			voc, pairs, err := IO.BuildVocab(datafile, name, outDir, minCount)
			if err != nil {
				return err
			}
			fmt.Printf("Saved vocab (%d words) and %d processed pairs to %s\n",
				voc.NumWords(), len(pairs), outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&datafile, "pairs", "generated/formatted_pairs.txt", "formatted pairs file")
	cmd.Flags().StringVar(&outDir, "out", "generated", "output directory")
	cmd.Flags().StringVar(&name, "name", "Cornell_Movie", "corpus name")
	cmd.Flags().IntVar(&minCount, "min-count", params.MinWordCount, "minimum word count to survive trimming")
	return cmd
}

// batch: assemble one sanity-check batch from persisted artifacts.
func batchCmd() *cobra.Command {
	var genDir string
	var size int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assemble a sanity-check batch from saved vocab and pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			voc, err := vocab.Load("Cornell_Movie", filepath.Join(genDir, "vocab.json"))
			if err != nil {
				return err
			}
			pairs, err := IO.ReadProcessedPairs(filepath.Join(genDir, "processed_pairs.txt"))
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return fmt.Errorf("no pairs in %s", genDir)
			}

			sample := make([]params.Pair, 0, size)
			for i := 0; i < size; i++ {
				sample = append(sample, pairs[rand.Intn(len(pairs))])
			}
			td, err := batch.Assemble(voc, sample)
			if err != nil {
				return err
			}
			fmt.Println("inputs:", td.Inputs)
			fmt.Println("lengths:", td.Lengths)
			fmt.Println("targets:", td.Targets)
			fmt.Println("mask:", td.Mask)
			fmt.Println("max_target_len:", td.MaxTargetLen)
			return nil
		},
	}
	cmd.Flags().StringVar(&genDir, "gen", "generated", "directory with vocab.json and processed_pairs.txt")
	cmd.Flags().IntVar(&size, "size", 5, "batch size")
	return cmd
}

// model: construct the encoder/decoder and run a smoke forward pass over one
// assembled batch.
func modelCmd() *cobra.Command {
	var genDir, method string
	var size int
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Construct the model and run one encoder/decoder step",
		RunE: func(cmd *cobra.Command, args []string) error {
			voc, err := vocab.Load("Cornell_Movie", filepath.Join(genDir, "vocab.json"))
			if err != nil {
				return err
			}
			pairs, err := IO.ReadProcessedPairs(filepath.Join(genDir, "processed_pairs.txt"))
			if err != nil {
				return err
			}
			if len(pairs) < size {
				return fmt.Errorf("need at least %d pairs", size)
			}
			td, err := batch.Assemble(voc, pairs[:size])
			if err != nil {
				return err
			}

			cfg := params.Config
			embedding := seq2seq.NewEmbedding(cfg.HiddenSize, voc.NumWords())
			enc := seq2seq.NewEncoder(cfg.HiddenSize, cfg.EncoderLayers, embedding)
			dec, err := seq2seq.NewDecoder(method, embedding, cfg.HiddenSize,
				voc.NumWords(), cfg.DecoderLayers, cfg.Dropout)
			if err != nil {
				return err
			}

			encOut, encHidden, err := enc.Forward(td.Inputs, td.Lengths)
			if err != nil {
				return err
			}
			hidden := seq2seq.DecoderInit(encHidden, cfg.DecoderLayers)

			// one decoder step from SOS for every batch element
			input := make([]int, len(td.Lengths))
			for i := range input {
				input[i] = vocab.SOS
			}
			dist, _, err := dec.Step(input, hidden, encOut)
			if err != nil {
				return err
			}
			r, c := dist.Dims()
			fmt.Printf("encoder outputs: %d steps of %dx%d\n", len(encOut), cfg.HiddenSize, len(td.Lengths))
			fmt.Printf("decoder distribution: %dx%d (attention method %s)\n", r, c, method)
			return nil
		},
	}
	cmd.Flags().StringVar(&genDir, "gen", "generated", "directory with vocab.json and processed_pairs.txt")
	cmd.Flags().StringVar(&method, "attn", params.Config.AttnMethod, "attention method: dot, general or concat")
	cmd.Flags().IntVar(&size, "size", 5, "batch size")
	return cmd
}
