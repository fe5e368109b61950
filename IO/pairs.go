package IO

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rhn19/NN-Chatbot/params"
	"github.com/rhn19/NN-Chatbot/vocab"
)

// ReadPairs reads a tab-separated pairs file (one pair per line, two fields)
// and normalizes both sides.
func ReadPairs(datafile string) ([]params.Pair, error) {
	f, err := os.Open(datafile)
	if err != nil {
		return nil, fmt.Errorf("IO: read pairs: %w", err)
	}
	defer f.Close()

	slog.Info("reading lines", "file", datafile)
	var pairs []params.Pair
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		fields := strings.SplitN(text, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("IO: read pairs: %s:%d: expected two tab-separated fields", datafile, line)
		}
		pairs = append(pairs, params.Pair{
			Input:  vocab.NormalizeString(fields[0]),
			Target: vocab.NormalizeString(fields[1]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO: read pairs: %w", err)
	}
	return pairs, nil
}

// ReadProcessedPairs reads pairs that were already normalized and saved.
func ReadProcessedPairs(pairfile string) ([]params.Pair, error) {
	f, err := os.Open(pairfile)
	if err != nil {
		return nil, fmt.Errorf("IO: read processed pairs: %w", err)
	}
	defer f.Close()

	var pairs []params.Pair
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		fields := strings.SplitN(sc.Text(), "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("IO: read processed pairs: malformed line %q", sc.Text())
		}
		pairs = append(pairs, params.Pair{Input: fields[0], Target: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO: read processed pairs: %w", err)
	}
	return pairs, nil
}

// WritePairs writes pairs as tab-separated, newline-terminated lines.
// Tabs and newlines inside a field are flattened to spaces so the two-column
// contract holds.
func WritePairs(pairs []params.Pair, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("IO: write pairs: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("IO: write pairs: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", flatten(p.Input), flatten(p.Target)); err != nil {
			return fmt.Errorf("IO: write pairs: %w", err)
		}
	}
	return w.Flush()
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FilterPairs keeps only pairs whose sides are both under the maximum
// sentence length.
func FilterPairs(pairs []params.Pair) []params.Pair {
	out := make([]params.Pair, 0, len(pairs))
	for _, p := range pairs {
		if vocab.FilterPair(p.Input, p.Target) {
			out = append(out, p)
		}
	}
	return out
}

// PrepareData reads the pairs file, filters oversized pairs and scans the rest
// into a fresh vocabulary builder.
func PrepareData(datafile, corpusName string) (*vocab.Builder, []params.Pair, error) {
	pairs, err := ReadPairs(datafile)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("read sentence pairs", "count", len(pairs))

	pairs = FilterPairs(pairs)
	slog.Info("filtered to pairs under max length", "count", len(pairs))

	b := vocab.NewBuilder(corpusName)
	for _, p := range pairs {
		b.AddSentence(p.Input)
		b.AddSentence(p.Target)
	}
	slog.Info("counted words", "words", b.NumWords())
	return b, pairs, nil
}

// TrimRareWords trims the vocabulary and drops every pair that still contains
// a trimmed word on either side.
func TrimRareWords(b *vocab.Builder, pairs []params.Pair, minCount int) []params.Pair {
	b.Trim(minCount)

	keep := make([]params.Pair, 0, len(pairs))
	for _, p := range pairs {
		if allKnown(b, p.Input) && allKnown(b, p.Target) {
			keep = append(keep, p)
		}
	}
	frac := 0.0
	if len(pairs) > 0 {
		frac = float64(len(keep)) / float64(len(pairs))
	}
	slog.Info("dropped pairs with trimmed words",
		"kept", len(keep), "total", len(pairs), "fraction", frac)
	return keep
}

func allKnown(b *vocab.Builder, sentence string) bool {
	for _, w := range strings.Fields(sentence) {
		if !b.Has(w) {
			return false
		}
	}
	return true
}

// BuildVocab runs the whole preparation pipeline: read + filter pairs, build
// and trim the vocabulary, drop pairs with trimmed words, then persist the
// vocabulary JSON and the processed pairs file under outDir.
func BuildVocab(datafile, corpusName, outDir string, minCount int) (*vocab.Vocab, []params.Pair, error) {
	b, pairs, err := PrepareData(datafile, corpusName)
	if err != nil {
		return nil, nil, err
	}
	pairs = TrimRareWords(b, pairs, minCount)
	voc := b.Build()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("IO: build vocab: %w", err)
	}
	if err := vocab.Save(voc, filepath.Join(outDir, "vocab.json")); err != nil {
		return nil, nil, err
	}
	if err := WritePairs(pairs, filepath.Join(outDir, "processed_pairs.txt")); err != nil {
		return nil, nil, err
	}
	return voc, pairs, nil
}
