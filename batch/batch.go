// Package batch converts raw sentence pairs into padded, length-sorted,
// masked id matrices ready for the encoder.
package batch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rhn19/NN-Chatbot/params"
	"github.com/rhn19/NN-Chatbot/vocab"
)

// TrainData is one assembled batch. All matrices are time-major: row t holds
// the token at timestep t for every batch element.
type TrainData struct {
	Inputs       [][]int  // (maxInputLen x B) padded input ids
	Lengths      []int    // true input lengths, descending, len == B
	Targets      [][]int  // (MaxTargetLen x B) padded target ids
	Mask         [][]bool // Mask[t][b] == (Targets[t][b] != PAD)
	MaxTargetLen int
}

// ZeroPadding transposes a ragged batch of sequences into a rectangular
// time-major matrix, right-padding shorter sequences with fill.
func ZeroPadding(seqs [][]int, fill int) [][]int {
	maxLen := 0
	for _, s := range seqs {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	out := make([][]int, maxLen)
	for t := 0; t < maxLen; t++ {
		row := make([]int, len(seqs))
		for b, s := range seqs {
			if t < len(s) {
				row[b] = s[t]
			} else {
				row[b] = fill
			}
		}
		out[t] = row
	}
	return out
}

// BinaryMatrix marks non-pad positions of a padded time-major matrix.
func BinaryMatrix(padded [][]int, pad int) [][]bool {
	out := make([][]bool, len(padded))
	for t, row := range padded {
		m := make([]bool, len(row))
		for b, id := range row {
			m[b] = id != pad
		}
		out[t] = m
	}
	return out
}

// SortPairs orders pairs by input token count, descending. The sort is stable
// so ties keep their original order. The encoder's variable-length packing
// requires non-increasing lengths.
func SortPairs(pairs []params.Pair) []params.Pair {
	sorted := make([]params.Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(strings.Fields(sorted[i].Input)) > len(strings.Fields(sorted[j].Input))
	})
	return sorted
}

func inputVar(sentences []string, voc *vocab.Vocab) ([][]int, []int, error) {
	indexes := make([][]int, len(sentences))
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		ids, err := voc.IndexesFromSentence(s)
		if err != nil {
			return nil, nil, err
		}
		indexes[i] = ids
		lengths[i] = len(ids)
	}
	return ZeroPadding(indexes, vocab.PAD), lengths, nil
}

func outputVar(sentences []string, voc *vocab.Vocab) ([][]int, [][]bool, int, error) {
	indexes := make([][]int, len(sentences))
	maxLen := 0
	for i, s := range sentences {
		ids, err := voc.IndexesFromSentence(s)
		if err != nil {
			return nil, nil, 0, err
		}
		indexes[i] = ids
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}
	padded := ZeroPadding(indexes, vocab.PAD)
	return padded, BinaryMatrix(padded, vocab.PAD), maxLen, nil
}

// Assemble sorts a pair batch by descending input length, indexes both sides
// through the frozen vocabulary and returns the padded, masked batch. Any
// out-of-vocabulary token aborts the batch with the lookup error.
func Assemble(voc *vocab.Vocab, pairs []params.Pair) (*TrainData, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("batch: empty pair batch")
	}
	sorted := SortPairs(pairs)

	inputs := make([]string, len(sorted))
	targets := make([]string, len(sorted))
	for i, p := range sorted {
		inputs[i] = p.Input
		targets[i] = p.Target
	}

	inp, lengths, err := inputVar(inputs, voc)
	if err != nil {
		return nil, fmt.Errorf("batch: assemble inputs: %w", err)
	}
	out, mask, maxTargetLen, err := outputVar(targets, voc)
	if err != nil {
		return nil, fmt.Errorf("batch: assemble targets: %w", err)
	}

	return &TrainData{
		Inputs:       inp,
		Lengths:      lengths,
		Targets:      out,
		Mask:         mask,
		MaxTargetLen: maxTargetLen,
	}, nil
}
