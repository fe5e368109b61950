package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhn19/NN-Chatbot/params"
	"github.com/rhn19/NN-Chatbot/vocab"
)

func testVocab(t *testing.T, sentences ...string) *vocab.Vocab {
	t.Helper()
	b := vocab.NewBuilder("test")
	for _, s := range sentences {
		b.AddSentence(s)
	}
	return b.Build()
}

func TestZeroPadding(t *testing.T) {
	got := ZeroPadding([][]int{{1, 2, 3}, {4, 5}}, 0)
	assert.Equal(t, [][]int{{1, 4}, {2, 5}, {3, 0}}, got)
}

func TestBinaryMatrix(t *testing.T) {
	got := BinaryMatrix([][]int{{1, 4}, {2, 5}, {3, 0}}, 0)
	assert.Equal(t, [][]bool{{true, true}, {true, true}, {true, false}}, got)
}

func TestAssemble(t *testing.T) {
	voc := testVocab(t, "hi there") // hi=3 there=4
	pairs := []params.Pair{
		{Input: "hi there", Target: "hi"},
		{Input: "hi", Target: "hi there"},
	}

	td, err := Assemble(voc, pairs)
	require.NoError(t, err)

	// already in descending input-length order
	assert.Equal(t, []int{3, 2}, td.Lengths)
	require.Len(t, td.Inputs, 3)
	assert.Equal(t, []int{3, 3}, td.Inputs[0])
	assert.Equal(t, []int{4, 2}, td.Inputs[1])
	assert.Equal(t, []int{2, vocab.PAD}, td.Inputs[2]) // column 2 padded in row 3

	assert.Equal(t, 3, td.MaxTargetLen)
	require.Len(t, td.Targets, 3)
	assert.Equal(t, []int{3, 3}, td.Targets[0])
	assert.Equal(t, []int{2, 4}, td.Targets[1])
	assert.Equal(t, []int{vocab.PAD, 2}, td.Targets[2])

	// mask is derived purely from padded target content
	for ti, row := range td.Targets {
		for bi, id := range row {
			assert.Equal(t, id != vocab.PAD, td.Mask[ti][bi])
		}
	}
}

func TestAssembleSortsDescending(t *testing.T) {
	voc := testVocab(t, "a b c d")
	pairs := []params.Pair{
		{Input: "a", Target: "a"},
		{Input: "a b c", Target: "a"},
		{Input: "a b", Target: "a"},
	}
	td, err := Assemble(voc, pairs)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2}, td.Lengths)
}

func TestSortPairsStableOnTies(t *testing.T) {
	pairs := []params.Pair{
		{Input: "a b", Target: "first"},
		{Input: "c d", Target: "second"},
		{Input: "e f", Target: "third"},
	}
	sorted := SortPairs(pairs)
	assert.Equal(t, "first", sorted[0].Target)
	assert.Equal(t, "second", sorted[1].Target)
	assert.Equal(t, "third", sorted[2].Target)
}

func TestAssembleUnknownTokenAborts(t *testing.T) {
	voc := testVocab(t, "hi")
	_, err := Assemble(voc, []params.Pair{{Input: "hi stranger", Target: "hi"}})
	require.Error(t, err)
	var notFound *vocab.TokenNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestAssembleAll(t *testing.T) {
	voc := testVocab(t, "a b c d e")
	var pairs []params.Pair
	for i := 0; i < 10; i++ {
		pairs = append(pairs, params.Pair{Input: "a b c", Target: "d e"})
	}

	batches, err := AssembleAll(voc, pairs, 4)
	require.NoError(t, err)
	require.Len(t, batches, 3) // 4 + 4 + 2

	single, err := Assemble(voc, pairs[:4])
	require.NoError(t, err)
	assert.Equal(t, single, batches[0])
	assert.Len(t, batches[2].Lengths, 2)
}

func TestAssembleAllPropagatesLookupFailure(t *testing.T) {
	voc := testVocab(t, "a")
	pairs := []params.Pair{
		{Input: "a", Target: "a"},
		{Input: "unknown", Target: "a"},
	}
	_, err := AssembleAll(voc, pairs, 1)
	require.Error(t, err)
	var notFound *vocab.TokenNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
