package vocab

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhn19/NN-Chatbot/params"
)

// Reserved token indices. Persisted vocabularies exclude these; they are
// re-inserted at fixed positions on load.
const (
	PAD = 0 // padding token
	SOS = 1 // start of sequence
	EOS = 2 // end of sequence
)

const (
	PADToken = "<PAD>"
	SOSToken = "<SOS>"
	EOSToken = "<EOS>"
)

// TokenNotFoundError reports a word absent from a frozen vocabulary during
// indexing. There is no unknown-token fallback: callers are expected to have
// excluded such pairs via trimming before indexing.
type TokenNotFoundError struct {
	Token string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("vocab: token %q not in vocabulary", e.Token)
}

// Builder accumulates words during the corpus scan. It is single-writer and
// not safe for concurrent use; call Build to obtain the frozen read-only view.
type Builder struct {
	name     string
	trimmed  bool
	word2idx map[string]int
	word2cnt map[string]int
	idx2word map[int]string
	numWords int
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		word2idx: map[string]int{},
		word2cnt: map[string]int{},
		idx2word: map[int]string{PAD: PADToken, SOS: SOSToken, EOS: EOSToken},
		numWords: 3,
	}
}

// AddWord assigns the next sequential index to an unseen word, or increments
// the word's count otherwise.
func (b *Builder) AddWord(word string) {
	if _, ok := b.word2idx[word]; !ok {
		b.word2idx[word] = b.numWords
		b.word2cnt[word] = 1
		b.idx2word[b.numWords] = word
		b.numWords++
	} else {
		b.word2cnt[word]++
	}
}

// AddSentence splits on whitespace and adds every token.
func (b *Builder) AddSentence(sentence string) {
	for _, word := range strings.Fields(sentence) {
		b.AddWord(word)
	}
}

// Has reports whether a word is currently in the vocabulary.
func (b *Builder) Has(word string) bool {
	_, ok := b.word2idx[word]
	return ok
}

// NumWords returns the current vocabulary size including reserved tokens.
func (b *Builder) NumWords() int { return b.numWords }

// Trim drops words seen fewer than minCount times and rebuilds the maps,
// re-adding survivors in their original first-seen order. It is terminal-once:
// a second call is a no-op. Survivor counts are reset to 1 by the rebuild;
// that matches the persisted artifacts this pipeline has always produced, so
// it is kept as-is.
func (b *Builder) Trim(minCount int) {
	if b.trimmed {
		return
	}
	b.trimmed = true

	// Walk indices 3..numWords-1 so survivors keep first-seen order.
	keepWords := make([]string, 0, b.numWords-3)
	for i := 3; i < b.numWords; i++ {
		w := b.idx2word[i]
		if b.word2cnt[w] >= minCount {
			keepWords = append(keepWords, w)
		}
	}

	total := len(b.word2cnt)
	ratio := 0.0
	if total > 0 { // empty vocabulary: nothing to report a fraction of
		ratio = float64(len(keepWords)) / float64(total)
	}
	slog.Info("vocab trimmed", "name", b.name, "kept", len(keepWords),
		"total", total, "ratio", ratio)

	b.word2idx = map[string]int{}
	b.word2cnt = map[string]int{}
	b.idx2word = map[int]string{PAD: PADToken, SOS: SOSToken, EOS: EOSToken}
	b.numWords = 3

	for _, w := range keepWords {
		b.AddWord(w)
	}
}

// Build freezes the builder and returns the read-only vocabulary. The builder
// must not be mutated afterwards.
func (b *Builder) Build() *Vocab {
	b.trimmed = true
	return &Vocab{
		Name:     b.name,
		word2idx: b.word2idx,
		word2cnt: b.word2cnt,
		idx2word: b.idx2word,
		numWords: b.numWords,
	}
}

// Vocab is a frozen vocabulary. It is safe for concurrent readers.
type Vocab struct {
	Name     string
	word2idx map[string]int
	word2cnt map[string]int
	idx2word map[int]string
	numWords int
}

// NumWords returns the vocabulary size including the three reserved tokens.
func (v *Vocab) NumWords() int { return v.numWords }

// Index returns the id for a word. Reserved tokens are resolvable by name.
func (v *Vocab) Index(word string) (int, bool) {
	switch word {
	case PADToken:
		return PAD, true
	case SOSToken:
		return SOS, true
	case EOSToken:
		return EOS, true
	}
	id, ok := v.word2idx[word]
	return id, ok
}

// Word returns the token at an index.
func (v *Vocab) Word(idx int) (string, bool) {
	w, ok := v.idx2word[idx]
	return w, ok
}

// Count returns the observed count for a non-reserved word.
func (v *Vocab) Count(word string) int { return v.word2cnt[word] }

// IndexesFromSentence maps each whitespace token to its index and appends EOS.
// Any token absent from the vocabulary fails with *TokenNotFoundError.
func (v *Vocab) IndexesFromSentence(sentence string) ([]int, error) {
	words := strings.Fields(sentence)
	out := make([]int, 0, len(words)+1)
	for _, w := range words {
		id, ok := v.word2idx[w]
		if !ok {
			return nil, &TokenNotFoundError{Token: w}
		}
		out = append(out, id)
	}
	return append(out, EOS), nil
}

// FilterPair keeps a pair only if both sides have strictly fewer than
// params.MaxSentLength whitespace tokens (the last slot is reserved for EOS).
func FilterPair(input, target string) bool {
	return len(strings.Fields(input)) < params.MaxSentLength &&
		len(strings.Fields(target)) < params.MaxSentLength
}
