package vocab

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	b := NewBuilder("test")
	b.AddSentence("hi there hi friend")
	v := b.Build()

	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, Save(v, path))

	loaded, err := Load("test", path)
	require.NoError(t, err)

	assert.Equal(t, v.NumWords(), loaded.NumWords())
	for _, w := range []string{"hi", "there", "friend"} {
		want, _ := v.Index(w)
		got, ok := loaded.Index(w)
		require.True(t, ok, w)
		assert.Equal(t, want, got, w)
	}
	assert.Equal(t, 2, loaded.Count("hi"))

	// reserved tokens re-inserted at fixed positions
	w, ok := loaded.Word(PAD)
	require.True(t, ok)
	assert.Equal(t, PADToken, w)
	w, ok = loaded.Word(EOS)
	require.True(t, ok)
	assert.Equal(t, EOSToken, w)
}

func TestSaveExcludesReserved(t *testing.T) {
	b := NewBuilder("test")
	b.AddSentence("hi")
	v := b.Build()

	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, Save(v, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var p struct {
		Word2Idx map[string]int    `json:"word2idx"`
		Idx2Word map[string]string `json:"idx2word"`
	}
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.NotContains(t, p.Word2Idx, PADToken)
	assert.NotContains(t, p.Idx2Word, "0")
	assert.NotContains(t, p.Idx2Word, "1")
	assert.NotContains(t, p.Idx2Word, "2")
}

func TestLoadRejectsReservedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	bad := `{"word2idx":{"sneaky":0},"word2cnt":{"sneaky":4},"idx2word":{"0":"sneaky"}}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := Load("test", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved id")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("test", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
