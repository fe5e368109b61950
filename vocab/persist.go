package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// persisted is the on-disk vocabulary schema. Reserved PAD/SOS/EOS tokens are
// excluded; the loader re-inserts them at fixed ids. idx2word keys are decimal
// strings because the format is a plain JSON object.
type persisted struct {
	Word2Idx map[string]int    `json:"word2idx"`
	Word2Cnt map[string]int    `json:"word2cnt"`
	Idx2Word map[string]string `json:"idx2word"`
}

// Save writes the vocabulary to path as JSON, excluding reserved tokens.
func Save(v *Vocab, path string) error {
	p := persisted{
		Word2Idx: make(map[string]int, len(v.word2idx)),
		Word2Cnt: make(map[string]int, len(v.word2cnt)),
		Idx2Word: make(map[string]string, len(v.word2idx)),
	}
	for w, id := range v.word2idx {
		p.Word2Idx[w] = id
		p.Idx2Word[strconv.Itoa(id)] = w
	}
	for w, c := range v.word2cnt {
		p.Word2Cnt[w] = c
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vocab: save %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// Load reads a persisted vocabulary and re-inserts the reserved tokens at
// their fixed positions. It fails if the persisted data already claims any
// reserved id. The result is frozen.
func Load(name, path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: load %s: %w", path, err)
	}
	defer f.Close()

	var p persisted
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("vocab: load %s: %w", path, err)
	}

	v := &Vocab{
		Name:     name,
		word2idx: make(map[string]int, len(p.Word2Idx)),
		word2cnt: make(map[string]int, len(p.Word2Cnt)),
		idx2word: map[int]string{PAD: PADToken, SOS: SOSToken, EOS: EOSToken},
	}
	for w, id := range p.Word2Idx {
		if id == PAD || id == SOS || id == EOS {
			return nil, fmt.Errorf("vocab: load %s: word %q uses reserved id %d", path, w, id)
		}
		v.word2idx[w] = id
	}
	for w, c := range p.Word2Cnt {
		v.word2cnt[w] = c
	}
	for k, w := range p.Idx2Word {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("vocab: load %s: bad index key %q", path, k)
		}
		if id == PAD || id == SOS || id == EOS {
			return nil, fmt.Errorf("vocab: load %s: word %q uses reserved id %d", path, w, id)
		}
		v.idx2word[id] = w
	}
	v.numWords = len(v.idx2word)
	return v, nil
}
