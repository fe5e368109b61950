package seq2seq

import (
	"math/rand"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSaveLoadRestoresForwardPass(t *testing.T) {
	rand.Seed(21)
	H, V, layers := 6, 10, 2
	enc, dec := smokeModels(t, AttnConcat, H, V, layers)

	inputs := [][]int{{3, 4}, {5, 0}}
	lengths := []int{2, 1}
	encOut, encHidden, err := enc.Forward(inputs, lengths)
	if err != nil {
		t.Fatal(err)
	}
	want, _, err := dec.Step([]int{1, 1}, DecoderInit(encHidden, layers), encOut)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := Save(enc, dec, path); err != nil {
		t.Fatal(err)
	}

	// fresh models with different random weights, then load the checkpoint
	enc2, dec2 := smokeModels(t, AttnConcat, H, V, layers)
	if err := Load(enc2, dec2, path); err != nil {
		t.Fatal(err)
	}

	encOut2, encHidden2, err := enc2.Forward(inputs, lengths)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := dec2.Step([]int{1, 1}, DecoderInit(encHidden2, layers), encOut2)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(want, got, 1e-12) {
		t.Fatal("forward pass differs after checkpoint round trip")
	}
}

func TestLoadRejectsMismatchedModel(t *testing.T) {
	rand.Seed(22)
	enc, dec := smokeModels(t, AttnDot, 6, 10, 1)
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := Save(enc, dec, path); err != nil {
		t.Fatal(err)
	}

	encBig, decBig := smokeModels(t, AttnDot, 8, 10, 1)
	if err := Load(encBig, decBig, path); err == nil {
		t.Fatal("expected dimension mismatch error")
	}

	encOther, decOther := smokeModels(t, AttnGeneral, 6, 10, 1)
	if err := Load(encOther, decOther, path); err == nil {
		t.Fatal("expected attention method mismatch error")
	}
}
