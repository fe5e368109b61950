package seq2seq

import (
	"math"
	"math/rand"
	"testing"
)

func TestEncoderShapes(t *testing.T) {
	rand.Seed(1)
	H, layers := 8, 2
	V := 10
	enc := NewEncoder(H, layers, NewEmbedding(H, V))

	// 3 timesteps, batch of 2, lengths descending
	inputs := [][]int{{3, 4}, {5, 6}, {7, 0}}
	lengths := []int{3, 2}

	outputs, hidden, err := enc.Forward(inputs, lengths)
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 3 {
		t.Fatalf("got %d output steps, want 3", len(outputs))
	}
	for ti, o := range outputs {
		r, c := o.Dims()
		if r != H || c != 2 {
			t.Fatalf("output %d is %dx%d, want %dx%d", ti, r, c, H, 2)
		}
	}
	if len(hidden) != 2*layers {
		t.Fatalf("got %d hidden states, want %d", len(hidden), 2*layers)
	}
}

// Timesteps past an item's true length must carry no signal after unpacking.
func TestEncoderZerosPastLength(t *testing.T) {
	rand.Seed(2)
	H := 4
	enc := NewEncoder(H, 1, NewEmbedding(H, 10))

	inputs := [][]int{{3, 4}, {5, 6}, {7, 0}}
	lengths := []int{3, 2}

	outputs, _, err := enc.Forward(inputs, lengths)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < H; i++ {
		if v := outputs[2].At(i, 1); v != 0 {
			t.Fatalf("output[2][%d,1]=%g past true length, want 0", i, v)
		}
		if v := outputs[2].At(i, 0); v == 0 {
			t.Fatalf("output[2][%d,0]=0 within true length, want signal", i)
		}
	}
}

func TestEncoderRejectsBadLengths(t *testing.T) {
	enc := NewEncoder(4, 1, NewEmbedding(4, 10))
	inputs := [][]int{{3, 4}, {5, 6}}

	cases := []struct {
		name    string
		lengths []int
	}{
		{"wrong count", []int{2}},
		{"increasing", []int{1, 2}},
		{"zero length", []int{2, 0}},
		{"max mismatch", []int{1, 1}},
	}
	for _, c := range cases {
		if _, _, err := enc.Forward(inputs, c.lengths); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

// The merged output must equal the sum of what each direction would produce,
// checked indirectly: a batch of one full-length item has the same output
// whether alone or alongside a shorter item, because packing freezes only the
// short item's columns.
func TestEncoderPackingIsolation(t *testing.T) {
	rand.Seed(3)
	H := 6
	emb := NewEmbedding(H, 10)
	enc := NewEncoder(H, 2, emb)

	full := [][]int{{3}, {5}, {7}}
	both := [][]int{{3, 4}, {5, 6}, {7, 0}}

	aloneOut, aloneHidden, err := enc.Forward(full, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	bothOut, bothHidden, err := enc.Forward(both, []int{3, 2})
	if err != nil {
		t.Fatal(err)
	}

	const tol = 1e-12
	for ti := range aloneOut {
		for i := 0; i < H; i++ {
			a := aloneOut[ti].At(i, 0)
			b := bothOut[ti].At(i, 0)
			if math.Abs(a-b) > tol {
				t.Fatalf("output[%d][%d] differs: alone=%g batched=%g", ti, i, a, b)
			}
		}
	}
	for l := range aloneHidden {
		for i := 0; i < H; i++ {
			if math.Abs(aloneHidden[l].At(i, 0)-bothHidden[l].At(i, 0)) > tol {
				t.Fatalf("hidden[%d][%d] differs between alone and batched runs", l, i)
			}
		}
	}
}

func TestDecoderInit(t *testing.T) {
	rand.Seed(4)
	enc := NewEncoder(4, 2, NewEmbedding(4, 10))
	_, hidden, err := enc.Forward([][]int{{3}}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	init := DecoderInit(hidden, 2)
	if len(init) != 2 {
		t.Fatalf("got %d states, want 2", len(init))
	}
	if init[0] != hidden[0] || init[1] != hidden[1] {
		t.Fatal("DecoderInit must take the leading hidden states in order")
	}
}
