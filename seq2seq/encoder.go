package seq2seq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Encoder is a multi-layer bidirectional GRU over a padded batch.
// Forward and backward direction outputs are merged by elementwise sum, so
// the per-timestep output width stays HiddenSize.
type Encoder struct {
	HiddenSize int
	NumLayers  int
	Embedding  *mat.Dense // (H x V), shared with the decoder

	fwd, bwd []*GRUCell
}

func NewEncoder(hiddenSize, numLayers int, embedding *mat.Dense) *Encoder {
	e := &Encoder{
		HiddenSize: hiddenSize,
		NumLayers:  numLayers,
		Embedding:  embedding,
		fwd:        make([]*GRUCell, numLayers),
		bwd:        make([]*GRUCell, numLayers),
	}
	for l := 0; l < numLayers; l++ {
		e.fwd[l] = NewGRUCell(hiddenSize, hiddenSize)
		e.bwd[l] = NewGRUCell(hiddenSize, hiddenSize)
	}
	return e
}

// checkLengths enforces the packing precondition: one positive length per
// batch element, non-increasing, with the longest matching the time dimension.
func checkLengths(lengths []int, T, B int) error {
	if len(lengths) != B {
		return fmt.Errorf("seq2seq: encoder: %d lengths for batch of %d", len(lengths), B)
	}
	for i, l := range lengths {
		if l <= 0 {
			return fmt.Errorf("seq2seq: encoder: non-positive length %d at %d", l, i)
		}
		if i > 0 && l > lengths[i-1] {
			return fmt.Errorf("seq2seq: encoder: lengths must be non-increasing, got %d after %d", l, lengths[i-1])
		}
	}
	if lengths[0] != T {
		return fmt.Errorf("seq2seq: encoder: max length %d does not match %d timesteps", lengths[0], T)
	}
	return nil
}

// activeCols returns how many batch columns are still live at timestep t.
// Lengths are non-increasing, so the live columns are always a prefix.
func activeCols(lengths []int, t int) int {
	n := 0
	for _, l := range lengths {
		if l > t {
			n++
		} else {
			break
		}
	}
	return n
}

// Forward encodes a time-major padded id matrix (T rows of B ids each) with
// its descending length vector.
//
// Columns past an item's true length never advance (that is the packing), and
// the unpacked outputs hold zeros there; the encoder applies no masking, so
// attention over a padded batch must suppress PAD positions itself.
//
// Returns the per-timestep merged outputs (T matrices of H x B) and the final
// hidden states ordered [layer0 fwd, layer0 bwd, layer1 fwd, ...]; a decoder
// with n layers is seeded from the first n entries.
func (e *Encoder) Forward(inputs [][]int, lengths []int) ([]*mat.Dense, []*mat.Dense, error) {
	T := len(inputs)
	if T == 0 {
		return nil, nil, fmt.Errorf("seq2seq: encoder: empty input batch")
	}
	B := len(inputs[0])
	if err := checkLengths(lengths, T, B); err != nil {
		return nil, nil, err
	}

	// Embed each timestep row up front: X[t] is (H x B).
	X := make([]*mat.Dense, T)
	for t := 0; t < T; t++ {
		X[t] = embedColumns(e.Embedding, inputs[t])
	}

	outF := e.runDirection(e.fwd, X, lengths, false)
	outB := e.runDirection(e.bwd, X, lengths, true)

	outputs := make([]*mat.Dense, T)
	for t := 0; t < T; t++ {
		sum := mat.NewDense(e.HiddenSize, B, nil)
		sum.Add(outF.outputs[t], outB.outputs[t])
		outputs[t] = sum
	}

	hidden := make([]*mat.Dense, 0, 2*e.NumLayers)
	for l := 0; l < e.NumLayers; l++ {
		hidden = append(hidden, outF.hidden[l], outB.hidden[l])
	}
	return outputs, hidden, nil
}

type directionResult struct {
	outputs []*mat.Dense // per-timestep top-layer output, zero past true length
	hidden  []*mat.Dense // per-layer final hidden state
}

// runDirection walks the sequence in one direction, advancing only the
// columns whose true length covers the current timestep. Frozen columns keep
// their last state, which is exactly each item's final hidden state.
func (e *Encoder) runDirection(cells []*GRUCell, X []*mat.Dense, lengths []int, reverse bool) directionResult {
	T := len(X)
	_, B := X[0].Dims()

	h := make([]*mat.Dense, e.NumLayers)
	for l := range h {
		h[l] = mat.NewDense(e.HiddenSize, B, nil)
	}
	outputs := make([]*mat.Dense, T)
	for t := range outputs {
		outputs[t] = mat.NewDense(e.HiddenSize, B, nil)
	}

	for step := 0; step < T; step++ {
		t := step
		if reverse {
			t = T - 1 - step
		}
		n := activeCols(lengths, t)
		if n == 0 {
			continue
		}
		layerIn := X[t].Slice(0, e.HiddenSize, 0, n).(*mat.Dense)
		for l, cell := range cells {
			hAct := h[l].Slice(0, e.HiddenSize, 0, n).(*mat.Dense)
			hNew := cell.Step(layerIn, hAct)
			hAct.Copy(hNew)
			layerIn = hAct
		}
		outputs[t].Slice(0, e.HiddenSize, 0, n).(*mat.Dense).Copy(layerIn)
	}
	return directionResult{outputs: outputs, hidden: h}
}

// DecoderInit takes the first n final hidden states returned by Forward,
// which seeds an n-layer decoder the same way the training pipeline slices
// the encoder's stacked hidden state.
func DecoderInit(hidden []*mat.Dense, n int) []*mat.Dense {
	if n > len(hidden) {
		n = len(hidden)
	}
	out := make([]*mat.Dense, n)
	copy(out, hidden[:n])
	return out
}
