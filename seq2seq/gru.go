// Package seq2seq implements the attention-based encoder-decoder model:
// a bidirectional recurrent encoder, Luong-style attention scoring and a
// single-timestep attentional decoder. All dense math runs on gonum matrices
// laid out (hidden x batch), one column per batch element.
package seq2seq

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/rhn19/NN-Chatbot/utils"
)

// GRUCell holds the gate weights for one recurrent layer.
// W* act on the input (H x in), U* on the previous hidden state (H x H),
// B* are per-gate biases (H x 1).
type GRUCell struct {
	Wz, Wr, Wh *mat.Dense
	Uz, Ur, Uh *mat.Dense
	Bz, Br, Bh *mat.Dense
}

func NewGRUCell(inputSize, hiddenSize int) *GRUCell {
	newW := func(r, c int) *mat.Dense {
		return mat.NewDense(r, c, utils.RandomArray(r*c, float64(c)))
	}
	return &GRUCell{
		Wz: newW(hiddenSize, inputSize),
		Wr: newW(hiddenSize, inputSize),
		Wh: newW(hiddenSize, inputSize),
		Uz: newW(hiddenSize, hiddenSize),
		Ur: newW(hiddenSize, hiddenSize),
		Uh: newW(hiddenSize, hiddenSize),
		Bz: mat.NewDense(hiddenSize, 1, nil),
		Br: mat.NewDense(hiddenSize, 1, nil),
		Bh: mat.NewDense(hiddenSize, 1, nil),
	}
}

// Step advances the cell one timestep.
// x is (in x B), h is (H x B); returns the new hidden state (H x B).
//
//	z = sigmoid(Wz x + Uz h + bz)
//	r = sigmoid(Wr x + Ur h + br)
//	n = tanh(Wh x + Uh (r .* h) + bh)
//	h' = (1 - z) .* n + z .* h
func (c *GRUCell) Step(x, h *mat.Dense) *mat.Dense {
	z := utils.ToDense(utils.Add(utils.Dot(c.Wz, x), utils.Dot(c.Uz, h)))
	utils.AddBias(z, c.Bz)
	z = utils.ToDense(utils.Apply(utils.Sigmoid, z))

	r := utils.ToDense(utils.Add(utils.Dot(c.Wr, x), utils.Dot(c.Ur, h)))
	utils.AddBias(r, c.Br)
	r = utils.ToDense(utils.Apply(utils.Sigmoid, r))

	n := utils.ToDense(utils.Add(utils.Dot(c.Wh, x), utils.Dot(c.Uh, utils.Multiply(r, h))))
	utils.AddBias(n, c.Bh)
	n = utils.ToDense(utils.Apply(utils.Tanh, n))

	// h' = (1-z).*n + z.*h
	hr, hc := h.Dims()
	out := mat.NewDense(hr, hc, nil)
	for i := 0; i < hr; i++ {
		for j := 0; j < hc; j++ {
			zij := z.At(i, j)
			out.Set(i, j, (1.0-zij)*n.At(i, j)+zij*h.At(i, j))
		}
	}
	return out
}

// stepStack runs one timestep through stacked cells. The input to layer l>0
// is the output of layer l-1, with optional inter-layer dropout during
// training. Returns the top-layer output and the new per-layer hidden states.
func stepStack(cells []*GRUCell, x *mat.Dense, hidden []*mat.Dense, dropout float64, training bool) (*mat.Dense, []*mat.Dense) {
	newHidden := make([]*mat.Dense, len(cells))
	layerIn := x
	for l, cell := range cells {
		newHidden[l] = cell.Step(layerIn, hidden[l])
		layerIn = newHidden[l]
		if training && dropout > 0 && l < len(cells)-1 {
			layerIn = dropoutMatrix(layerIn, dropout)
		}
	}
	return layerIn, newHidden
}

// dropoutMatrix applies inverted dropout: zeroed entries are compensated by
// scaling survivors with 1/(1-p), so inference needs no rescaling.
func dropoutMatrix(m *mat.Dense, p float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	keep := 1.0 - p
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rand.Float64() < keep {
				out.Set(i, j, m.At(i, j)/keep)
			}
		}
	}
	return out
}

// embedColumns gathers embedding columns for a row of token ids.
// embedding is (H x V); returns (H x len(ids)).
func embedColumns(embedding *mat.Dense, ids []int) *mat.Dense {
	h, _ := embedding.Dims()
	out := mat.NewDense(h, len(ids), nil)
	for j, id := range ids {
		for i := 0; i < h; i++ {
			out.Set(i, j, embedding.At(i, id))
		}
	}
	return out
}

// NewEmbedding allocates a randomly initialized (hiddenSize x vocabSize)
// embedding matrix, shared between encoder and decoder.
func NewEmbedding(hiddenSize, vocabSize int) *mat.Dense {
	return mat.NewDense(hiddenSize, vocabSize,
		utils.RandomArray(hiddenSize*vocabSize, float64(hiddenSize)))
}
