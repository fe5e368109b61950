package seq2seq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rhn19/NN-Chatbot/utils"
)

// Attention scoring modes (Luong et al.).
const (
	AttnDot     = "dot"
	AttnGeneral = "general"
	AttnConcat  = "concat"
)

// Attn scores a decoder state against every encoder timestep and normalizes
// the scores to weights. Each mode carries only its own parameters.
type Attn struct {
	Method     string
	HiddenSize int

	Wa *mat.Dense // general: (H x H), concat: (H x 2H)
	v  *mat.Dense // concat reduction vector (H x 1)
}

// NewAttn validates the scoring mode at construction; an unrecognized mode
// fails immediately rather than on first use.
func NewAttn(method string, hiddenSize int) (*Attn, error) {
	a := &Attn{Method: method, HiddenSize: hiddenSize}
	switch method {
	case AttnDot:
	case AttnGeneral:
		a.Wa = mat.NewDense(hiddenSize, hiddenSize,
			utils.RandomArray(hiddenSize*hiddenSize, float64(hiddenSize)))
	case AttnConcat:
		a.Wa = mat.NewDense(hiddenSize, 2*hiddenSize,
			utils.RandomArray(hiddenSize*2*hiddenSize, float64(2*hiddenSize)))
		a.v = mat.NewDense(hiddenSize, 1,
			utils.RandomArray(hiddenSize, float64(hiddenSize)))
	default:
		return nil, fmt.Errorf("seq2seq: %q is not a valid attention method", method)
	}
	return a, nil
}

// dotScore sums the elementwise product over the hidden dimension:
// score[b] = sum_i hidden[i,b] * enc[i,b].
func dotScore(hidden, enc *mat.Dense) []float64 {
	r, c := hidden.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		s := 0.0
		for i := 0; i < r; i++ {
			s += hidden.At(i, j) * enc.At(i, j)
		}
		out[j] = s
	}
	return out
}

func (a *Attn) generalScore(hidden, enc *mat.Dense) []float64 {
	energy := utils.ToDense(utils.Dot(a.Wa, enc))
	return dotScore(hidden, energy)
}

func (a *Attn) concatScore(hidden, enc *mat.Dense) []float64 {
	h, b := hidden.Dims()
	cat := mat.NewDense(2*h, b, nil)
	cat.Slice(0, h, 0, b).(*mat.Dense).Copy(hidden)
	cat.Slice(h, 2*h, 0, b).(*mat.Dense).Copy(enc)
	energy := utils.ToDense(utils.Apply(utils.Tanh, utils.Dot(a.Wa, cat)))
	// reduce each column against v
	out := make([]float64, b)
	for j := 0; j < b; j++ {
		s := 0.0
		for i := 0; i < h; i++ {
			s += a.v.At(i, 0) * energy.At(i, j)
		}
		out[j] = s
	}
	return out
}

// Forward computes normalized alignment weights between one decoder state
// (H x B) and the full encoder output sequence (T matrices of H x B).
// Returns a (B x T) matrix; every row sums to 1.
//
// Encoder outputs carry no PAD masking, so callers attending over a padded
// batch must suppress PAD positions themselves.
func (a *Attn) Forward(hidden *mat.Dense, encOutputs []*mat.Dense) *mat.Dense {
	T := len(encOutputs)
	_, B := hidden.Dims()
	energies := mat.NewDense(B, T, nil)
	for t, enc := range encOutputs {
		var scores []float64
		switch a.Method {
		case AttnGeneral:
			scores = a.generalScore(hidden, enc)
		case AttnConcat:
			scores = a.concatScore(hidden, enc)
		default:
			scores = dotScore(hidden, enc)
		}
		for b := 0; b < B; b++ {
			energies.Set(b, t, scores[b])
		}
	}
	return utils.RowSoftmax(energies)
}
