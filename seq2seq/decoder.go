package seq2seq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rhn19/NN-Chatbot/utils"
)

// Decoder is the single-timestep attentional decoder. The hidden state is an
// explicit input/output: the caller drives the autoregressive or
// teacher-forced loop and owns the state between steps.
type Decoder struct {
	HiddenSize int
	OutputSize int // vocabulary size
	NumLayers  int
	Dropout    float64
	Training   bool // dropout is active only while true

	Embedding *mat.Dense // (H x V), shared with the encoder
	cells     []*GRUCell
	attn      *Attn

	Wconcat *mat.Dense // Luong eq. 5: (H x 2H)
	Bconcat *mat.Dense
	Wout    *mat.Dense // Luong eq. 6: (V x H)
	Bout    *mat.Dense
}

func NewDecoder(attnMethod string, embedding *mat.Dense, hiddenSize, outputSize, numLayers int, dropout float64) (*Decoder, error) {
	attn, err := NewAttn(attnMethod, hiddenSize)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		HiddenSize: hiddenSize,
		OutputSize: outputSize,
		NumLayers:  numLayers,
		Dropout:    dropout,
		Embedding:  embedding,
		cells:      make([]*GRUCell, numLayers),
		attn:       attn,
		Wconcat: mat.NewDense(hiddenSize, 2*hiddenSize,
			utils.RandomArray(hiddenSize*2*hiddenSize, float64(2*hiddenSize))),
		Bconcat: mat.NewDense(hiddenSize, 1, nil),
		Wout: mat.NewDense(outputSize, hiddenSize,
			utils.RandomArray(outputSize*hiddenSize, float64(hiddenSize))),
		Bout: mat.NewDense(outputSize, 1, nil),
	}
	for l := 0; l < numLayers; l++ {
		d.cells[l] = NewGRUCell(hiddenSize, hiddenSize)
	}
	return d, nil
}

// Step advances the decoder one timestep.
//
//  1. Embed the current input token per batch element; dropout while training.
//  2. One step through the stacked unidirectional GRU.
//  3. Attention weights between the step output and all encoder outputs.
//  4. Context = attention-weighted sum of encoder outputs.
//  5. Concat(step output, context) through linear+tanh (Luong eq. 5).
//  6. Project to vocabulary logits, softmax per batch column (Luong eq. 6).
//
// input holds one token id per batch element; hidden holds NumLayers states
// of (H x B). Returns the (V x B) distribution and the updated hidden state.
// Target-side PAD positions are not masked here: loss computation must use
// the batch mask.
func (d *Decoder) Step(input []int, hidden []*mat.Dense, encOutputs []*mat.Dense) (*mat.Dense, []*mat.Dense, error) {
	if len(hidden) != d.NumLayers {
		return nil, nil, fmt.Errorf("seq2seq: decoder: %d hidden states for %d layers", len(hidden), d.NumLayers)
	}
	if len(encOutputs) == 0 {
		return nil, nil, fmt.Errorf("seq2seq: decoder: empty encoder outputs")
	}
	if _, b := hidden[0].Dims(); b != len(input) {
		return nil, nil, fmt.Errorf("seq2seq: decoder: %d input tokens for batch of %d", len(input), b)
	}

	embedded := embedColumns(d.Embedding, input)
	if d.Training && d.Dropout > 0 {
		embedded = dropoutMatrix(embedded, d.Dropout)
	}

	gruOut, newHidden := stepStack(d.cells, embedded, hidden, d.Dropout, d.Training)

	weights := d.attn.Forward(gruOut, encOutputs) // (B x T)

	// context[:,b] = sum_t weights[b,t] * encOutputs[t][:,b]
	_, B := gruOut.Dims()
	context := mat.NewDense(d.HiddenSize, B, nil)
	for t, enc := range encOutputs {
		for b := 0; b < B; b++ {
			w := weights.At(b, t)
			if w == 0 {
				continue
			}
			for i := 0; i < d.HiddenSize; i++ {
				context.Set(i, b, context.At(i, b)+w*enc.At(i, b))
			}
		}
	}

	cat := mat.NewDense(2*d.HiddenSize, B, nil)
	cat.Slice(0, d.HiddenSize, 0, B).(*mat.Dense).Copy(gruOut)
	cat.Slice(d.HiddenSize, 2*d.HiddenSize, 0, B).(*mat.Dense).Copy(context)

	concatOut := utils.ToDense(utils.Dot(d.Wconcat, cat))
	utils.AddBias(concatOut, d.Bconcat)
	concatOut = utils.ToDense(utils.Apply(utils.Tanh, concatOut))

	logits := utils.ToDense(utils.Dot(d.Wout, concatOut))
	utils.AddBias(logits, d.Bout)

	return utils.ColSoftmax(logits), newHidden, nil
}
