package params

// Corpus preparation constants
const (
	// MaxSentLength is the maximum sentence length (in whitespace tokens,
	// before the EOS token) a pair may have on either side to be kept.
	MaxSentLength = 10
	// MinWordCount is the minimum observed count a word needs to survive
	// vocabulary trimming.
	MinWordCount = 3
)

// Pair is one raw (input, target) sentence pair from the dialogue corpus.
type Pair struct {
	Input  string
	Target string
}

type ModelConfig struct {
	HiddenSize    int     // model width; embedding width matches
	EncoderLayers int     // stacked GRU layers in the encoder (per direction)
	DecoderLayers int     // stacked GRU layers in the decoder
	Dropout       float64 // embedding/inter-layer dropout during training
	AttnMethod    string  // "dot", "general" or "concat"
	BatchSize     int     // pairs per training batch
}

// Reasonable defaults for small experiments
var Config = ModelConfig{
	HiddenSize:    500,
	EncoderLayers: 2,
	DecoderLayers: 2,
	Dropout:       0.1,
	AttnMethod:    "dot",
	BatchSize:     64,
}
