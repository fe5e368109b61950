package batch

import (
	"golang.org/x/sync/errgroup"

	"github.com/rhn19/NN-Chatbot/params"
	"github.com/rhn19/NN-Chatbot/vocab"
)

// AssembleAll splits pairs into consecutive batches of at most batchSize and
// assembles them concurrently. Batches share nothing but the frozen
// vocabulary, so each chunk gets its own goroutine. The first lookup failure
// cancels the remaining work and is returned.
func AssembleAll(voc *vocab.Vocab, pairs []params.Pair, batchSize int) ([]*TrainData, error) {
	if batchSize <= 0 {
		batchSize = params.Config.BatchSize
	}
	n := (len(pairs) + batchSize - 1) / batchSize
	out := make([]*TrainData, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		lo := i * batchSize
		hi := min(lo+batchSize, len(pairs))
		g.Go(func() error {
			td, err := Assemble(voc, pairs[lo:hi])
			if err != nil {
				return err
			}
			out[i] = td
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
