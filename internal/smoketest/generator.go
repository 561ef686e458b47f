package smoketest

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// newRunID returns a short lowercase hex tag that keeps one run's fish apart
// from anything already stored.
func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:runIDLength]
}

// generateBatch builds n fish named Smoke<runID><Species>, returned in a
// random order so the endpoint has to do the sorting.
func generateBatch(runID string, n int) []Fish {
	if n > len(batchSpecies) {
		n = len(batchSpecies)
	}
	batch := make([]Fish, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, Fish{
			Name:   batchNamePrefix + runID + batchSpecies[i],
			Sell:   int64(100 * (i + 1)),
			Shadow: batchShadow,
			Where:  batchWhere,
		})
	}
	rand.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
	return batch
}
