package videos

import (
	"errors"
	"math/rand"
	"time"

	"github.com/interviewlens/genuinity/internal/config"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidSampleSize is returned for a non-positive requested sample size
var ErrInvalidSampleSize = errors.New("sample size must be positive")

// Sample selects up to n distinct videos from candidates, uniformly at
// random. The result is a seeded shuffle of the candidate list truncated to
// min(n, len(candidates), sample.max), so for a fixed seed the selection and
// its order are deterministic, also when every candidate is returned.
func Sample(candidates []VideoReference, n int, seed int64) ([]VideoReference, error) {
	if n <= 0 {
		return nil, ErrInvalidSampleSize
	}

	if max := config.Config.Sample.Max; max > 0 && n > max {
		log.Debugf("capping requested sample size %d to configured maximum %d", n, max)
		n = max
	}
	if n > len(candidates) {
		log.Infof("selecting all %d videos (requested %d)", len(candidates), n)
		n = len(candidates)
	}

	shuffled := make([]VideoReference, len(candidates))
	copy(shuffled, candidates)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n], nil
}

// SampleFresh is Sample with a fresh time-based seed, used outside of tests
func SampleFresh(candidates []VideoReference, n int) ([]VideoReference, error) {
	return Sample(candidates, n, time.Now().UnixNano())
}
