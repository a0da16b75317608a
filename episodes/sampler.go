package episodes

import (
	"fmt"
	"iter"
	"math/rand"
)

// EpisodicSampler produces, for each of NEpisode iterations, a group of
// NClasses distinct class indices drawn uniformly at random from
// [0, TotalClasses). Within one group there are no duplicates; across
// groups classes are drawn with replacement.
//
// The sampler holds no random state of its own. Every draw consumes the
// caller-owned *rand.Rand, so determinism is controlled entirely by the
// seed the caller used and by the order of draws, never by hidden sampler
// state. Iterating All twice with the same rng continues the rng's stream
// and yields a fresh, independent sequence of groups; re-seeding the rng
// reproduces the original sequence exactly.
type EpisodicSampler struct {
	// TotalClasses is the size of the meta-set, e.g. 64/16/20 for the
	// mini-ImageNet train/val/test splits.
	TotalClasses int

	// NClasses is the number of classes per episode (the N in N-way).
	NClasses int

	// NEpisode is the number of groups one full iteration yields.
	NEpisode int
}

// NewEpisodicSampler validates the parameters and returns a sampler.
// NEpisode may be zero, in which case All yields nothing.
func NewEpisodicSampler(totalClasses, nClasses, nEpisode int) (*EpisodicSampler, error) {
	if totalClasses <= 0 {
		return nil, fmt.Errorf("total classes must be positive, got %d: %w", totalClasses, ErrConfig)
	}
	if nClasses <= 0 || nClasses > totalClasses {
		return nil, fmt.Errorf("n_classes %d out of range (0, %d]: %w", nClasses, totalClasses, ErrConfig)
	}
	if nEpisode < 0 {
		return nil, fmt.Errorf("n_episode must be non-negative, got %d: %w", nEpisode, ErrConfig)
	}
	return &EpisodicSampler{
		TotalClasses: totalClasses,
		NClasses:     nClasses,
		NEpisode:     nEpisode,
	}, nil
}

// Group draws one episode's class indices: a fresh random permutation of
// [0, TotalClasses) truncated to the first NClasses entries.
func (s *EpisodicSampler) Group(rng *rand.Rand) []int {
	perm := rng.Perm(s.TotalClasses)
	group := make([]int, s.NClasses)
	copy(group, perm)
	return group
}

// All returns a lazy sequence of exactly NEpisode groups. Stopping the
// iteration early simply stops drawing; nothing needs to be cleaned up.
func (s *EpisodicSampler) All(rng *rand.Rand) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for range s.NEpisode {
			if !yield(s.Group(rng)) {
				return
			}
		}
	}
}

// Len returns the number of episodes one full iteration of All yields.
func (s *EpisodicSampler) Len() int { return s.NEpisode }
