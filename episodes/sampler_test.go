package episodes

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewEpisodicSampler_Validation(t *testing.T) {
	cases := []struct {
		name                      string
		total, nClasses, nEpisode int
	}{
		{"zero total", 0, 1, 1},
		{"negative total", -1, 1, 1},
		{"zero n_classes", 10, 0, 1},
		{"n_classes above total", 10, 11, 1},
		{"negative n_episode", 10, 5, -1},
	}
	for _, tc := range cases {
		_, err := NewEpisodicSampler(tc.total, tc.nClasses, tc.nEpisode)
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("%s: expected ErrConfig, got %v", tc.name, err)
		}
	}
}

func TestEpisodicSampler_GroupProperties(t *testing.T) {
	s, err := NewEpisodicSampler(20, 7, 50)
	if err != nil {
		t.Fatalf("NewEpisodicSampler failed: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	for ep := 0; ep < 50; ep++ {
		group := s.Group(rng)
		if len(group) != 7 {
			t.Fatalf("episode %d: expected group size 7, got %d", ep, len(group))
		}
		seen := make(map[int]bool)
		for _, idx := range group {
			if idx < 0 || idx >= 20 {
				t.Fatalf("episode %d: class index %d out of range [0, 20)", ep, idx)
			}
			if seen[idx] {
				t.Fatalf("episode %d: duplicate class index %d", ep, idx)
			}
			seen[idx] = true
		}
	}
}

func TestEpisodicSampler_ZeroEpisodes(t *testing.T) {
	s, err := NewEpisodicSampler(10, 5, 0)
	if err != nil {
		t.Fatalf("n_episode=0 should be accepted: %v", err)
	}
	count := 0
	for range s.All(rand.New(rand.NewSource(1))) {
		count++
	}
	if count != 0 {
		t.Fatalf("expected zero episodes, got %d", count)
	}
}

func TestEpisodicSampler_ExactLengthAndDeterminism(t *testing.T) {
	// total_classes=10, n_classes=5, n_episode=3, seed=42: exactly 3
	// groups, each a 5-element subset of {0..9}, fully determined by seed.
	s, err := NewEpisodicSampler(10, 5, 3)
	if err != nil {
		t.Fatalf("NewEpisodicSampler failed: %v", err)
	}

	collect := func(seed int64) [][]int {
		var groups [][]int
		for g := range s.All(rand.New(rand.NewSource(seed))) {
			groups = append(groups, g)
		}
		return groups
	}

	a := collect(42)
	b := collect(42)
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("expected 3 episodes, got %d and %d", len(a), len(b))
	}
	for ep := range a {
		for i := range a[ep] {
			if a[ep][i] != b[ep][i] {
				t.Fatalf("same seed diverged at episode %d: %v vs %v", ep, a[ep], b[ep])
			}
		}
	}

	c := collect(43)
	same := true
	for ep := range a {
		for i := range a[ep] {
			if a[ep][i] != c[ep][i] {
				same = false
			}
		}
	}
	if same {
		t.Fatalf("different seeds produced identical sequences: %v", a)
	}
}

func TestEpisodicSampler_RestartableIndependentDraws(t *testing.T) {
	s, err := NewEpisodicSampler(30, 5, 10)
	if err != nil {
		t.Fatalf("NewEpisodicSampler failed: %v", err)
	}
	rng := rand.New(rand.NewSource(5))

	first, second := 0, 0
	for range s.All(rng) {
		first++
	}
	for range s.All(rng) {
		second++
	}
	if first != 10 || second != 10 {
		t.Fatalf("each iteration must yield n_episode groups, got %d and %d", first, second)
	}
}

func TestEpisodicSampler_EarlyTermination(t *testing.T) {
	s, err := NewEpisodicSampler(10, 3, 100)
	if err != nil {
		t.Fatalf("NewEpisodicSampler failed: %v", err)
	}
	count := 0
	for range s.All(rand.New(rand.NewSource(9))) {
		count++
		if count == 4 {
			break
		}
	}
	if count != 4 {
		t.Fatalf("expected to stop after 4 episodes, got %d", count)
	}
}
