package episodes

import (
	"errors"
	"math/rand"
	"testing"
)

func TestClassFrequency(t *testing.T) {
	groups := [][]int{{0, 2}, {2, 3}, {0, 2}}
	counts, err := ClassFrequency(groups, 5)
	if err != nil {
		t.Fatalf("ClassFrequency failed: %v", err)
	}
	want := []int{2, 0, 3, 1, 0}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("counts[%d]: expected %d, got %d (all: %v)", i, want[i], counts[i], counts)
		}
	}
}

func TestClassFrequency_OutOfRange(t *testing.T) {
	if _, err := ClassFrequency([][]int{{0, 5}}, 5); err == nil {
		t.Fatalf("expected error for out-of-range class index")
	}
	if _, err := ClassFrequency(nil, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero classes, got %v", err)
	}
}

func TestClassFrequency_TotalMatchesSampler(t *testing.T) {
	s, err := NewEpisodicSampler(12, 4, 25)
	if err != nil {
		t.Fatalf("NewEpisodicSampler failed: %v", err)
	}
	var groups [][]int
	for g := range s.All(rand.New(rand.NewSource(6))) {
		groups = append(groups, g)
	}
	counts, err := ClassFrequency(groups, 12)
	if err != nil {
		t.Fatalf("ClassFrequency failed: %v", err)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 25*4 {
		t.Fatalf("expected %d selections in total, got %d", 25*4, total)
	}
}
