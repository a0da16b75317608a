package episodes

import "fmt"

// ClassFrequency counts how many episodes selected each class index across
// a sequence of groups. The result has one entry per class in
// [0, totalClasses); with a uniform sampler the counts should flatten out
// as the number of groups grows.
func ClassFrequency(groups [][]int, totalClasses int) ([]int, error) {
	if totalClasses <= 0 {
		return nil, fmt.Errorf("total classes must be positive, got %d: %w", totalClasses, ErrConfig)
	}
	counts := make([]int, totalClasses)
	for g, group := range groups {
		for _, idx := range group {
			if idx < 0 || idx >= totalClasses {
				return nil, fmt.Errorf("group %d: class index %d out of range [0, %d)", g, idx, totalClasses)
			}
			counts[idx]++
		}
	}
	return counts, nil
}
