// Package proto implements a nearest-centroid few-shot baseline: class
// centroids are computed from an episode's support set and query examples
// are classified by the closest centroid in feature space. It is a small,
// self-contained pure-Go evaluator (no deep-learning backend) useful for
// smoke-testing episodes and as a floor for learned models.
package proto

import (
	"errors"
	"fmt"

	"github.com/Noofbiz/metaBowl/episodes"
)

// Centroids computes one mean support vector per class from a materialized
// episode. The result has shape [n_classes][example_size], indexed by the
// episode-local label.
func Centroids(ep *episodes.EpisodeFlat) ([][]float32, error) {
	if ep == nil {
		return nil, errors.New("episode is nil")
	}
	dim := ep.ExampleSize()
	if dim == 0 || ep.NClasses == 0 || ep.KShot == 0 {
		return nil, errors.New("episode has no support examples")
	}

	centroids := make([][]float32, ep.NClasses)
	counts := make([]int, ep.NClasses)
	for i := range centroids {
		centroids[i] = make([]float32, dim)
	}
	rows := len(ep.Support) / dim
	for r := 0; r < rows; r++ {
		label := int(ep.SupportLabels[r])
		if label < 0 || label >= ep.NClasses {
			return nil, fmt.Errorf("support row %d: label %d out of range [0, %d)", r, label, ep.NClasses)
		}
		vec := ep.Support[r*dim : (r+1)*dim]
		acc := centroids[label]
		for i, v := range vec {
			acc[i] += v
		}
		counts[label]++
	}
	for label, count := range counts {
		if count == 0 {
			return nil, fmt.Errorf("class label %d has no support examples", label)
		}
		inv := float32(1.0 / float64(count))
		for i := range centroids[label] {
			centroids[label][i] *= inv
		}
	}
	return centroids, nil
}

// Classify returns the label of the centroid nearest to vec under squared
// euclidean distance.
func Classify(centroids [][]float32, vec []float32) (int, error) {
	if len(centroids) == 0 {
		return 0, errors.New("no centroids")
	}
	best := -1
	var bestDist float64
	for label, c := range centroids {
		if len(c) != len(vec) {
			return 0, fmt.Errorf("centroid %d has dimension %d, query has %d", label, len(c), len(vec))
		}
		var dist float64
		for i := range vec {
			d := float64(vec[i] - c[i])
			dist += d * d
		}
		if best < 0 || dist < bestDist {
			best = label
			bestDist = dist
		}
	}
	return best, nil
}

// EvaluateEpisode runs nearest-centroid classification over the episode's
// query set and returns the fraction of correctly labeled examples.
func EvaluateEpisode(ep *episodes.EpisodeFlat) (float64, error) {
	centroids, err := Centroids(ep)
	if err != nil {
		return 0, err
	}
	dim := ep.ExampleSize()
	rows := len(ep.Query) / dim
	if rows == 0 {
		return 0, errors.New("episode has no query examples")
	}
	correct := 0
	for r := 0; r < rows; r++ {
		vec := ep.Query[r*dim : (r+1)*dim]
		pred, err := Classify(centroids, vec)
		if err != nil {
			return 0, err
		}
		if pred == int(ep.QueryLabels[r]) {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}
