package episodes

import (
	"fmt"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Policy selects how a materialized episode is aggregated into tensors.
type Policy int

const (
	// ClassAsTask keeps per-class grouping: support and query tensors
	// carry a leading class axis of size n_classes.
	ClassAsTask Policy = iota

	// DatasetAsTask flattens across classes into single support and query
	// tensors of n_classes*k_shot and n_classes*k_eval examples,
	// preserving per-example label alignment.
	DatasetAsTask
)

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "class-as-task":
		return ClassAsTask, nil
	case "dataset-as-task":
		return DatasetAsTask, nil
	default:
		return 0, fmt.Errorf("unknown aggregation policy %q: %w", s, ErrConfig)
	}
}

func (p Policy) String() string {
	switch p {
	case ClassAsTask:
		return "class-as-task"
	case DatasetAsTask:
		return "dataset-as-task"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// TransformFunc decodes one example reference into a flat float32 buffer
// plus its shape, e.g. ([3*84*84]float32, [3 84 84]) for an RGB image.
// Different gomlx versions expose different tensor constructors, so the
// pipeline moves flat buffers with shape metadata around and converts to
// tensors in one place (EpisodeFlat.ToGomlxTensors).
type TransformFunc func(path string) (buf []float32, dims []int, err error)

// Builder materializes episodes: given a group of selected class indices it
// draws k_shot+k_eval examples per class, decodes them through Transform
// and partitions the result into support and query halves.
type Builder struct {
	// Set is the meta-set the class indices refer to.
	Set *MetaSet

	// KShot is the number of support examples per class.
	KShot int

	// KEval is the number of query examples per class.
	KEval int

	// Policy selects the tensor aggregation (class-as-task or
	// dataset-as-task).
	Policy Policy

	// Transform decodes one example path into a flat buffer. Required.
	Transform TransformFunc

	// Workers bounds the number of goroutines decoding one episode's
	// examples. Zero or one means strictly serial decoding. The draw
	// order, and therefore rng determinism, is the same for any value.
	Workers int
}

// NewBuilder validates the episode parameters and returns a Builder.
func NewBuilder(set *MetaSet, kShot, kEval int, policy Policy, transform TransformFunc) (*Builder, error) {
	if set == nil {
		return nil, fmt.Errorf("meta-set is nil: %w", ErrConfig)
	}
	if kShot < 1 {
		return nil, fmt.Errorf("k_shot must be at least 1, got %d: %w", kShot, ErrConfig)
	}
	if kEval < 0 {
		return nil, fmt.Errorf("k_eval must be non-negative, got %d: %w", kEval, ErrConfig)
	}
	if transform == nil {
		return nil, fmt.Errorf("transform is nil: %w", ErrConfig)
	}
	return &Builder{
		Set:       set,
		KShot:     kShot,
		KEval:     kEval,
		Policy:    policy,
		Transform: transform,
	}, nil
}

// Materialize builds one episode from a group of class indices. For each
// class it draws k_shot+k_eval example paths without replacement, decodes
// them, and assigns the first k_shot to the support set and the remaining
// k_eval to the query set. Labels are episode-local: every example drawn
// for group[i] is labeled i, for both splits.
//
// If any class in the group has fewer than k_shot+k_eval examples the call
// fails with ErrInsufficientData identifying the class and no partial
// episode is returned. Decode failures surface as *DecodeError.
func (b *Builder) Materialize(group []int, rng *rand.Rand) (*EpisodeFlat, error) {
	if len(group) == 0 {
		return nil, fmt.Errorf("empty class group: %w", ErrConfig)
	}
	perClass := b.KShot + b.KEval

	// Draw all example paths first so the rng consumption is one
	// class-ordered pass, independent of decode parallelism.
	refs := make([]string, 0, len(group)*perClass)
	for _, idx := range group {
		cls, err := b.Set.Class(idx)
		if err != nil {
			return nil, err
		}
		drawn, err := cls.Sample(perClass, rng)
		if err != nil {
			return nil, err
		}
		refs = append(refs, drawn...)
	}

	bufs, dims, err := decodeAll(refs, b.Transform, b.Workers)
	if err != nil {
		return nil, err
	}

	exampleDims := dims[0]
	exampleSize := len(bufs[0])
	for i := 1; i < len(bufs); i++ {
		if len(bufs[i]) != exampleSize || !equalDims(dims[i], exampleDims) {
			return nil, fmt.Errorf("inconsistent example shape at %s: got %v, expected %v",
				refs[i], dims[i], exampleDims)
		}
	}

	n := len(group)
	ep := &EpisodeFlat{
		Support:       make([]float32, n*b.KShot*exampleSize),
		SupportLabels: make([]int32, n*b.KShot),
		Query:         make([]float32, n*b.KEval*exampleSize),
		QueryLabels:   make([]int32, n*b.KEval),
		NClasses:      n,
		KShot:         b.KShot,
		KEval:         b.KEval,
		ExampleDims:   exampleDims,
		Classes:       append([]int(nil), group...),
		Policy:        b.Policy,
	}

	// refs/bufs are class-major: class i occupies [i*perClass, (i+1)*perClass).
	for i := 0; i < n; i++ {
		for j := 0; j < b.KShot; j++ {
			row := i*b.KShot + j
			copy(ep.Support[row*exampleSize:], bufs[i*perClass+j])
			ep.SupportLabels[row] = int32(i)
		}
		for j := 0; j < b.KEval; j++ {
			row := i*b.KEval + j
			copy(ep.Query[row*exampleSize:], bufs[i*perClass+b.KShot+j])
			ep.QueryLabels[row] = int32(i)
		}
	}
	return ep, nil
}

func equalDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EpisodeFlat stores one materialized episode in flat contiguous buffers
// with shape metadata, following the same layout convention for both
// aggregation policies (class-major, row-major examples). The policy only
// changes the dimensions reported to ToGomlxTensors.
type EpisodeFlat struct {
	// Support holds n_classes*k_shot decoded examples, class-major.
	Support []float32
	// SupportLabels holds the episode-local label of each support row.
	SupportLabels []int32
	// Query holds n_classes*k_eval decoded examples, class-major.
	Query []float32
	// QueryLabels holds the episode-local label of each query row.
	QueryLabels []int32

	NClasses int
	KShot    int
	KEval    int

	// ExampleDims is the shape of a single decoded example, e.g. [3 84 84].
	ExampleDims []int

	// Classes records the global class indices the episode was drawn from,
	// in label order: label i corresponds to Classes[i].
	Classes []int

	Policy Policy
}

// ExampleSize returns the number of float32 values in one decoded example.
func (e *EpisodeFlat) ExampleSize() int {
	size := 1
	for _, d := range e.ExampleDims {
		size *= d
	}
	return size
}

// ToGomlxTensors converts the episode into gomlx tensors according to its
// aggregation policy:
//
//	class-as-task:   support [N, kShot, dims...],  labels [N, kShot]
//	dataset-as-task: support [N*kShot, dims...],   labels [N*kShot]
//
// and likewise for the query split with kEval.
func (e *EpisodeFlat) ToGomlxTensors() (support, supportLabels, query, queryLabels *tensors.Tensor, err error) {
	if e.NClasses == 0 || e.ExampleSize() == 0 {
		return nil, nil, nil, nil, fmt.Errorf("empty episode")
	}
	var sDims, sLabDims, qDims, qLabDims []int
	switch e.Policy {
	case ClassAsTask:
		sDims = append([]int{e.NClasses, e.KShot}, e.ExampleDims...)
		sLabDims = []int{e.NClasses, e.KShot}
		qDims = append([]int{e.NClasses, e.KEval}, e.ExampleDims...)
		qLabDims = []int{e.NClasses, e.KEval}
	case DatasetAsTask:
		sDims = append([]int{e.NClasses * e.KShot}, e.ExampleDims...)
		sLabDims = []int{e.NClasses * e.KShot}
		qDims = append([]int{e.NClasses * e.KEval}, e.ExampleDims...)
		qLabDims = []int{e.NClasses * e.KEval}
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown aggregation policy %v", e.Policy)
	}
	support = tensors.FromFlatDataAndDimensions(e.Support, sDims...)
	supportLabels = tensors.FromFlatDataAndDimensions(e.SupportLabels, sLabDims...)
	query = tensors.FromFlatDataAndDimensions(e.Query, qDims...)
	queryLabels = tensors.FromFlatDataAndDimensions(e.QueryLabels, qLabDims...)
	return support, supportLabels, query, queryLabels, nil
}
