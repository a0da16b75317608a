package episodes

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// EpisodeDataset adapts the sampler/builder pair to gomlx's train.Dataset
// interface so training loops can consume episodes like any other dataset.
// Each Yield produces one episode; after NEpisode episodes Yield returns
// io.EOF. Reset starts a new pass whose draws continue the rng stream, so
// every pass is an independent sample; re-seed the rng to reproduce a pass.
type EpisodeDataset struct {
	Sampler *EpisodicSampler
	Builder *Builder

	rng    *rand.Rand
	served int
}

// NewEpisodeDataset wraps a sampler and builder with a generator seeded by
// seed. The dataset owns the rng; parallel consumers should each create
// their own EpisodeDataset with an independently seeded generator.
func NewEpisodeDataset(sampler *EpisodicSampler, builder *Builder, seed int64) (*EpisodeDataset, error) {
	if sampler == nil || builder == nil {
		return nil, fmt.Errorf("sampler and builder are required: %w", ErrConfig)
	}
	if sampler.TotalClasses != builder.Set.ClassCount() {
		return nil, fmt.Errorf("sampler covers %d classes but meta-set has %d: %w",
			sampler.TotalClasses, builder.Set.ClassCount(), ErrConfig)
	}
	return &EpisodeDataset{
		Sampler: sampler,
		Builder: builder,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Name implements train.Dataset.
func (d *EpisodeDataset) Name() string {
	return fmt.Sprintf("episodes[%s %d-way %d-shot]",
		d.Builder.Set.Phase(), d.Sampler.NClasses, d.Builder.KShot)
}

// Reset implements train.Dataset. It starts a new sequence of NEpisode
// episodes with fresh draws.
func (d *EpisodeDataset) Reset() {
	d.served = 0
}

// Yield implements train.Dataset. It returns the episode's support and
// query tensors as inputs[0]/inputs[1] and their label tensors as
// labels[0]/labels[1]. The spec value is the underlying *EpisodeFlat so
// callers can inspect the selected global class indices.
func (d *EpisodeDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.served >= d.Sampler.NEpisode {
		return nil, nil, nil, io.EOF
	}
	group := d.Sampler.Group(d.rng)
	ep, err := d.Builder.Materialize(group, d.rng)
	if err != nil {
		return nil, nil, nil, err
	}
	d.served++

	support, supportLabels, query, queryLabels, err := ep.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return ep, []*tensors.Tensor{support, query}, []*tensors.Tensor{supportLabels, queryLabels}, nil
}
