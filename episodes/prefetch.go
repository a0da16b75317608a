package episodes

import (
	"golang.org/x/sync/errgroup"
)

// decodeAll runs the transform over every reference and collects the flat
// buffers and shapes, position-aligned with refs.
//
// With workers > 1 the decodes run on a bounded goroutine pool; each
// goroutine writes only its own slot, so no locking is needed. Transform
// implementations must therefore be safe for concurrent use (pure
// file-read-and-decode transforms are). Failures are wrapped in
// *DecodeError carrying the failing path; the first failure cancels the
// remaining work and fails the whole episode.
func decodeAll(refs []string, transform TransformFunc, workers int) ([][]float32, [][]int, error) {
	bufs := make([][]float32, len(refs))
	dims := make([][]int, len(refs))

	if workers <= 1 {
		for i, ref := range refs {
			buf, d, err := transform(ref)
			if err != nil {
				return nil, nil, &DecodeError{Path: ref, Err: err}
			}
			bufs[i] = buf
			dims[i] = d
		}
		return bufs, dims, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, ref := range refs {
		g.Go(func() error {
			buf, d, err := transform(ref)
			if err != nil {
				return &DecodeError{Path: ref, Err: err}
			}
			bufs[i] = buf
			dims[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return bufs, dims, nil
}
