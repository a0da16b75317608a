package episodes

import (
	"errors"
	"fmt"
)

// Error taxonomy for the episodic sampling pipeline.
//
// ErrConfig and ErrInsufficientData are sentinel errors meant to be matched
// with errors.Is. DecodeError is a wrapper that carries the path of the
// example file that failed to decode so the caller can decide whether to
// skip the episode or abort. The package itself never retries and never
// skips silently; every failure surfaces to the immediate caller.
var (
	// ErrConfig marks invalid construction parameters: a missing or empty
	// phase directory, n_classes larger than the meta-set, negative counts
	// and the like.
	ErrConfig = errors.New("invalid configuration")

	// ErrInsufficientData marks a class that holds fewer examples than a
	// batch requires.
	ErrInsufficientData = errors.New("insufficient examples")
)

// DecodeError reports that a single example file could not be decoded or
// transformed. Path identifies the failing reference.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
