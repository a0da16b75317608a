package episodes

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// This file provides the meta-set index: a directory of per-class image
// folders turned into an ordered, immutable collection of classes.
//
// Expected layout:
//
//	root/{train,val,test}/<class_name>/<example_file>
//
// Each immediate subdirectory of root/<phase> is one class; its files are
// the class's examples. Classes are ordered by directory name and example
// lists by file name, so the same directory always produces the same index
// regardless of filesystem enumeration order.
//
// The index stores file paths only. Decoding an example into a tensor
// buffer is deferred to a TransformFunc collaborator at episode
// materialization time, keeping memory usage independent of the dataset
// size (same lazy-loading approach as the CSV datasets this package grew
// out of).

// Class is the example store for a single label: an ordered list of file
// paths plus the immutable integer label assigned at meta-set construction.
type Class struct {
	name  string
	label int
	paths []string
}

// Name returns the class directory name.
func (c *Class) Name() string { return c.name }

// Label returns the class's integer label, equal to its position in the
// meta-set.
func (c *Class) Label() int { return c.label }

// ExampleCount returns the number of example files stored for the class.
func (c *Class) ExampleCount() int { return len(c.paths) }

// Sample draws k example paths uniformly at random without replacement
// using the caller-owned rng. Requesting exactly ExampleCount() examples
// returns every example once; requesting more fails with
// ErrInsufficientData.
func (c *Class) Sample(k int, rng *rand.Rand) ([]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("class %q: negative sample size %d: %w", c.name, k, ErrConfig)
	}
	if k > len(c.paths) {
		return nil, fmt.Errorf("class %q (label %d): need %d examples, have %d: %w",
			c.name, c.label, k, len(c.paths), ErrInsufficientData)
	}
	perm := rng.Perm(len(c.paths))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = c.paths[perm[i]]
	}
	return out, nil
}

// MetaSet is an ordered sequence of classes built once from a directory
// layout. It is read-only after construction.
type MetaSet struct {
	root    string
	phase   string
	classes []*Class
}

// NewMetaSet builds the class index for root/<phase>. It fails with a
// configuration error when the phase directory does not exist or contains
// no class subdirectories.
func NewMetaSet(root, phase string) (*MetaSet, error) {
	dir := filepath.Join(root, phase)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("phase directory %s: %v: %w", dir, err, ErrConfig)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("phase directory %s contains no classes: %w", dir, ErrConfig)
	}
	// os.ReadDir returns entries sorted by filename already; sort again so
	// the ordering contract does not depend on that detail.
	sort.Strings(names)

	ms := &MetaSet{
		root:    root,
		phase:   phase,
		classes: make([]*Class, 0, len(names)),
	}
	for label, name := range names {
		classDir := filepath.Join(dir, name)
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, fmt.Errorf("class directory %s: %v: %w", classDir, err, ErrConfig)
		}
		paths := make([]string, 0, len(files))
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			paths = append(paths, filepath.Join(classDir, f.Name()))
		}
		sort.Strings(paths)
		ms.classes = append(ms.classes, &Class{name: name, label: label, paths: paths})
	}
	return ms, nil
}

// ClassCount returns the number of classes in the meta-set.
func (m *MetaSet) ClassCount() int { return len(m.classes) }

// Class returns the class at position i.
func (m *MetaSet) Class(i int) (*Class, error) {
	if i < 0 || i >= len(m.classes) {
		return nil, fmt.Errorf("class index %d out of range [0, %d)", i, len(m.classes))
	}
	return m.classes[i], nil
}

// Phase returns the phase selector the meta-set was built with.
func (m *MetaSet) Phase() string { return m.phase }

// ClassNames returns the class directory names in label order.
func (m *MetaSet) ClassNames() []string {
	names := make([]string, len(m.classes))
	for i, c := range m.classes {
		names[i] = c.name
	}
	return names
}
