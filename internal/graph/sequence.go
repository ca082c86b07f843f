package graph

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Sequence is an ordered collection of per-timestep tensor tuples, the unit
// exchanged between layers. Indices are contiguous and insertion order is
// temporal order. The tuple width (depth) is uniform across the sequence and
// matches the owning layer's declared number of inputs or outputs.
type Sequence struct {
	depth   int
	entries [][]*tensor.RawTensor
}

// NewSequence creates an empty sequence with the given tuple depth.
// Depth must be at least 1.
func NewSequence(depth int) *Sequence {
	if depth < 1 {
		panic(fmt.Sprintf("sequence: depth must be >= 1, got %d", depth))
	}
	return &Sequence{depth: depth}
}

// Len returns the number of timesteps.
func (s *Sequence) Len() int {
	return len(s.entries)
}

// Depth returns the tuple width per timestep.
func (s *Sequence) Depth() int {
	return s.depth
}

// Put appends one timestep's tensors at the next index.
func (s *Sequence) Put(tensors ...*tensor.RawTensor) error {
	if len(tensors) != s.depth {
		return fmt.Errorf("sequence: expected %d tensors per timestep, got %d", s.depth, len(tensors))
	}
	s.entries = append(s.entries, tensors)
	return nil
}

// PutAt writes one timestep's tensors at an arbitrary index, growing the
// sequence as needed. Used by the engine when producing outputs out of
// processing order (reversed iteration); indices are contiguous once the pass
// completes.
func (s *Sequence) PutAt(index int, tensors ...*tensor.RawTensor) error {
	if len(tensors) != s.depth {
		return fmt.Errorf("sequence: expected %d tensors per timestep, got %d", s.depth, len(tensors))
	}
	if index < 0 {
		return fmt.Errorf("sequence: negative index %d", index)
	}
	for len(s.entries) <= index {
		s.entries = append(s.entries, nil)
	}
	s.entries[index] = tensors
	return nil
}

// Get returns the tensor tuple at a timestep index.
func (s *Sequence) Get(index int) []*tensor.RawTensor {
	if index < 0 || index >= len(s.entries) {
		panic(fmt.Sprintf("sequence: index %d out of range [0,%d)", index, len(s.entries)))
	}
	return s.entries[index]
}

// Single returns the only tensor at a timestep index.
// Panics if the sequence depth is not 1.
func (s *Sequence) Single(index int) *tensor.RawTensor {
	if s.depth != 1 {
		panic(fmt.Sprintf("sequence: Single called on sequence of depth %d", s.depth))
	}
	return s.Get(index)[0]
}
