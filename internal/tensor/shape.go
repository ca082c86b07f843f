package tensor

import (
	"fmt"
	"slices"
)

// Shape is the dimension list of a tensor. The engine works in column
// vectors and matrices, so every shape that reaches a backend has rank two;
// lower ranks appear only transiently during construction.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total element count. The empty shape is a scalar
// with one element.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects shapes the engine cannot represent: any dimension below
// one, or rank above two.
func (s Shape) Validate() error {
	if len(s) > 2 {
		return fmt.Errorf("rank %d shape %v: only vectors and matrices are supported", len(s), s)
	}
	for i, d := range s {
		if d < 1 {
			return fmt.Errorf("dimension %d of %v is %d, want >= 1", i, s, d)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// ComputeStrides returns row-major strides: the last dimension is
// contiguous, each earlier stride is the element count of everything after
// it.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// BroadcastShapes resolves the result shape of an element-wise operation
// under NumPy alignment rules, restricted to rank <= 2: dimensions pair up
// from the right, and a missing or size-1 dimension stretches to match its
// partner. The boolean reports whether any stretching is needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	if rank > 2 {
		return nil, false, fmt.Errorf("broadcast of %v and %v: only vectors and matrices are supported", a, b)
	}

	out := make(Shape, rank)
	stretched := false
	for i := 1; i <= rank; i++ {
		ad, bd := dimFromRight(a, i), dimFromRight(b, i)
		switch {
		case ad == bd:
			out[rank-i] = ad
		case ad == 1:
			out[rank-i] = bd
			stretched = true
		case bd == 1:
			out[rank-i] = ad
			stretched = true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v: %d vs %d", a, b, ad, bd)
		}
	}
	return out, stretched, nil
}

// dimFromRight reads the i-th dimension counted from the end, treating
// missing dimensions as size 1.
func dimFromRight(s Shape, i int) int {
	if i > len(s) {
		return 1
	}
	return s[len(s)-i]
}
