package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is the low-level dense tensor representation.
//
// Unlike typical array libraries there is no copy-on-write or in-place reuse:
// every backend operation allocates a fresh result. The procedure engine keeps
// per-timestep frames that alias operation outputs across replays, so reusing
// a buffer would silently corrupt an earlier frame.
//
// The optional name identifies the tensor inside a computation graph and shows
// up in debug output only; it carries no semantics.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
	name   string
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		data:   make([]byte, byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// MustRaw creates a new RawTensor and panics on an invalid shape.
// Intended for callers that have already validated dimensions.
func MustRaw(shape Shape, dtype DataType) *RawTensor {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Data returns the raw backing bytes. The slice aliases the tensor's
// storage; callers that persist it must copy first.
func (r *RawTensor) Data() []byte {
	return r.data
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Rows returns the first dimension of a 2D tensor.
func (r *RawTensor) Rows() int {
	if len(r.shape) != 2 {
		panic(fmt.Sprintf("Rows: tensor is %dD, not 2D", len(r.shape)))
	}
	return r.shape[0]
}

// Columns returns the second dimension of a 2D tensor.
func (r *RawTensor) Columns() int {
	if len(r.shape) != 2 {
		panic(fmt.Sprintf("Columns: tensor is %dD, not 2D", len(r.shape)))
	}
	return r.shape[1]
}

// Name returns the debug name, or "" if unset.
func (r *RawTensor) Name() string {
	return r.name
}

// SetName attaches a debug name and returns the tensor for chaining.
func (r *RawTensor) SetName(name string) *RawTensor {
	r.name = name
	return r
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// At returns the element at the given indices as float64 regardless of dtype.
func (r *RawTensor) At(indices ...int) float64 {
	offset := r.offsetOf(indices)
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[offset])
	case Float64:
		return r.AsFloat64()[offset]
	default:
		panic("unknown data type")
	}
}

// Set assigns the element at the given indices from a float64 value.
func (r *RawTensor) Set(value float64, indices ...int) {
	offset := r.offsetOf(indices)
	switch r.dtype {
	case Float32:
		r.AsFloat32()[offset] = float32(value)
	case Float64:
		r.AsFloat64()[offset] = value
	default:
		panic("unknown data type")
	}
}

func (r *RawTensor) offsetOf(indices []int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		offset += idx * r.stride[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor. The name is not carried over.
func (r *RawTensor) Clone() *RawTensor {
	clone := &RawTensor{
		data:   make([]byte, len(r.data)),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
	copy(clone.data, r.data)
	return clone
}

// CopyFrom overwrites this tensor's values with those of src.
// Shapes and dtypes must match exactly.
func (r *RawTensor) CopyFrom(src *RawTensor) {
	if !r.shape.Equal(src.shape) || r.dtype != src.dtype {
		panic(fmt.Sprintf("CopyFrom: mismatch %v/%s vs %v/%s", r.shape, r.dtype, src.shape, src.dtype))
	}
	copy(r.data, src.data)
}

// Reset zeroes the tensor in place. This is the only sanctioned in-place
// mutation besides explicit initialization.
func (r *RawTensor) Reset() {
	clear(r.data)
}

// String returns a human-readable representation of the tensor.
func (r *RawTensor) String() string {
	if r.name != "" {
		return fmt.Sprintf("Tensor[%s]%v %q", r.dtype, r.shape, r.name)
	}
	return fmt.Sprintf("Tensor[%s]%v", r.dtype, r.shape)
}
