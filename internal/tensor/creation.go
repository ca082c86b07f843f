package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	return MustRaw(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) *RawTensor {
	return Full(shape, dtype, 1)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, dtype DataType, value float64) *RawTensor {
	t := MustRaw(shape, dtype)
	switch dtype {
	case Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = value
		}
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[F Float](data []F, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy F
	t, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}

	switch dst := any(data).(type) {
	case []float32:
		copy(t.AsFloat32(), dst)
	case []float64:
		copy(t.AsFloat64(), dst)
	}

	return t, nil
}

// MustFromSlice is FromSlice for callers with statically correct shapes.
func MustFromSlice[F Float](data []F, shape Shape) *RawTensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution N(0, 1).
func Randn(shape Shape, dtype DataType) *RawTensor {
	t := MustRaw(shape, dtype)
	switch dtype {
	case Float32:
		data := t.AsFloat32()
		for i := range data {
			//nolint:gosec // math/rand is fine for weight initialization
			data[i] = float32(rand.NormFloat64())
		}
	case Float64:
		data := t.AsFloat64()
		for i := range data {
			//nolint:gosec // math/rand is fine for weight initialization
			data[i] = rand.NormFloat64()
		}
	}
	return t
}
