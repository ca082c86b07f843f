// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the numeric tensors consumed by
// the recurrent layers and the procedure engine.
//
// Tensors are 2D row-major matrices with float32 or float64 elements. Every
// arithmetic operation goes through a Backend and returns a fresh tensor;
// in-place mutation is limited to Reset, CopyFrom, and weight
// initialization.
//
// Example:
//
//	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1})
//	b := cpu.New()
//	y := b.MulScalar(x, 2)
package tensor

import (
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Float is a constraint for supported tensor element types.
type Float = tensor.Float

// DataType represents the underlying element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// RawTensor is the concrete tensor value.
type RawTensor = tensor.RawTensor

// Backend is the compute interface the engine replays operations through.
type Backend = tensor.Backend

// NewRaw creates a zero-filled tensor, validating the shape.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// MustRaw creates a zero-filled tensor, panicking on an invalid shape.
func MustRaw(shape Shape, dtype DataType) *RawTensor {
	return tensor.MustRaw(shape, dtype)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a one-filled tensor.
func Ones(shape Shape, dtype DataType) *RawTensor {
	return tensor.Ones(shape, dtype)
}

// Full creates a tensor filled with a constant value.
func Full(shape Shape, dtype DataType, value float64) *RawTensor {
	return tensor.Full(shape, dtype, value)
}

// FromSlice creates a tensor from a flat row-major slice.
func FromSlice[F Float](data []F, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice creates a tensor from a flat row-major slice, panicking on
// shape mismatch.
func MustFromSlice[F Float](data []F, shape Shape) *RawTensor {
	return tensor.MustFromSlice(data, shape)
}

// Randn creates a tensor with standard-normal random values.
func Randn(shape Shape, dtype DataType) *RawTensor {
	return tensor.Randn(shape, dtype)
}

// BroadcastShapes applies NumPy-style broadcasting rules to two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
