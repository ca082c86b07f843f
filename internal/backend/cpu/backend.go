// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/parallel"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// All operations allocate fresh result tensors; there is no in-place fast
// path. The procedure engine retains references to operation outputs across
// timesteps, so results must never share buffers with their operands.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{parallel: parallel.DefaultConfig()}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binary applies an element-wise binary operation with broadcasting.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType())
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast {
		// Fast path: identical shapes, flat iteration.
		switch a.DType() {
		case tensor.Float32:
			dst, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
			for i := range dst {
				dst[i] = f32(av[i], bv[i])
			}
		case tensor.Float64:
			dst, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
			for i := range dst {
				dst[i] = f64(av[i], bv[i])
			}
		}
		return result
	}

	outStrides := outShape.ComputeStrides()
	aIndex := broadcastIndexer(a.Shape(), outShape, outStrides)
	bIndex := broadcastIndexer(b.Shape(), outShape, outStrides)

	switch a.DType() {
	case tensor.Float32:
		dst, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = f32(av[aIndex(i)], bv[bIndex(i)])
		}
	case tensor.Float64:
		dst, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = f64(av[aIndex(i)], bv[bIndex(i)])
		}
	}
	return result
}

// broadcastIndexer returns a function mapping a flat output index to the flat
// index of the (possibly broadcast) input tensor.
func broadcastIndexer(inShape, outShape tensor.Shape, outStrides []int) func(int) int {
	inStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)

	return func(flat int) int {
		idx := 0
		for d := 0; d < len(outShape); d++ {
			coord := flat / outStrides[d]
			flat %= outStrides[d]

			inDim := d - offset
			if inDim < 0 {
				continue
			}
			if inShape[inDim] == 1 {
				continue // broadcast dimension, coordinate pinned to 0
			}
			idx += coord * inStrides[inDim]
		}
		return idx
	}
}
