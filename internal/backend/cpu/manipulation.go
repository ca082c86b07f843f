package cpu

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Transpose swaps the two dimensions of a 2D tensor, copying the data.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got %dD", len(shape)))
	}

	rows, cols := shape[0], shape[1]
	result, err := tensor.NewRaw(tensor.Shape{cols, rows}, t.DType())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst[j*rows+i] = src[i*cols+j]
			}
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst[j*rows+i] = src[i*cols+j]
			}
		}
	}

	return result
}

// Cat concatenates tensors along a dimension.
// All inputs must share dtype and agree on every dimension except dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no input tensors")
	}

	first := tensors[0]
	ndim := len(first.Shape())
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for rank %d", dim, ndim))
	}

	outShape := first.Shape().Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		shape := t.Shape()
		if len(shape) != ndim || t.DType() != first.DType() {
			panic("cat: rank or dtype mismatch between inputs")
		}
		for d := 0; d < ndim; d++ {
			if d != dim && shape[d] != first.Shape()[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, shape, first.Shape()))
			}
		}
		outShape[dim] += shape[dim]
	}

	result, err := tensor.NewRaw(outShape, first.DType())
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	offset := 0
	for _, t := range tensors {
		copySliceInto(result, t, dim, offset)
		offset += t.Shape()[dim]
	}
	return result
}

// Chunk splits a tensor into n equal parts along a dimension.
func (cpu *CPUBackend) Chunk(t *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("chunk: dimension %d out of range for rank %d", dim, ndim))
	}
	if n <= 0 || shape[dim]%n != 0 {
		panic(fmt.Sprintf("chunk: cannot split dimension of size %d into %d equal parts", shape[dim], n))
	}

	partShape := shape.Clone()
	partShape[dim] = shape[dim] / n

	parts := make([]*tensor.RawTensor, n)
	for i := range parts {
		part, err := tensor.NewRaw(partShape, t.DType())
		if err != nil {
			panic(fmt.Sprintf("chunk: %v", err))
		}
		copySliceFrom(part, t, dim, i*partShape[dim])
		parts[i] = part
	}
	return parts
}

// copySliceInto writes src into dst starting at position offset along dim.
// dst is the larger tensor.
func copySliceInto(dst, src *tensor.RawTensor, dim, offset int) {
	srcShape := src.Shape()
	srcStrides := srcShape.ComputeStrides()
	dstStrides := dst.Shape().ComputeStrides()
	n := srcShape.NumElements()

	for i := 0; i < n; i++ {
		temp := i
		dstIdx := 0
		for d := 0; d < len(srcShape); d++ {
			coord := temp / srcStrides[d]
			temp %= srcStrides[d]
			if d == dim {
				coord += offset
			}
			dstIdx += coord * dstStrides[d]
		}
		switch src.DType() {
		case tensor.Float32:
			dst.AsFloat32()[dstIdx] = src.AsFloat32()[i]
		case tensor.Float64:
			dst.AsFloat64()[dstIdx] = src.AsFloat64()[i]
		}
	}
}

// copySliceFrom fills dst from the slice of src starting at offset along dim.
// src is the larger tensor.
func copySliceFrom(dst, src *tensor.RawTensor, dim, offset int) {
	dstShape := dst.Shape()
	dstStrides := dstShape.ComputeStrides()
	srcStrides := src.Shape().ComputeStrides()
	n := dstShape.NumElements()

	for i := 0; i < n; i++ {
		temp := i
		srcIdx := 0
		for d := 0; d < len(dstShape); d++ {
			coord := temp / dstStrides[d]
			temp %= dstStrides[d]
			if d == dim {
				coord += offset
			}
			srcIdx += coord * srcStrides[d]
		}
		switch src.DType() {
		case tensor.Float32:
			dst.AsFloat32()[i] = src.AsFloat32()[srcIdx]
		case tensor.Float64:
			dst.AsFloat64()[i] = src.AsFloat64()[srcIdx]
		}
	}
}
