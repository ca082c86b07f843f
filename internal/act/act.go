// Package act implements the named activation functions consumed by the
// procedure engine. Each activation bundles its forward evaluation with the
// derivative rule used during the backward replay.
package act

import (
	"math"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Activation is a named unary function with a forward map and a derivative.
//
// Backward receives the upstream gradient together with the forward input and
// output tensors; implementations use whichever of the two makes the local
// derivative cheapest (sigmoid and tanh reuse the output, relu the input).
type Activation interface {
	// Name returns the activation's identifier ("tanh", "sigmoid", ...).
	Name() string

	// Apply evaluates the function element-wise into a fresh tensor.
	Apply(x *tensor.RawTensor) *tensor.RawTensor

	// Backward computes the input gradient given the output gradient and the
	// forward input/output values.
	Backward(grad, input, output *tensor.RawTensor) *tensor.RawTensor
}

// Named activations.
var (
	Identity Activation = identity{}
	Sigmoid  Activation = sigmoid{}
	Tanh     Activation = tanh{}
	ReLU     Activation = relu{}
	Softmax  Activation = softmax{}
)

// ByName resolves an activation from its identifier.
// Returns nil for an unknown name.
func ByName(name string) Activation {
	switch name {
	case "identity":
		return Identity
	case "sigmoid":
		return Sigmoid
	case "tanh":
		return Tanh
	case "relu":
		return ReLU
	case "softmax":
		return Softmax
	default:
		return nil
	}
}

// applyUnary maps f over every element into a fresh tensor.
func applyUnary(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = float32(f(float64(src[i])))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = f(src[i])
		}
	}
	return result
}

// applyBinary maps f over element pairs of a and b into a fresh tensor.
// Shapes must match exactly; activations never broadcast.
func applyBinary(a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic("act: shape mismatch")
	}
	result := tensor.MustRaw(a.Shape(), a.DType())
	switch a.DType() {
	case tensor.Float32:
		av, bv, dst := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = float32(f(float64(av[i]), float64(bv[i])))
		}
	case tensor.Float64:
		av, bv, dst := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = f(av[i], bv[i])
		}
	}
	return result
}

type identity struct{}

func (identity) Name() string { return "identity" }

func (identity) Apply(x *tensor.RawTensor) *tensor.RawTensor {
	return x.Clone()
}

func (identity) Backward(grad, _, _ *tensor.RawTensor) *tensor.RawTensor {
	return grad.Clone()
}

type sigmoid struct{}

func (sigmoid) Name() string { return "sigmoid" }

// Apply computes σ(x) = 1 / (1 + exp(-x)).
func (sigmoid) Apply(x *tensor.RawTensor) *tensor.RawTensor {
	return applyUnary(x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}

// Backward uses dσ/dx = σ(x) * (1 - σ(x)), computed from the forward output.
func (sigmoid) Backward(grad, _, output *tensor.RawTensor) *tensor.RawTensor {
	return applyBinary(grad, output, func(g, out float64) float64 {
		return g * out * (1.0 - out)
	})
}

type tanh struct{}

func (tanh) Name() string { return "tanh" }

func (tanh) Apply(x *tensor.RawTensor) *tensor.RawTensor {
	return applyUnary(x, math.Tanh)
}

// Backward uses d(tanh(x))/dx = 1 - tanh²(x), computed from the forward output.
func (tanh) Backward(grad, _, output *tensor.RawTensor) *tensor.RawTensor {
	return applyBinary(grad, output, func(g, out float64) float64 {
		return g * (1.0 - out*out)
	})
}

type relu struct{}

func (relu) Name() string { return "relu" }

func (relu) Apply(x *tensor.RawTensor) *tensor.RawTensor {
	return applyUnary(x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

func (relu) Backward(grad, input, _ *tensor.RawTensor) *tensor.RawTensor {
	return applyBinary(grad, input, func(g, in float64) float64 {
		if in > 0 {
			return g
		}
		return 0
	})
}

type softmax struct{}

func (softmax) Name() string { return "softmax" }

// Apply computes softmax over all elements of the tensor (the engine feeds it
// column vectors of joined attention scores). Max-shifting keeps exp in range.
// Normalization runs entirely in float64; each value rounds once, at the
// final store, so float64 outputs sum to one within 1e-9. Float32 outputs
// carry the storage rounding of the element type, on the order of 1e-7.
func (softmax) Apply(x *tensor.RawTensor) *tensor.RawTensor {
	n := x.NumElements()

	maxVal := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := atFlat(x, i); v > maxVal {
			maxVal = v
		}
	}

	exps := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		e := math.Exp(atFlat(x, i) - maxVal)
		exps[i] = e
		sum += e
	}

	result := tensor.MustRaw(x.Shape(), x.DType())
	for i := 0; i < n; i++ {
		setFlat(result, i, exps[i]/sum)
	}
	return result
}

// Backward applies the softmax Jacobian:
//
//	∂L/∂x_j = s_j * (∂L/∂s_j - Σ_i ∂L/∂s_i * s_i)
func (softmax) Backward(grad, _, output *tensor.RawTensor) *tensor.RawTensor {
	n := output.NumElements()
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += atFlat(grad, i) * atFlat(output, i)
	}

	result := tensor.MustRaw(output.Shape(), output.DType())
	for i := 0; i < n; i++ {
		s := atFlat(output, i)
		setFlat(result, i, s*(atFlat(grad, i)-dot))
	}
	return result
}

func atFlat(t *tensor.RawTensor, i int) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.AsFloat32()[i])
	default:
		return t.AsFloat64()[i]
	}
}

func setFlat(t *tensor.RawTensor, i int, v float64) {
	switch t.DType() {
	case tensor.Float32:
		t.AsFloat32()[i] = float32(v)
	default:
		t.AsFloat64()[i] = v
	}
}
