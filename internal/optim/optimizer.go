// Package optim implements the weight-update algorithms applied between a
// forward/backward pass pair: plain SGD with momentum and Adam.
//
// Optimizers consume the gradient map produced by a layer's backward pass,
// keyed by weight tensor, and update parameter values in place so tensor
// identities inside compiled procedures stay valid.
//
// Example usage:
//
//	opt := optim.NewSGD(layer.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    out, _ := layer.ForwardProcess(in, true)
//	    grad := lossGradient(out, targets)
//	    layer.BackwardProcess(grad)
//	    opt.Step(layer.LayerWeightGradients())
//	}
package optim

import (
	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Optimizer applies gradient updates to a fixed set of parameters.
type Optimizer interface {
	// Step updates every parameter that has an entry in the gradient map;
	// parameters without a gradient are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// LR returns the current learning rate.
	LR() float64

	// SetLR changes the learning rate, for schedules.
	SetLR(lr float64)
}

// gradientFor looks up a parameter's gradient by tensor identity.
func gradientFor(p *nn.Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	return grads[p.Tensor()]
}

// axpy computes t[i] += alpha * g[i] in place for both supported dtypes.
func axpy(t *tensor.RawTensor, alpha float64, g *tensor.RawTensor) {
	switch t.DType() {
	case tensor.Float32:
		dst, src := t.AsFloat32(), g.AsFloat32()
		for i := range dst {
			dst[i] += float32(alpha) * src[i]
		}
	case tensor.Float64:
		dst, src := t.AsFloat64(), g.AsFloat64()
		for i := range dst {
			dst[i] += alpha * src[i]
		}
	}
}

// scale computes t[i] *= alpha in place.
func scale(t *tensor.RawTensor, alpha float64) {
	switch t.DType() {
	case tensor.Float32:
		dst := t.AsFloat32()
		for i := range dst {
			dst[i] *= float32(alpha)
		}
	case tensor.Float64:
		dst := t.AsFloat64()
		for i := range dst {
			dst[i] *= alpha
		}
	}
}
