package optim

import (
	"math"

	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Adam implements adaptive moment estimation:
//
//	m = beta1 * m + (1 - beta1) * grad
//	v = beta2 * v + (1 - beta2) * grad^2
//	m_hat = m / (1 - beta1^t)
//	v_hat = v / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	step   int

	m map[*nn.Parameter]*tensor.RawTensor
	v map[*nn.Parameter]*tensor.RawTensor
}

// AdamConfig holds Adam hyperparameters. Zero values take the usual
// defaults: lr 0.001, beta1 0.9, beta2 0.999, eps 1e-8.
type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Beta1,
		beta2:  config.Beta2,
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.RawTensor),
		v:      make(map[*nn.Parameter]*tensor.RawTensor),
	}
}

// Step applies one Adam update in place. The bias-correction step counter
// advances once per call, not per parameter.
func (a *Adam) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for _, param := range a.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}
		t := param.Tensor()

		m, ok := a.m[param]
		if !ok {
			m = tensor.Zeros(t.Shape(), t.DType())
			a.m[param] = m
			a.v[param] = tensor.Zeros(t.Shape(), t.DType())
		}
		v := a.v[param]

		switch t.DType() {
		case tensor.Float32:
			a.update32(t.AsFloat32(), grad.AsFloat32(), m.AsFloat32(), v.AsFloat32(), c1, c2)
		case tensor.Float64:
			a.update64(t.AsFloat64(), grad.AsFloat64(), m.AsFloat64(), v.AsFloat64(), c1, c2)
		}
	}
}

func (a *Adam) update32(w, g, m, v []float32, c1, c2 float64) {
	for i := range w {
		gi := float64(g[i])
		mi := a.beta1*float64(m[i]) + (1-a.beta1)*gi
		vi := a.beta2*float64(v[i]) + (1-a.beta2)*gi*gi
		m[i] = float32(mi)
		v[i] = float32(vi)
		w[i] -= float32(a.lr * (mi / c1) / (math.Sqrt(vi/c2) + a.eps))
	}
}

func (a *Adam) update64(w, g, m, v []float64, c1, c2 float64) {
	for i := range w {
		gi := g[i]
		m[i] = a.beta1*m[i] + (1-a.beta1)*gi
		v[i] = a.beta2*v[i] + (1-a.beta2)*gi*gi
		w[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
	}
}

// LR returns the learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR changes the learning rate.
func (a *Adam) SetLR(lr float64) { a.lr = lr }
