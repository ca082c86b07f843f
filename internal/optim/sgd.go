package optim

import (
	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum and
// per-tensor weight decay.
//
// Update rule without momentum:
//
//	param = param - lr * (grad + decay * param)
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	decay      float64
	decaySet   map[*tensor.RawTensor]bool
	velocities map[*nn.Parameter]*tensor.RawTensor
}

// SGDConfig holds SGD hyperparameters.
type SGDConfig struct {
	LR       float64 // learning rate (default 0.01)
	Momentum float64 // momentum factor, [0, 1)
	Decay    float64 // weight-decay coefficient

	// Regularized limits weight decay to the listed tensors, typically a
	// weight set's RegularizedWeights. Nil with Decay > 0 decays everything.
	Regularized []*tensor.RawTensor
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	s := &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		decay:      config.Decay,
		velocities: make(map[*nn.Parameter]*tensor.RawTensor),
	}
	if config.Regularized != nil {
		s.decaySet = make(map[*tensor.RawTensor]bool, len(config.Regularized))
		for _, t := range config.Regularized {
			s.decaySet[t] = true
		}
	}
	return s
}

// Step applies one gradient-descent update in place.
func (s *SGD) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}
		t := param.Tensor()

		if s.decay != 0 && s.decays(t) {
			// Decay folds into the gradient before the momentum update.
			grad = grad.Clone()
			axpy(grad, s.decay, t)
		}

		if s.momentum != 0 {
			v, ok := s.velocities[param]
			if !ok {
				v = tensor.Zeros(t.Shape(), t.DType())
				s.velocities[param] = v
			}
			scale(v, s.momentum)
			axpy(v, 1, grad)
			grad = v
		}

		axpy(t, -s.lr, grad)
	}
}

func (s *SGD) decays(t *tensor.RawTensor) bool {
	if s.decaySet == nil {
		return true
	}
	return s.decaySet[t]
}

// LR returns the learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR changes the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }
