package nn

import (
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Category classifies a parameter by its role in the cell equations. The
// regularization flags select categories, not individual parameters: direct
// weights multiply the current input, recurrent weights multiply previous
// outputs, state weights are the peephole connections reading the cell state,
// and biases are never regularized.
type Category int

const (
	CategoryDirect Category = iota
	CategoryRecurrent
	CategoryState
	CategoryBias
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDirect:
		return "direct"
	case CategoryRecurrent:
		return "recurrent"
	case CategoryState:
		return "state"
	case CategoryBias:
		return "bias"
	default:
		return "unknown"
	}
}

// Parameter is one trainable tensor owned by a weight set.
//
// The tensor identity is stable for the lifetime of the layer: optimizers and
// gradient maps key on the tensor pointer, and reinitialization rewrites the
// tensor's contents in place rather than replacing it.
type Parameter struct {
	name     string
	tensor   *tensor.RawTensor
	category Category
}

// NewParameter creates a trainable parameter.
func NewParameter(name string, t *tensor.RawTensor, category Category) *Parameter {
	t.SetName(name)
	return &Parameter{name: name, tensor: t, category: category}
}

// Name returns the parameter name (e.g. "Wi", "bf").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Category returns the parameter's role classification.
func (p *Parameter) Category() Category {
	return p.category
}

// NumElements returns the number of scalar values in the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}
