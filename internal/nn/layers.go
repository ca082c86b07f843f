package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Convenience constructors pairing each cell type with the orchestrator,
// using float32 weights and Xavier initialization. Construct cells directly
// for other dtypes or initializers.

// NewSimpleRecurrentLayer creates a plain recurrent layer. A nil activation
// defaults to tanh.
func NewSimpleRecurrentLayer(backend tensor.Backend, inputWidth, width int, fn act.Activation, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewSimpleCell(inputWidth, width, fn, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewLSTMLayer creates a standard LSTM layer.
func NewLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewLSTMCell(inputWidth, width, cfg.DoubleTanh, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewPeepholeLSTMLayer creates a peephole LSTM layer.
func NewPeepholeLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewPeepholeLSTMCell(inputWidth, width, cfg.DoubleTanh, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewGravesLSTMLayer creates a Graves LSTM layer with peephole connections.
func NewGravesLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewGravesLSTMCell(inputWidth, width, cfg.DoubleTanh, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewGRULayer creates a GRU layer.
func NewGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewGRUCell(inputWidth, width, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewMinGRULayer creates a minimal GRU layer.
func NewMinGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewMinGRUCell(inputWidth, width, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewAttentionLayer creates an additive attention layer over n equal-width
// inputs.
func NewAttentionLayer(backend tensor.Backend, n, width int, cfg Config) (*RecurrentLayer, error) {
	cell, err := NewAttentionCell(n, width, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewRecurrentLayer(backend, cell, cfg)
}

// NewBiSimpleRecurrentLayer creates a bidirectional simple recurrent layer.
func NewBiSimpleRecurrentLayer(backend tensor.Backend, inputWidth, width int, fn act.Activation, cfg Config) (*BidirectionalLayer, error) {
	fwd, err := NewSimpleCell(inputWidth, width, fn, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	rev, err := NewSimpleCell(inputWidth, width, fn, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewBidirectionalLayer(backend, fwd, rev, cfg)
}

// NewBiLSTMLayer creates a bidirectional LSTM layer.
func NewBiLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*BidirectionalLayer, error) {
	fwd, err := NewLSTMCell(inputWidth, width, cfg.DoubleTanh, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	rev, err := NewLSTMCell(inputWidth, width, cfg.DoubleTanh, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewBidirectionalLayer(backend, fwd, rev, cfg)
}

// NewBiGRULayer creates a bidirectional GRU layer.
func NewBiGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*BidirectionalLayer, error) {
	fwd, err := NewGRUCell(inputWidth, width, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	rev, err := NewGRUCell(inputWidth, width, nil, tensor.Float32)
	if err != nil {
		return nil, err
	}
	return NewBidirectionalLayer(backend, fwd, rev, cfg)
}
