// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the recurrent layer family: cells,
// weight sets, layer orchestration, and bidirectional composition.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewLSTMLayer(backend, inputWidth, width, nn.DefaultConfig())
//	if err != nil {
//	    ...
//	}
//	out, err := layer.ForwardProcess(inputs, true)
package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Layer is the surface a network driver programs against.
type Layer = nn.Layer

// RecurrentLayer drives one compiled cell over sequences.
type RecurrentLayer = nn.RecurrentLayer

// BidirectionalLayer composes two independent weight sets over the same
// input sequence.
type BidirectionalLayer = nn.BidirectionalLayer

// Cell is a layer type's single-timestep forward formula.
type Cell = nn.Cell

// WeightSet is the owned bundle of named weight and bias tensors.
type WeightSet = nn.WeightSet

// Parameter is one trainable tensor owned by a weight set.
type Parameter = nn.Parameter

// Category classifies a parameter's role in the cell equations.
type Category = nn.Category

// Parameter categories.
const (
	CategoryDirect    Category = nn.CategoryDirect
	CategoryRecurrent Category = nn.CategoryRecurrent
	CategoryState     Category = nn.CategoryState
	CategoryBias      Category = nn.CategoryBias
)

// Config carries the recurrent-layer options shared by every layer type.
type Config = nn.Config

// UnlimitedSteps is the truncateSteps sentinel for full backpropagation
// through time.
const UnlimitedSteps = nn.UnlimitedSteps

// DefaultConfig returns the documented layer defaults.
func DefaultConfig() Config {
	return nn.DefaultConfig()
}

// Initializer fills a freshly allocated weight tensor in place.
type Initializer = nn.Initializer

// Weight initializers.
var (
	XavierUniform Initializer = nn.XavierUniform
	XavierNormal  Initializer = nn.XavierNormal
	HeUniform     Initializer = nn.HeUniform
)

// ConstantInit returns an initializer that fills with a fixed value.
func ConstantInit(value float64) Initializer {
	return nn.ConstantInit(value)
}

// Activation is a named unary function with a forward map and a derivative.
type Activation = act.Activation

// Named activations.
var (
	Identity = act.Identity
	Sigmoid  = act.Sigmoid
	Tanh     = act.Tanh
	ReLU     = act.ReLU
	Softmax  = act.Softmax
)

// ActivationByName resolves an activation from its identifier, or nil.
func ActivationByName(name string) Activation {
	return act.ByName(name)
}

// Layer constructors.

// NewRecurrentLayer compiles a cell into a layer with the given
// configuration.
func NewRecurrentLayer(backend tensor.Backend, cell Cell, cfg Config) (*RecurrentLayer, error) {
	return nn.NewRecurrentLayer(backend, cell, cfg)
}

// NewBidirectionalLayer builds a two-direction layer from two independently
// constructed cells of equal width.
func NewBidirectionalLayer(backend tensor.Backend, forward, reverse Cell, cfg Config) (*BidirectionalLayer, error) {
	return nn.NewBidirectionalLayer(backend, forward, reverse, cfg)
}

// NewSimpleRecurrentLayer creates a plain recurrent layer.
func NewSimpleRecurrentLayer(backend tensor.Backend, inputWidth, width int, fn Activation, cfg Config) (*RecurrentLayer, error) {
	return nn.NewSimpleRecurrentLayer(backend, inputWidth, width, fn, cfg)
}

// NewLSTMLayer creates a standard LSTM layer.
func NewLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewLSTMLayer(backend, inputWidth, width, cfg)
}

// NewPeepholeLSTMLayer creates a peephole LSTM layer.
func NewPeepholeLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewPeepholeLSTMLayer(backend, inputWidth, width, cfg)
}

// NewGravesLSTMLayer creates a Graves LSTM layer with peephole connections.
func NewGravesLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewGravesLSTMLayer(backend, inputWidth, width, cfg)
}

// NewGRULayer creates a GRU layer.
func NewGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewGRULayer(backend, inputWidth, width, cfg)
}

// NewMinGRULayer creates a minimal GRU layer.
func NewMinGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewMinGRULayer(backend, inputWidth, width, cfg)
}

// NewAttentionLayer creates an additive attention layer over n equal-width
// inputs.
func NewAttentionLayer(backend tensor.Backend, n, width int, cfg Config) (*RecurrentLayer, error) {
	return nn.NewAttentionLayer(backend, n, width, cfg)
}

// NewBiSimpleRecurrentLayer creates a bidirectional simple recurrent layer.
func NewBiSimpleRecurrentLayer(backend tensor.Backend, inputWidth, width int, fn Activation, cfg Config) (*BidirectionalLayer, error) {
	return nn.NewBiSimpleRecurrentLayer(backend, inputWidth, width, fn, cfg)
}

// NewBiLSTMLayer creates a bidirectional LSTM layer.
func NewBiLSTMLayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*BidirectionalLayer, error) {
	return nn.NewBiLSTMLayer(backend, inputWidth, width, cfg)
}

// NewBiGRULayer creates a bidirectional GRU layer.
func NewBiGRULayer(backend tensor.Backend, inputWidth, width int, cfg Config) (*BidirectionalLayer, error) {
	return nn.NewBiGRULayer(backend, inputWidth, width, cfg)
}

// Cell constructors, for custom dtypes and initializers.

// NewSimpleCell creates a plain recurrent cell.
func NewSimpleCell(inputWidth, width int, fn Activation, init Initializer, dtype tensor.DataType) (*nn.SimpleCell, error) {
	return nn.NewSimpleCell(inputWidth, width, fn, init, dtype)
}

// NewLSTMCell creates a standard LSTM cell.
func NewLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*nn.LSTMCell, error) {
	return nn.NewLSTMCell(inputWidth, width, doubleTanh, init, dtype)
}

// NewPeepholeLSTMCell creates a peephole LSTM cell.
func NewPeepholeLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*nn.PeepholeLSTMCell, error) {
	return nn.NewPeepholeLSTMCell(inputWidth, width, doubleTanh, init, dtype)
}

// NewGravesLSTMCell creates a Graves LSTM cell.
func NewGravesLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*nn.GravesLSTMCell, error) {
	return nn.NewGravesLSTMCell(inputWidth, width, doubleTanh, init, dtype)
}

// NewGRUCell creates a GRU cell.
func NewGRUCell(inputWidth, width int, init Initializer, dtype tensor.DataType) (*nn.GRUCell, error) {
	return nn.NewGRUCell(inputWidth, width, init, dtype)
}

// NewMinGRUCell creates a minimal GRU cell.
func NewMinGRUCell(inputWidth, width int, init Initializer, dtype tensor.DataType) (*nn.MinGRUCell, error) {
	return nn.NewMinGRUCell(inputWidth, width, init, dtype)
}

// NewAttentionCell creates an additive attention cell over n equal-width
// inputs.
func NewAttentionCell(n, width int, init Initializer, dtype tensor.DataType) (*nn.AttentionCell, error) {
	return nn.NewAttentionCell(n, width, init, dtype)
}
