package nn

import (
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Layer is the surface a network driver programs against. Forward consumes
// the previous layer's output sequence; backward consumes the next layer's
// gradient sequence and populates the weight-gradient map read through
// LayerWeightGradients.
type Layer interface {
	// ForwardProcess runs the layer over an input sequence. The training
	// flag selects the recurrent-state thread; flipping it between calls is
	// a mode transition and triggers the configured store/restore behavior.
	ForwardProcess(in *graph.Sequence, training bool) (*graph.Sequence, error)

	// BackwardProcess runs truncated backpropagation through time against
	// the retained forward pass and returns the input-gradient sequence.
	BackwardProcess(outGrad *graph.Sequence) (*graph.Sequence, error)

	// LayerWeightGradients returns the gradients accumulated by the last
	// BackwardProcess, keyed by weight tensor.
	LayerWeightGradients() map[*tensor.RawTensor]*tensor.RawTensor

	// InitializeWeights re-randomizes all weights in place.
	InitializeWeights()

	// NumberOfParameters returns the trainable scalar count.
	NumberOfParameters() int

	// Parameters returns all trainable parameters, both directions for
	// bidirectional layers.
	Parameters() []*Parameter

	IsRecurrentLayer() bool
	IsBidirectional() bool

	// Width returns the per-timestep output width, already doubled for
	// bidirectional layers.
	Width() int
}
