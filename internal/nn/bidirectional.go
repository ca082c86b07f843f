package nn

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// BidirectionalLayer composes two independent weight sets over the same
// input sequence: the forward direction walks timestep indices ascending,
// the reverse direction descending. Per-timestep outputs concatenate along
// the feature axis, doubling the layer width; the incoming gradient splits
// back into its halves and the two input-gradient sequences sum.
type BidirectionalLayer struct {
	backend tensor.Backend
	forward *RecurrentLayer
	reverse *RecurrentLayer
}

// NewBidirectionalLayer builds the two directions from two independently
// constructed cells of equal width. The ReversedInput option is owned by the
// composition itself and ignored on the supplied config.
func NewBidirectionalLayer(backend tensor.Backend, forward, reverse Cell, cfg Config) (*BidirectionalLayer, error) {
	if forward == nil || reverse == nil {
		return nil, fmt.Errorf("nn: bidirectional layer needs two cells")
	}
	if forward.Width() != reverse.Width() {
		return nil, fmt.Errorf("nn: direction widths differ: %d vs %d", forward.Width(), reverse.Width())
	}
	if forward.Inputs() != 1 || reverse.Inputs() != 1 {
		return nil, fmt.Errorf("nn: bidirectional composition requires single-input cells")
	}

	fwdCfg := cfg
	fwdCfg.ReversedInput = false
	revCfg := cfg
	revCfg.ReversedInput = true

	fwd, err := NewRecurrentLayer(backend, forward, fwdCfg)
	if err != nil {
		return nil, err
	}
	rev, err := NewRecurrentLayer(backend, reverse, revCfg)
	if err != nil {
		return nil, err
	}
	return &BidirectionalLayer{backend: backend, forward: fwd, reverse: rev}, nil
}

// ForwardProcess runs both directions and joins their per-timestep outputs
// along the feature axis.
func (l *BidirectionalLayer) ForwardProcess(in *graph.Sequence, training bool) (*graph.Sequence, error) {
	fOut, err := l.forward.ForwardProcess(in, training)
	if err != nil {
		return nil, err
	}
	rOut, err := l.reverse.ForwardProcess(in, training)
	if err != nil {
		return nil, err
	}

	out := graph.NewSequence(1)
	for t := 0; t < fOut.Len(); t++ {
		joined := l.backend.Cat([]*tensor.RawTensor{fOut.Single(t), rOut.Single(t)}, 0)
		if err := out.Put(joined); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BackwardProcess splits each timestep's gradient into its direction halves,
// backpropagates both directions, and sums the resulting input gradients.
func (l *BidirectionalLayer) BackwardProcess(outGrad *graph.Sequence) (*graph.Sequence, error) {
	fGrad := graph.NewSequence(1)
	rGrad := graph.NewSequence(1)
	for t := 0; t < outGrad.Len(); t++ {
		halves := l.backend.Chunk(outGrad.Single(t), 2, 0)
		if err := fGrad.Put(halves[0]); err != nil {
			return nil, err
		}
		if err := rGrad.Put(halves[1]); err != nil {
			return nil, err
		}
	}

	fIn, err := l.forward.BackwardProcess(fGrad)
	if err != nil {
		return nil, err
	}
	rIn, err := l.reverse.BackwardProcess(rGrad)
	if err != nil {
		return nil, err
	}

	inGrad := graph.NewSequence(1)
	for t := 0; t < fIn.Len(); t++ {
		if err := inGrad.Put(l.backend.Add(fIn.Single(t), rIn.Single(t))); err != nil {
			return nil, err
		}
	}
	return inGrad, nil
}

// LayerWeightGradients merges both directions' gradient maps; the weight
// sets are disjoint so keys never collide.
func (l *BidirectionalLayer) LayerWeightGradients() map[*tensor.RawTensor]*tensor.RawTensor {
	merged := make(map[*tensor.RawTensor]*tensor.RawTensor)
	for w, g := range l.forward.LayerWeightGradients() {
		merged[w] = g
	}
	for w, g := range l.reverse.LayerWeightGradients() {
		merged[w] = g
	}
	return merged
}

// InitializeWeights re-randomizes both directions.
func (l *BidirectionalLayer) InitializeWeights() {
	l.forward.InitializeWeights()
	l.reverse.InitializeWeights()
}

// NumberOfParameters returns the combined count, exactly twice one
// direction's count.
func (l *BidirectionalLayer) NumberOfParameters() int {
	return l.forward.NumberOfParameters() + l.reverse.NumberOfParameters()
}

// Parameters returns the forward direction's parameters followed by the
// reverse direction's.
func (l *BidirectionalLayer) Parameters() []*Parameter {
	return append(append([]*Parameter{}, l.forward.Parameters()...), l.reverse.Parameters()...)
}

func (l *BidirectionalLayer) IsRecurrentLayer() bool { return l.forward.IsRecurrentLayer() }
func (l *BidirectionalLayer) IsBidirectional() bool  { return true }

// Width returns double the per-direction width.
func (l *BidirectionalLayer) Width() int { return 2 * l.forward.Width() }

// Forward returns the ascending-order direction.
func (l *BidirectionalLayer) Forward() *RecurrentLayer { return l.forward }

// Reverse returns the descending-order direction.
func (l *BidirectionalLayer) Reverse() *RecurrentLayer { return l.reverse }
