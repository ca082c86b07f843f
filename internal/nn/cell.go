// Package nn implements the recurrent layer family: weight sets, the
// per-layer-type cell definitions (simple RNN, LSTM variants, GRU variants,
// attention), and the orchestration layer that drives the graph engine over
// sequences, manages recurrent state across mode switches, and composes
// bidirectional layers.
package nn

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Cell is the single-timestep forward formula of one layer type together
// with the weight set it reads. A cell is compiled into a graph.Procedure
// exactly once; bidirectional layers build two cells with independent weight
// sets.
type Cell interface {
	graph.Definition

	// Width returns the cell's output width.
	Width() int

	// WeightSet returns the cell's owned weight bundle.
	WeightSet() *WeightSet

	// Recurrent reports whether the cell carries genuine recurrent state.
	// Attention carries a context vector the same way but is not recurrent.
	Recurrent() bool
}

// InputChecker is implemented by cells that can validate an input tuple's
// shapes before replay. The layer consults it so that a mis-sized input
// surfaces as an error instead of a shape panic inside the backend.
type InputChecker interface {
	CheckInputs(step []*tensor.RawTensor) error
}

func checkWidths(inputWidth, width int) error {
	if inputWidth < 1 {
		return fmt.Errorf("nn: input width must be positive, got %d", inputWidth)
	}
	if width < 1 {
		return fmt.Errorf("nn: layer width must be positive, got %d", width)
	}
	return nil
}
