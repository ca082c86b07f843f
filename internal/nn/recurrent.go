package nn

import (
	"errors"

	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// RecurrentLayer drives one compiled cell over sequences: it owns the
// sequence-boundary state lifecycle, the training/testing mode transitions,
// and the truncation limit handed to the backward pass.
//
// A layer instance is not safe for concurrent use; the recurrence makes each
// pass inherently sequential and the retained forward pass belongs to the
// next BackwardProcess call.
type RecurrentLayer struct {
	cfg  Config
	cell Cell
	proc *graph.Procedure

	// Last-seen mode, undefined before the first forward call.
	prevTraining bool
	hasMode      bool
}

// NewRecurrentLayer validates the configuration, compiles the cell into a
// procedure, and wires the reversed-input option.
func NewRecurrentLayer(backend tensor.Backend, cell Cell, cfg Config) (*RecurrentLayer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, errors.New("nn: nil cell")
	}
	proc, err := graph.Build(backend, cell)
	if err != nil {
		return nil, err
	}
	proc.SetReversed(cfg.ReversedInput)
	return &RecurrentLayer{cfg: cfg, cell: cell, proc: proc}, nil
}

// ForwardProcess runs the compiled procedure over the input sequence.
//
// When the training flag differs from the previous call, the outgoing mode's
// state is stored if its restore flag is set, state is cleared, and the
// incoming mode's stored state is reloaded if its restore flag is set.
// Within one mode, the per-mode reset flag decides whether state carries
// across sequence boundaries.
func (l *RecurrentLayer) ForwardProcess(in *graph.Sequence, training bool) (*graph.Sequence, error) {
	if l.hasMode && l.prevTraining != training {
		if l.restoreFlag(l.prevTraining) {
			l.proc.StoreState(phase(l.prevTraining))
		}
		l.proc.Reset(true)
		if l.restoreFlag(training) {
			l.proc.RestoreState(phase(training))
		}
	} else {
		l.proc.Reset(l.resetFlag(training))
	}
	l.prevTraining = training
	l.hasMode = true

	if checker, ok := l.cell.(InputChecker); ok {
		for t := 0; t < in.Len(); t++ {
			if err := checker.CheckInputs(in.Get(t)); err != nil {
				return nil, err
			}
		}
	}

	out := graph.NewSequence(1)
	if err := l.proc.Calculate(in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// BackwardProcess backpropagates through the retained forward pass, honoring
// the configured truncation limit.
func (l *RecurrentLayer) BackwardProcess(outGrad *graph.Sequence) (*graph.Sequence, error) {
	inGrad := graph.NewSequence(l.cell.Inputs())
	if err := l.proc.CalculateGradient(outGrad, inGrad, l.cfg.TruncateSteps); err != nil {
		return nil, err
	}
	return inGrad, nil
}

// LayerWeightGradients returns the last backward pass's per-weight gradients.
func (l *RecurrentLayer) LayerWeightGradients() map[*tensor.RawTensor]*tensor.RawTensor {
	return l.proc.WeightGradients()
}

// InitializeWeights re-randomizes the cell's weight set in place.
func (l *RecurrentLayer) InitializeWeights() {
	l.cell.WeightSet().Reinitialize()
}

// NumberOfParameters returns the cell's trainable scalar count.
func (l *RecurrentLayer) NumberOfParameters() int {
	return l.cell.WeightSet().NumberOfParameters()
}

// Parameters returns the cell's trainable parameters.
func (l *RecurrentLayer) Parameters() []*Parameter {
	return l.cell.WeightSet().Parameters()
}

func (l *RecurrentLayer) IsRecurrentLayer() bool { return l.cell.Recurrent() }
func (l *RecurrentLayer) IsBidirectional() bool  { return false }

// Width returns the cell's output width.
func (l *RecurrentLayer) Width() int { return l.cell.Width() }

// Cell returns the underlying cell definition.
func (l *RecurrentLayer) Cell() Cell { return l.cell }

// RegularizedWeights returns the tensors eligible for weight decay under the
// layer's configuration.
func (l *RecurrentLayer) RegularizedWeights() []*tensor.RawTensor {
	return l.cell.WeightSet().RegularizedWeights(
		l.cfg.RegulateDirectWeights,
		l.cfg.RegulateRecurrentWeights,
		l.cfg.RegulateStateWeights,
	)
}

func (l *RecurrentLayer) resetFlag(training bool) bool {
	if training {
		return l.cfg.ResetStateTraining
	}
	return l.cfg.ResetStateTesting
}

func (l *RecurrentLayer) restoreFlag(training bool) bool {
	if training {
		return l.cfg.RestoreStateTraining
	}
	return l.cfg.RestoreStateTesting
}

func phase(training bool) graph.Phase {
	if training {
		return graph.Training
	}
	return graph.Testing
}
