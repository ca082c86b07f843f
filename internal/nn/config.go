package nn

import (
	"fmt"
)

// UnlimitedSteps is the truncateSteps sentinel meaning full backpropagation
// through time.
const UnlimitedSteps = -1

// Config carries the recurrent-layer options shared by every layer type.
// Zero values are not usable defaults; start from DefaultConfig.
type Config struct {
	// ResetStateTraining clears recurrent state at each sequence boundary
	// while training. When false, state carries across sequences.
	ResetStateTraining bool

	// ResetStateTesting clears recurrent state at each sequence boundary
	// while testing.
	ResetStateTesting bool

	// RestoreStateTraining preserves training-mode state across a switch to
	// testing and back, instead of starting from zero.
	RestoreStateTraining bool

	// RestoreStateTesting preserves testing-mode state across a switch to
	// training and back.
	RestoreStateTesting bool

	// TruncateSteps bounds how many trailing timesteps receive gradient
	// accumulation during backpropagation. UnlimitedSteps visits all of them;
	// values below UnlimitedSteps are rejected.
	TruncateSteps int

	// DoubleTanh applies tanh to the LSTM cell state when forming the
	// output, h = tanh(c) * o. When false, h = c * o.
	DoubleTanh bool

	// Weight-decay eligibility per parameter category. Biases are never
	// regularized. RegulateStateWeights only matters for cells with peephole
	// connections.
	RegulateDirectWeights    bool
	RegulateRecurrentWeights bool
	RegulateStateWeights     bool

	// ReversedInput makes the layer process timestep indices in descending
	// order while still writing outputs at their original indices.
	ReversedInput bool
}

// DefaultConfig returns the documented defaults: state carried across
// sequences, no cross-mode restore, unlimited backpropagation, double tanh
// on, and weight decay on direct weights only.
func DefaultConfig() Config {
	return Config{
		TruncateSteps:         UnlimitedSteps,
		DoubleTanh:            true,
		RegulateDirectWeights: true,
	}
}

// Validate rejects configurations that would otherwise fail silently at
// replay time.
func (c Config) Validate() error {
	if c.TruncateSteps < UnlimitedSteps {
		return fmt.Errorf("nn: truncateSteps must be >= -1, got %d", c.TruncateSteps)
	}
	return nil
}
