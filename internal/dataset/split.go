package dataset

import (
	"fmt"
	"math/rand"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Split divides paired inputs and targets into training and testing
// portions.
type Split struct {
	TrainInputs  []*tensor.RawTensor
	TrainTargets []*tensor.RawTensor
	TestInputs   []*tensor.RawTensor
	TestTargets  []*tensor.RawTensor
}

// TrainTestSplit splits pairs by test fraction. When shuffle is true the
// pairing order is randomized first; otherwise the tail of the data becomes
// the test portion, which preserves temporal order for sequence data.
func TrainTestSplit(inputs, targets []*tensor.RawTensor, testFraction float64, shuffle bool, seed int64) (*Split, error) {
	if len(inputs) != len(targets) {
		return nil, fmt.Errorf("dataset: %d inputs vs %d targets", len(inputs), len(targets))
	}
	if testFraction < 0 || testFraction >= 1 {
		return nil, fmt.Errorf("dataset: test fraction must be in [0, 1), got %g", testFraction)
	}

	n := len(inputs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		//nolint:gosec // reproducible shuffling, not security-critical
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	testCount := int(float64(n) * testFraction)
	trainCount := n - testCount

	s := &Split{}
	for i, idx := range order {
		if i < trainCount {
			s.TrainInputs = append(s.TrainInputs, inputs[idx])
			s.TrainTargets = append(s.TrainTargets, targets[idx])
		} else {
			s.TestInputs = append(s.TestInputs, inputs[idx])
			s.TestTargets = append(s.TestTargets, targets[idx])
		}
	}
	return s, nil
}

// Windows cuts a series of per-step columns into overlapping input/target
// windows for next-step prediction: each input window covers length steps
// and its target is the step that follows.
func Windows(series []*tensor.RawTensor, length int) (inputs [][]*tensor.RawTensor, targets []*tensor.RawTensor, err error) {
	if length < 1 {
		return nil, nil, fmt.Errorf("dataset: window length must be positive, got %d", length)
	}
	if len(series) <= length {
		return nil, nil, fmt.Errorf("dataset: series of %d steps too short for windows of %d", len(series), length)
	}
	for start := 0; start+length < len(series); start++ {
		inputs = append(inputs, series[start:start+length])
		targets = append(targets, series[start+length])
	}
	return inputs, targets, nil
}
