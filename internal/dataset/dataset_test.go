package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

func col(vals ...float32) *tensor.RawTensor {
	return tensor.MustFromSlice(vals, tensor.Shape{len(vals), 1})
}

func TestMinMaxNormalizer(t *testing.T) {
	n := NewMinMaxNormalizer()
	require.NoError(t, n.Fit([]*tensor.RawTensor{col(0, 5, 10)}))

	out := n.Transform(col(0, 5, 10))
	assert.InDelta(t, 0.0, out.At(0, 0), 1e-6)
	assert.InDelta(t, 0.5, out.At(1, 0), 1e-6)
	assert.InDelta(t, 1.0, out.At(2, 0), 1e-6)

	back := n.Inverse(out)
	assert.InDelta(t, 5.0, back.At(1, 0), 1e-5)
}

func TestMinMaxNormalizerConstantData(t *testing.T) {
	n := NewMinMaxNormalizer()
	require.NoError(t, n.Fit([]*tensor.RawTensor{col(3, 3)}))
	out := n.Transform(col(3))
	assert.Zero(t, out.At(0, 0))
}

func TestZScoreNormalizer(t *testing.T) {
	n := NewZScoreNormalizer()
	require.NoError(t, n.Fit([]*tensor.RawTensor{col(1, 2, 3, 4, 5)}))

	out := n.Transform(col(3))
	assert.InDelta(t, 0.0, out.At(0, 0), 1e-6)

	back := n.Inverse(n.Transform(col(1, 5)))
	assert.InDelta(t, 1.0, back.At(0, 0), 1e-5)
	assert.InDelta(t, 5.0, back.At(1, 0), 1e-5)
}

func TestNormalizerRejectsEmptyFit(t *testing.T) {
	assert.Error(t, NewMinMaxNormalizer().Fit(nil))
	assert.Error(t, NewZScoreNormalizer().Fit(nil))
}

func TestOneHotRoundTrip(t *testing.T) {
	enc, err := NewOneHotEncoder(4, tensor.Float32)
	require.NoError(t, err)

	encoded, err := enc.Encode(2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 1}, encoded.Shape())
	assert.Equal(t, 1.0, encoded.At(2, 0))
	assert.Equal(t, 0.0, encoded.At(0, 0))

	class, err := enc.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, 2, class)
}

func TestOneHotRejectsOutOfRange(t *testing.T) {
	enc, err := NewOneHotEncoder(3, tensor.Float32)
	require.NoError(t, err)
	_, err = enc.Encode(3)
	assert.Error(t, err)
	_, err = enc.Encode(-1)
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	data := "a,b\n1,2\n3,4\n"
	rows, err := ReadCSV(strings.NewReader(data), CSVOptions{SkipHeader: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, rows[0].At(0, 0))
	assert.Equal(t, 4.0, rows[1].At(1, 0))
}

func TestReadCSVRejectsNonNumeric(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("1,x\n"), CSVOptions{})
	assert.Error(t, err)
}

func TestTrainTestSplit(t *testing.T) {
	inputs := []*tensor.RawTensor{col(1), col(2), col(3), col(4), col(5)}
	targets := []*tensor.RawTensor{col(10), col(20), col(30), col(40), col(50)}

	s, err := TrainTestSplit(inputs, targets, 0.4, false, 0)
	require.NoError(t, err)
	assert.Len(t, s.TrainInputs, 3)
	assert.Len(t, s.TestInputs, 2)
	// Unshuffled split keeps temporal order: the tail becomes test data.
	assert.Equal(t, 4.0, s.TestInputs[0].At(0, 0))
	assert.Equal(t, 40.0, s.TestTargets[0].At(0, 0))
}

func TestTrainTestSplitShuffleKeepsPairs(t *testing.T) {
	inputs := []*tensor.RawTensor{col(1), col(2), col(3), col(4)}
	targets := []*tensor.RawTensor{col(10), col(20), col(30), col(40)}

	s, err := TrainTestSplit(inputs, targets, 0.5, true, 42)
	require.NoError(t, err)
	for i := range s.TrainInputs {
		assert.Equal(t, s.TrainInputs[i].At(0, 0)*10, s.TrainTargets[i].At(0, 0))
	}
	for i := range s.TestInputs {
		assert.Equal(t, s.TestInputs[i].At(0, 0)*10, s.TestTargets[i].At(0, 0))
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	_, err := TrainTestSplit([]*tensor.RawTensor{col(1)}, nil, 0.5, false, 0)
	assert.Error(t, err)
	_, err = TrainTestSplit(nil, nil, 1.0, false, 0)
	assert.Error(t, err)
}

func TestWindows(t *testing.T) {
	series := []*tensor.RawTensor{col(1), col(2), col(3), col(4)}
	inputs, targets, err := Windows(series, 2)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	require.Len(t, targets, 2)
	assert.Equal(t, 1.0, inputs[0][0].At(0, 0))
	assert.Equal(t, 3.0, targets[0].At(0, 0))
	assert.Equal(t, 4.0, targets[1].At(0, 0))
}

func TestWindowsValidation(t *testing.T) {
	series := []*tensor.RawTensor{col(1)}
	_, _, err := Windows(series, 1)
	assert.Error(t, err)
	_, _, err = Windows(series, 0)
	assert.Error(t, err)
}

func TestTextEncoder(t *testing.T) {
	enc, err := NewTextEncoder("r50k_base")
	if err != nil {
		t.Skipf("tokenizer data unavailable: %v", err)
	}

	indices := enc.Encode("hello hello hello")
	require.GreaterOrEqual(t, len(indices), 2)
	assert.Greater(t, enc.VocabSize(), 0)
	// Repeated tokens map to the same dense index.
	assert.Equal(t, indices[len(indices)-2], indices[len(indices)-1])

	text, err := enc.Decode(indices)
	require.NoError(t, err)
	assert.Equal(t, "hello hello hello", text)

	oneHot, err := enc.OneHotSequence(indices, tensor.Float32)
	require.NoError(t, err)
	require.Len(t, oneHot, len(indices))
	assert.Equal(t, enc.VocabSize(), oneHot[0].Rows())
}
