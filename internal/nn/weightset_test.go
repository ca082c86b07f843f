package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

func TestLSTMWeightShapes(t *testing.T) {
	cell, err := NewLSTMCell(3, 5, true, nil, tensor.Float32)
	require.NoError(t, err)

	ws := cell.WeightSet()
	for _, name := range []string{"Wi", "Wf", "Wo", "Ws"} {
		p := ws.Get(name)
		require.NotNil(t, p, name)
		assert.Equal(t, tensor.Shape{5, 3}, p.Tensor().Shape(), name)
		assert.Equal(t, CategoryDirect, p.Category(), name)
	}
	for _, name := range []string{"Ui", "Uf", "Uo", "Us"} {
		p := ws.Get(name)
		require.NotNil(t, p, name)
		assert.Equal(t, tensor.Shape{5, 5}, p.Tensor().Shape(), name)
		assert.Equal(t, CategoryRecurrent, p.Category(), name)
	}
	for _, name := range []string{"bi", "bf", "bo", "bs"} {
		p := ws.Get(name)
		require.NotNil(t, p, name)
		assert.Equal(t, tensor.Shape{5, 1}, p.Tensor().Shape(), name)
		assert.Equal(t, CategoryBias, p.Category(), name)
	}
}

func TestNumberOfParameters(t *testing.T) {
	cell, err := NewLSTMCell(3, 5, true, nil, tensor.Float32)
	require.NoError(t, err)

	// 4 direct (5x3) + 4 recurrent (5x5) + 4 biases (5x1).
	want := 4*5*3 + 4*5*5 + 4*5
	assert.Equal(t, want, cell.WeightSet().NumberOfParameters())
}

func TestReinitializePreservesIdentityAndShape(t *testing.T) {
	cell, err := NewGRUCell(2, 3, nil, tensor.Float32)
	require.NoError(t, err)

	ws := cell.WeightSet()
	before := ws.Get("Wz").Tensor()
	shape := before.Shape().Clone()

	ws.Reinitialize()

	after := ws.Get("Wz").Tensor()
	assert.Same(t, before, after, "tensor identity must survive reinitialization")
	assert.Equal(t, shape, after.Shape())

	// Biases come back zeroed.
	bz := ws.Get("bz").Tensor()
	for i := 0; i < bz.Rows(); i++ {
		assert.Zero(t, bz.At(i, 0))
	}
}

func TestRegularizedWeightsSelection(t *testing.T) {
	cell, err := NewGravesLSTMCell(2, 3, true, nil, tensor.Float32)
	require.NoError(t, err)
	ws := cell.WeightSet()

	direct := ws.RegularizedWeights(true, false, false)
	assert.Len(t, direct, 4)

	all := ws.RegularizedWeights(true, true, true)
	// 4 direct + 4 recurrent + 3 peephole; biases excluded.
	assert.Len(t, all, 11)

	none := ws.RegularizedWeights(false, false, false)
	assert.Empty(t, none)
}

func TestStateDictRoundTrip(t *testing.T) {
	cell, err := NewMinGRUCell(2, 3, nil, tensor.Float32)
	require.NoError(t, err)
	ws := cell.WeightSet()

	saved := ws.StateDict()
	original := ws.Get("Wf").Tensor().Clone()

	ws.Reinitialize()
	require.NoError(t, ws.LoadStateDict(saved))

	restored := ws.Get("Wf").Tensor()
	for r := 0; r < restored.Rows(); r++ {
		for c := 0; c < restored.Columns(); c++ {
			assert.Equal(t, original.At(r, c), restored.At(r, c))
		}
	}
}

func TestLoadStateDictRejectsMissingAndMismatched(t *testing.T) {
	cell, err := NewMinGRUCell(2, 3, nil, tensor.Float32)
	require.NoError(t, err)
	ws := cell.WeightSet()

	err = ws.LoadStateDict(map[string]*tensor.RawTensor{})
	assert.Error(t, err)

	dict := ws.StateDict()
	dict["Wf"] = tensor.Zeros(tensor.Shape{1, 1}, tensor.Float32)
	assert.Error(t, ws.LoadStateDict(dict))
}

func TestStateDictSnapshotIsIsolated(t *testing.T) {
	cell, err := NewSimpleCell(2, 2, nil, nil, tensor.Float32)
	require.NoError(t, err)
	ws := cell.WeightSet()

	saved := ws.StateDict()
	ws.Get("W").Tensor().Set(99, 0, 0)
	assert.NotEqual(t, 99.0, saved["W"].At(0, 0))
}
