package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/backend/cpu"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

func TestAttentionWeightsSumToOne(t *testing.T) {
	layer, err := NewAttentionLayer(cpu.New(), 3, 2, DefaultConfig())
	require.NoError(t, err)

	// With every input identical, the output is that same vector exactly
	// when the softmax weights sum to one, whatever the weight values.
	v := []float32{0.5, -1.25}
	in := graph.NewSequence(3)
	require.NoError(t, in.Put(
		tensor.MustFromSlice(v, tensor.Shape{2, 1}),
		tensor.MustFromSlice(v, tensor.Shape{2, 1}),
		tensor.MustFromSlice(v, tensor.Shape{2, 1}),
	))

	out, err := layer.ForwardProcess(in, true)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, 0.5, out.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, -1.25, out.Single(0).At(1, 0), 1e-6)
}

func TestAttentionOutputIsConvexCombination(t *testing.T) {
	layer, err := NewAttentionLayer(cpu.New(), 2, 1, DefaultConfig())
	require.NoError(t, err)

	in := graph.NewSequence(2)
	require.NoError(t, in.Put(
		tensor.MustFromSlice([]float32{0}, tensor.Shape{1, 1}),
		tensor.MustFromSlice([]float32{1}, tensor.Shape{1, 1}),
	))

	out, err := layer.ForwardProcess(in, true)
	require.NoError(t, err)

	// out = w1*0 + w2*1 with w1+w2 = 1, so it must lie strictly inside
	// (0, 1).
	got := out.Single(0).At(0, 0)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestAttentionRejectsMismatchedInputWidth(t *testing.T) {
	layer, err := NewAttentionLayer(cpu.New(), 2, 2, DefaultConfig())
	require.NoError(t, err)

	in := graph.NewSequence(2)
	require.NoError(t, in.Put(
		tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2, 1}),
		tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}),
	))

	assert.NotPanics(t, func() {
		_, err = layer.ForwardProcess(in, true)
		assert.ErrorContains(t, err, "attention input 1")
	})
}

func TestAttentionIsNotRecurrent(t *testing.T) {
	layer, err := NewAttentionLayer(cpu.New(), 2, 3, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, layer.IsRecurrentLayer())
	assert.Equal(t, 3, layer.Width())
}

func TestAttentionContextFeedsBack(t *testing.T) {
	cell, err := NewAttentionCell(2, 1, ConstantInit(0.5), tensor.Float32)
	require.NoError(t, err)
	layer, err := NewRecurrentLayer(cpu.New(), cell, DefaultConfig())
	require.NoError(t, err)

	in := graph.NewSequence(2)
	require.NoError(t, in.Put(
		tensor.MustFromSlice([]float32{0}, tensor.Shape{1, 1}),
		tensor.MustFromSlice([]float32{1}, tensor.Shape{1, 1}),
	))

	first, err := layer.ForwardProcess(in, true)
	require.NoError(t, err)
	second, err := layer.ForwardProcess(in, true)
	require.NoError(t, err)

	// The produced context becomes the next call's previous output, which
	// shifts the scores on the second call.
	assert.NotEqual(t, first.Single(0).At(0, 0), second.Single(0).At(0, 0))
}

func TestAttentionBackward(t *testing.T) {
	layer, err := NewAttentionLayer(cpu.New(), 2, 2, DefaultConfig())
	require.NoError(t, err)

	in := graph.NewSequence(2)
	require.NoError(t, in.Put(
		tensor.MustFromSlice([]float32{1, 0}, tensor.Shape{2, 1}),
		tensor.MustFromSlice([]float32{0, 1}, tensor.Shape{2, 1}),
	))

	_, err = layer.ForwardProcess(in, true)
	require.NoError(t, err)

	grad := graph.NewSequence(1)
	require.NoError(t, grad.Put(tensor.MustFromSlice([]float32{1, 1}, tensor.Shape{2, 1})))
	inGrad, err := layer.BackwardProcess(grad)
	require.NoError(t, err)

	require.Equal(t, 2, inGrad.Depth())
	require.Equal(t, 1, inGrad.Len())
	for _, g := range inGrad.Get(0) {
		assert.Equal(t, tensor.Shape{2, 1}, g.Shape())
	}
	assert.NotEmpty(t, layer.LayerWeightGradients())
}

func TestAttentionRequiresInputs(t *testing.T) {
	_, err := NewAttentionCell(0, 2, nil, tensor.Float32)
	require.Error(t, err)
}
