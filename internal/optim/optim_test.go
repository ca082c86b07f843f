package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

func makeParam(t *testing.T, name string, values []float32) *nn.Parameter {
	t.Helper()
	return nn.NewParameter(name, tensor.MustFromSlice(values, tensor.Shape{len(values), 1}), nn.CategoryDirect)
}

func gradsOf(p *nn.Parameter, values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	return map[*tensor.RawTensor]*tensor.RawTensor{
		p.Tensor(): tensor.MustFromSlice(values, p.Tensor().Shape()),
	}
}

func TestSGDStep(t *testing.T) {
	p := makeParam(t, "w", []float32{1, 2})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step(gradsOf(p, []float32{1, -1}))

	assert.InDelta(t, 0.9, p.Tensor().At(0, 0), 1e-6)
	assert.InDelta(t, 2.1, p.Tensor().At(1, 0), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	p := makeParam(t, "w", []float32{0})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 1, Momentum: 0.5})

	opt.Step(gradsOf(p, []float32{1}))
	// velocity = 1, param = -1
	assert.InDelta(t, -1.0, p.Tensor().At(0, 0), 1e-6)

	opt.Step(gradsOf(p, []float32{1}))
	// velocity = 0.5 + 1 = 1.5, param = -2.5
	assert.InDelta(t, -2.5, p.Tensor().At(0, 0), 1e-6)
}

func TestSGDWeightDecayRespectsRegularizedSet(t *testing.T) {
	decayed := makeParam(t, "w", []float32{1})
	spared := makeParam(t, "b", []float32{1})
	opt := NewSGD([]*nn.Parameter{decayed, spared}, SGDConfig{
		LR:          0.1,
		Decay:       1,
		Regularized: []*tensor.RawTensor{decayed.Tensor()},
	})

	grads := map[*tensor.RawTensor]*tensor.RawTensor{
		decayed.Tensor(): tensor.MustFromSlice([]float32{0}, tensor.Shape{1, 1}),
		spared.Tensor():  tensor.MustFromSlice([]float32{0}, tensor.Shape{1, 1}),
	}
	opt.Step(grads)

	// Decayed: 1 - 0.1*(0 + 1*1) = 0.9; spared: unchanged.
	assert.InDelta(t, 0.9, decayed.Tensor().At(0, 0), 1e-6)
	assert.InDelta(t, 1.0, spared.Tensor().At(0, 0), 1e-6)
}

func TestSGDSkipsParamsWithoutGradient(t *testing.T) {
	p := makeParam(t, "w", []float32{5})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{})
	assert.InDelta(t, 5.0, p.Tensor().At(0, 0), 1e-6)
}

func TestAdamFirstStep(t *testing.T) {
	p := makeParam(t, "w", []float32{1})
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	opt.Step(gradsOf(p, []float32{0.5}))

	// After bias correction the first step moves by nearly lr, against the
	// gradient sign.
	got := p.Tensor().At(0, 0)
	require.Less(t, got, 1.0)
	assert.InDelta(t, 0.9, got, 1e-3)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(w) = w^2 from w=1; gradient 2w.
	p := makeParam(t, "w", []float32{1})
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.05})

	for i := 0; i < 200; i++ {
		w := p.Tensor().At(0, 0)
		opt.Step(gradsOf(p, []float32{float32(2 * w)}))
	}
	assert.InDelta(t, 0.0, p.Tensor().At(0, 0), 1e-2)
}

func TestLearningRateSchedule(t *testing.T) {
	p := makeParam(t, "w", []float32{0})
	var opt Optimizer = NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	assert.InDelta(t, 0.1, opt.LR(), 1e-9)
	opt.SetLR(0.01)
	assert.InDelta(t, 0.01, opt.LR(), 1e-9)
}
