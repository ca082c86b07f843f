package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/backend/cpu"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// linearDef computes W @ x with no recurrent state.
type linearDef struct {
	w *tensor.RawTensor
}

func (d *linearDef) Inputs() int                      { return 1 }
func (d *linearDef) StateShapes() []tensor.Shape      { return nil }
func (d *linearDef) Define(b *Builder, inputs, _ []Node) (Node, []Node) {
	return b.Dot(b.Weight(d.w), inputs[0]), nil
}

// accumulatorDef carries a running sum: state' = state + x, output = state'.
type accumulatorDef struct{}

func (accumulatorDef) Inputs() int { return 1 }
func (accumulatorDef) StateShapes() []tensor.Shape {
	return []tensor.Shape{{2, 1}}
}
func (accumulatorDef) Define(b *Builder, inputs, states []Node) (Node, []Node) {
	sum := b.Add(states[0], inputs[0])
	return sum, []Node{sum}
}

func column(vals ...float32) *tensor.RawTensor {
	return tensor.MustFromSlice(vals, tensor.Shape{len(vals), 1})
}

func inputSequence(cols ...*tensor.RawTensor) *Sequence {
	seq := NewSequence(1)
	for _, c := range cols {
		if err := seq.Put(c); err != nil {
			panic(err)
		}
	}
	return seq
}

func TestLinearForward(t *testing.T) {
	w := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	p, err := Build(cpu.New(), &linearDef{w: w})
	require.NoError(t, err)

	in := inputSequence(column(1, 0), column(0, 1))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	require.Equal(t, 2, out.Len())
	assert.InDelta(t, 1.0, out.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 3.0, out.Single(0).At(1, 0), 1e-6)
	assert.InDelta(t, 2.0, out.Single(1).At(0, 0), 1e-6)
	assert.InDelta(t, 4.0, out.Single(1).At(1, 0), 1e-6)
}

func TestForwardDeterminism(t *testing.T) {
	w := tensor.MustFromSlice([]float32{0.5, -0.25, 0.75, 1.5}, tensor.Shape{2, 2})
	p, err := Build(cpu.New(), &linearDef{w: w})
	require.NoError(t, err)

	in := inputSequence(column(0.3, -0.7))
	first := NewSequence(1)
	require.NoError(t, p.Calculate(in, first))

	p.Reset(true)
	second := NewSequence(1)
	require.NoError(t, p.Calculate(in, second))

	for i := 0; i < 2; i++ {
		assert.Equal(t, first.Single(0).At(i, 0), second.Single(0).At(i, 0))
	}
}

func TestLinearWeightGradient(t *testing.T) {
	w := tensor.MustFromSlice([]float32{1, 0, 0, 1}, tensor.Shape{2, 2})
	p, err := Build(cpu.New(), &linearDef{w: w})
	require.NoError(t, err)

	in := inputSequence(column(2, 3))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	outGrad := inputSequence(column(1, 1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, -1))

	// d(W@x)/dW = g @ x^T
	wg := p.WeightGradients()[w]
	require.NotNil(t, wg)
	assert.InDelta(t, 2.0, wg.At(0, 0), 1e-6)
	assert.InDelta(t, 3.0, wg.At(0, 1), 1e-6)
	assert.InDelta(t, 2.0, wg.At(1, 0), 1e-6)
	assert.InDelta(t, 3.0, wg.At(1, 1), 1e-6)

	// d(W@x)/dx = W^T @ g, identity W keeps g unchanged.
	assert.InDelta(t, 1.0, inGrad.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 1.0, inGrad.Single(0).At(1, 0), 1e-6)
}

// scaleDef computes c * x element-wise with a constant scale vector.
type scaleDef struct {
	c    *tensor.RawTensor
	stop bool
}

func (d *scaleDef) Inputs() int                 { return 1 }
func (d *scaleDef) StateShapes() []tensor.Shape { return nil }
func (d *scaleDef) Define(b *Builder, inputs, _ []Node) (Node, []Node) {
	return b.Mul(b.Constant(d.c, d.stop), inputs[0]), nil
}

func TestConstantGradientObservable(t *testing.T) {
	c := column(2, 5)
	p, err := Build(cpu.New(), &scaleDef{c: c})
	require.NoError(t, err)

	in := inputSequence(column(3, 4))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	outGrad := inputSequence(column(1, 1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, -1))

	// d(c*x)/dc = g * x; the constant is not trainable but its gradient
	// stays visible.
	cg := p.WeightGradients()[c]
	require.NotNil(t, cg)
	assert.InDelta(t, 3.0, cg.At(0, 0), 1e-6)
	assert.InDelta(t, 4.0, cg.At(1, 0), 1e-6)
}

func TestStopGradientConstantDiscarded(t *testing.T) {
	c := column(2, 5)
	p, err := Build(cpu.New(), &scaleDef{c: c, stop: true})
	require.NoError(t, err)

	in := inputSequence(column(3, 4))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	outGrad := inputSequence(column(1, 1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, -1))

	_, ok := p.WeightGradients()[c]
	assert.False(t, ok)
	// Flow through the multiply is unaffected: d(c*x)/dx = g * c.
	assert.InDelta(t, 2.0, inGrad.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 5.0, inGrad.Single(0).At(1, 0), 1e-6)
}

func TestRecurrentStateThreading(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)

	in := inputSequence(column(1, 1), column(2, 2), column(3, 3))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	// Running sums: 1, 3, 6.
	assert.InDelta(t, 1.0, out.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 3.0, out.Single(1).At(0, 0), 1e-6)
	assert.InDelta(t, 6.0, out.Single(2).At(0, 0), 1e-6)
}

func TestStateCarriesAcrossSequences(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)

	in := inputSequence(column(5, 5))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	// Without a state reset the sum continues.
	p.Reset(false)
	out2 := NewSequence(1)
	require.NoError(t, p.Calculate(in, out2))
	assert.InDelta(t, 10.0, out2.Single(0).At(0, 0), 1e-6)

	// With a state reset it starts over.
	p.Reset(true)
	out3 := NewSequence(1)
	require.NoError(t, p.Calculate(in, out3))
	assert.InDelta(t, 5.0, out3.Single(0).At(0, 0), 1e-6)
}

func TestStateSnapshots(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)

	in := inputSequence(column(4, 4))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))
	p.StoreState(Training)

	p.Reset(true)
	require.NoError(t, p.Calculate(in, NewSequence(1)))
	p.StoreState(Testing)

	p.RestoreState(Training)
	p.Reset(false)
	resumed := NewSequence(1)
	require.NoError(t, p.Calculate(in, resumed))
	assert.InDelta(t, 8.0, resumed.Single(0).At(0, 0), 1e-6)

	p.RestoreState(Testing)
	p.Reset(false)
	resumed2 := NewSequence(1)
	require.NoError(t, p.Calculate(in, resumed2))
	assert.InDelta(t, 8.0, resumed2.Single(0).At(0, 0), 1e-6)
}

func TestGradientFlowsThroughTime(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)

	in := inputSequence(column(1, 1), column(1, 1), column(1, 1))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	outGrad := inputSequence(column(1, 1), column(1, 1), column(1, 1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, -1))

	// Input at step t contributes to outputs t..2, so its gradient is the
	// count of downstream outputs.
	assert.InDelta(t, 3.0, inGrad.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 2.0, inGrad.Single(1).At(0, 0), 1e-6)
	assert.InDelta(t, 1.0, inGrad.Single(2).At(0, 0), 1e-6)
}

func TestTruncatedBackpropagation(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)

	in := inputSequence(column(1, 1), column(1, 1), column(1, 1))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	outGrad := inputSequence(column(1, 1), column(1, 1), column(1, 1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, 1))

	// Only the last processed step is visited; earlier steps get zeros.
	assert.InDelta(t, 0.0, inGrad.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, inGrad.Single(1).At(0, 0), 1e-6)
	assert.InDelta(t, 1.0, inGrad.Single(2).At(0, 0), 1e-6)
}

func TestReversedReplay(t *testing.T) {
	p, err := Build(cpu.New(), accumulatorDef{})
	require.NoError(t, err)
	p.SetReversed(true)

	in := inputSequence(column(1, 1), column(2, 2), column(3, 3))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))

	// Processing runs 2,1,0 but outputs land at their original indices:
	// suffix sums 6, 5, 3.
	assert.InDelta(t, 6.0, out.Single(0).At(0, 0), 1e-6)
	assert.InDelta(t, 5.0, out.Single(1).At(0, 0), 1e-6)
	assert.InDelta(t, 3.0, out.Single(2).At(0, 0), 1e-6)
}

func TestActivationAndJoinGradients(t *testing.T) {
	w := tensor.MustFromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	def := &joinDef{w: w}
	p, err := Build(cpu.New(), def)
	require.NoError(t, err)

	in := inputSequence(column(0))
	out := NewSequence(1)
	require.NoError(t, p.Calculate(in, out))
	// sigmoid(0) joined with itself, reduced by w: 0.5 + 0.5 = 1.
	assert.InDelta(t, 1.0, out.Single(0).At(0, 0), 1e-6)

	outGrad := inputSequence(column(1))
	inGrad := NewSequence(1)
	require.NoError(t, p.CalculateGradient(outGrad, inGrad, -1))
	// Two sigmoid branches, each with local derivative 0.25 at x=0.
	assert.InDelta(t, 0.5, inGrad.Single(0).At(0, 0), 1e-6)
}

// joinDef exercises Apply, Join, and Dot together: w @ cat(sigma(x), sigma(x)).
type joinDef struct {
	w *tensor.RawTensor
}

func (d *joinDef) Inputs() int                 { return 1 }
func (d *joinDef) StateShapes() []tensor.Shape { return nil }
func (d *joinDef) Define(b *Builder, inputs, _ []Node) (Node, []Node) {
	s := b.Apply(inputs[0], act.Sigmoid)
	joined := b.Join(0, s, s)
	return b.Dot(b.Weight(d.w), joined), nil
}

func TestBuildRejectsWrongStateArity(t *testing.T) {
	_, err := Build(cpu.New(), badStateDef{})
	require.Error(t, err)
}

// badStateDef declares one state slot but returns none.
type badStateDef struct{}

func (badStateDef) Inputs() int                 { return 1 }
func (badStateDef) StateShapes() []tensor.Shape { return []tensor.Shape{{2, 1}} }
func (badStateDef) Define(b *Builder, inputs, _ []Node) (Node, []Node) {
	return inputs[0], nil
}
