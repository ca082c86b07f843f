package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// GravesLSTMCell augments the standard LSTM with peephole connections: the
// input and forget gates also read the previous cell state, and the output
// gate reads the freshly computed cell state:
//
//	i = sigma(Wi @ x + Ui @ h(t-1) + Ci @ c(t-1) + bi)
//	f = sigma(Wf @ x + Uf @ h(t-1) + Cf @ c(t-1) + bf)
//	s = tanh(Ws @ x + Us @ h(t-1) + bs)
//	c = i * s + f * c(t-1)
//	o = sigma(Wo @ x + Uo @ h(t-1) + Co @ c + bo)
//	h = tanh(c) * o        (or c * o when doubleTanh is off)
type GravesLSTMCell struct {
	width      int
	weights    *WeightSet
	doubleTanh bool

	wi, wf, wo, ws *tensor.RawTensor
	ui, uf, uo, us *tensor.RawTensor
	ci, cf, co     *tensor.RawTensor
	bi, bf, bo, bs *tensor.RawTensor
}

// NewGravesLSTMCell creates a Graves-style LSTM cell. The peephole weights
// register under the state category so RegulateStateWeights can target them.
func NewGravesLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*GravesLSTMCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	ws := NewWeightSet(init, dtype)
	c := &GravesLSTMCell{
		width:      width,
		weights:    ws,
		doubleTanh: doubleTanh,
		wi:         ws.Direct("Wi", width, inputWidth),
		wf:         ws.Direct("Wf", width, inputWidth),
		wo:         ws.Direct("Wo", width, inputWidth),
		ws:         ws.Direct("Ws", width, inputWidth),
		ui:         ws.Recurrent("Ui", width),
		uf:         ws.Recurrent("Uf", width),
		uo:         ws.Recurrent("Uo", width),
		us:         ws.Recurrent("Us", width),
		ci:         ws.State("Ci", width),
		cf:         ws.State("Cf", width),
		co:         ws.State("Co", width),
		bi:         ws.Bias("bi", width),
		bf:         ws.Bias("bf", width),
		bo:         ws.Bias("bo", width),
		bs:         ws.Bias("bs", width),
	}
	return c, nil
}

func (c *GravesLSTMCell) Width() int            { return c.width }
func (c *GravesLSTMCell) WeightSet() *WeightSet { return c.weights }
func (c *GravesLSTMCell) Recurrent() bool       { return true }

func (c *GravesLSTMCell) Inputs() int { return 1 }

func (c *GravesLSTMCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}, {c.width, 1}}
}

func (c *GravesLSTMCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, hPrev, cPrev := inputs[0], states[0], states[1]

	peepholeGate := func(w, u, peep, bias *tensor.RawTensor, state graph.Node, name string) graph.Node {
		pre := b.Add(b.Dot(b.Weight(w), x), b.Dot(b.Weight(u), hPrev))
		pre = b.Add(b.Add(pre, b.Dot(b.Weight(peep), state)), b.Weight(bias))
		return b.Name(b.Apply(pre, act.Sigmoid), name)
	}

	i := peepholeGate(c.wi, c.ui, c.ci, c.bi, cPrev, "i")
	f := peepholeGate(c.wf, c.uf, c.cf, c.bf, cPrev, "f")

	sPre := b.Add(b.Add(b.Dot(b.Weight(c.ws), x), b.Dot(b.Weight(c.us), hPrev)), b.Weight(c.bs))
	s := b.Name(b.Apply(sPre, act.Tanh), "s")

	cell := b.Name(b.Add(b.Mul(i, s), b.Mul(f, cPrev)), "c")

	// The output gate peeks at the current cell state, not the previous one.
	o := peepholeGate(c.wo, c.uo, c.co, c.bo, cell, "o")

	inner := cell
	if c.doubleTanh {
		inner = b.Apply(cell, act.Tanh)
	}
	h := b.Name(b.Mul(inner, o), "Output")
	return h, []graph.Node{h, cell}
}
