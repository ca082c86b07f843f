package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// LSTMCell is the standard long short-term memory cell:
//
//	i = sigma(Wi @ x + Ui @ h(t-1) + bi)
//	f = sigma(Wf @ x + Uf @ h(t-1) + bf)
//	o = sigma(Wo @ x + Uo @ h(t-1) + bo)
//	s = tanh(Ws @ x + Us @ h(t-1) + bs)
//	c = i * s + f * c(t-1)
//	h = tanh(c) * o        (or c * o when doubleTanh is off)
type LSTMCell struct {
	width      int
	weights    *WeightSet
	doubleTanh bool

	wi, wf, wo, ws *tensor.RawTensor
	ui, uf, uo, us *tensor.RawTensor
	bi, bf, bo, bs *tensor.RawTensor
}

// NewLSTMCell creates an LSTM cell with four direct weights, four recurrent
// weights, and four biases.
func NewLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*LSTMCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	ws := NewWeightSet(init, dtype)
	c := &LSTMCell{
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
		bi:         ws.Bias("bi", width),
		bf:         ws.Bias("bf", width),
		bo:         ws.Bias("bo", width),
		bs:         ws.Bias("bs", width),
	}
	return c, nil
}

func (c *LSTMCell) Width() int            { return c.width }
func (c *LSTMCell) WeightSet() *WeightSet { return c.weights }
func (c *LSTMCell) Recurrent() bool       { return true }

func (c *LSTMCell) Inputs() int { return 1 }

// StateShapes declares two state slots: previous output and previous cell
// state.
func (c *LSTMCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}, {c.width, 1}}
}

func (c *LSTMCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, hPrev, cPrev := inputs[0], states[0], states[1]

	gate := func(w, u, bias *tensor.RawTensor, fn act.Activation, name string) graph.Node {
		pre := b.Add(b.Add(b.Dot(b.Weight(w), x), b.Dot(b.Weight(u), hPrev)), b.Weight(bias))
		return b.Name(b.Apply(pre, fn), name)
	}

	i := gate(c.wi, c.ui, c.bi, act.Sigmoid, "i")
	f := gate(c.wf, c.uf, c.bf, act.Sigmoid, "f")
	o := gate(c.wo, c.uo, c.bo, act.Sigmoid, "o")
	s := gate(c.ws, c.us, c.bs, act.Tanh, "s")

	cell := b.Name(b.Add(b.Mul(i, s), b.Mul(f, cPrev)), "c")
	inner := cell
	if c.doubleTanh {
		inner = b.Apply(cell, act.Tanh)
	}
	h := b.Name(b.Mul(inner, o), "Output")
	return h, []graph.Node{h, cell}
}
