package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// PeepholeLSTMCell replaces the previous-output recurrence of the standard
// LSTM with a direct read of the previous cell state in every gate:
//
//	i = sigma(Wi @ x + Ui @ c(t-1) + bi)
//	f = sigma(Wf @ x + Uf @ c(t-1) + bf)
//	o = sigma(Wo @ x + Uo @ c(t-1) + bo)
//	s = tanh(Ws @ x + bs)
//	c = i * s + f * c(t-1)
//	h = tanh(c) * o        (or c * o when doubleTanh is off)
type PeepholeLSTMCell struct {
	width      int
	weights    *WeightSet
	doubleTanh bool

	wi, wf, wo, ws *tensor.RawTensor
	ui, uf, uo     *tensor.RawTensor
	bi, bf, bo, bs *tensor.RawTensor
}

// NewPeepholeLSTMCell creates a peephole LSTM cell. The state-gating weights
// keep the recurrent category since they carry the cell's only recurrence.
func NewPeepholeLSTMCell(inputWidth, width int, doubleTanh bool, init Initializer, dtype tensor.DataType) (*PeepholeLSTMCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	ws := NewWeightSet(init, dtype)
	c := &PeepholeLSTMCell{
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
		bi:         ws.Bias("bi", width),
		bf:         ws.Bias("bf", width),
		bo:         ws.Bias("bo", width),
		bs:         ws.Bias("bs", width),
	}
	return c, nil
}

func (c *PeepholeLSTMCell) Width() int            { return c.width }
func (c *PeepholeLSTMCell) WeightSet() *WeightSet { return c.weights }
func (c *PeepholeLSTMCell) Recurrent() bool       { return true }

func (c *PeepholeLSTMCell) Inputs() int { return 1 }

// StateShapes declares a single cell-state slot; the previous output never
// feeds back into the gates.
func (c *PeepholeLSTMCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}}
}

func (c *PeepholeLSTMCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, cPrev := inputs[0], states[0]

	gate := func(w, u, bias *tensor.RawTensor, name string) graph.Node {
		pre := b.Add(b.Add(b.Dot(b.Weight(w), x), b.Dot(b.Weight(u), cPrev)), b.Weight(bias))
		return b.Name(b.Apply(pre, act.Sigmoid), name)
	}

	i := gate(c.wi, c.ui, c.bi, "i")
	f := gate(c.wf, c.uf, c.bf, "f")
	o := gate(c.wo, c.uo, c.bo, "o")
	s := b.Name(b.Apply(b.Add(b.Dot(b.Weight(c.ws), x), b.Weight(c.bs)), act.Tanh), "s")

	cell := b.Name(b.Add(b.Mul(i, s), b.Mul(f, cPrev)), "c")
	inner := cell
	if c.doubleTanh {
		inner = b.Apply(cell, act.Tanh)
	}
	h := b.Name(b.Mul(inner, o), "Output")
	return h, []graph.Node{cell}
}
