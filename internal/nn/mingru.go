package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// MinGRUCell is the minimal gated unit, a GRU with the update and reset
// gates merged into one forget gate:
//
//	f = sigma(Wf @ x + Uf @ h(t-1) + bf)
//	h~ = tanh(Wh @ x + Uh @ (h(t-1) * f) + bh)
//	out = (1 - f) * h~ + f * h(t-1)
type MinGRUCell struct {
	width   int
	weights *WeightSet

	wf, wh *tensor.RawTensor
	uf, uh *tensor.RawTensor
	bf, bh *tensor.RawTensor
	ones   *tensor.RawTensor
}

// NewMinGRUCell creates a minimal GRU cell.
func NewMinGRUCell(inputWidth, width int, init Initializer, dtype tensor.DataType) (*MinGRUCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	ws := NewWeightSet(init, dtype)
	c := &MinGRUCell{
		width:   width,
		weights: ws,
		wf:      ws.Direct("Wf", width, inputWidth),
		wh:      ws.Direct("Wh", width, inputWidth),
		uf:      ws.Recurrent("Uf", width),
		uh:      ws.Recurrent("Uh", width),
		bf:      ws.Bias("bf", width),
		bh:      ws.Bias("bh", width),
		ones:    ws.Ones("ones", width),
	}
	return c, nil
}

func (c *MinGRUCell) Width() int            { return c.width }
func (c *MinGRUCell) WeightSet() *WeightSet { return c.weights }
func (c *MinGRUCell) Recurrent() bool       { return true }

func (c *MinGRUCell) Inputs() int { return 1 }

func (c *MinGRUCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}}
}

func (c *MinGRUCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, hPrev := inputs[0], states[0]

	fPre := b.Add(b.Add(b.Dot(b.Weight(c.wf), x), b.Dot(b.Weight(c.uf), hPrev)), b.Weight(c.bf))
	f := b.Name(b.Apply(fPre, act.Sigmoid), "f")

	hPre := b.Add(b.Add(b.Dot(b.Weight(c.wh), x), b.Dot(b.Weight(c.uh), b.Mul(hPrev, f))), b.Weight(c.bh))
	hCand := b.Name(b.Apply(hPre, act.Tanh), "h~")

	keep := b.Sub(b.Constant(c.ones, true), f)
	out := b.Name(b.Add(b.Mul(keep, hCand), b.Mul(f, hPrev)), "Output")
	return out, []graph.Node{out}
}
