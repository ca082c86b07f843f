package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// GRUCell is the gated recurrent unit:
//
//	z = sigma(Wz @ x + Uz @ h(t-1) + bz)
//	r = sigma(Wr @ x + Ur @ h(t-1) + br)
//	h~ = tanh(Wh @ x + Uh @ (h(t-1) * r) + bh)
//	out = (1 - z) * h~ + z * h(t-1)
//
// The (1 - z) term uses an owned all-ones constant whose incoming gradient is
// discarded.
type GRUCell struct {
	width   int
	weights *WeightSet

	wz, wr, wh *tensor.RawTensor
	uz, ur, uh *tensor.RawTensor
	bz, br, bh *tensor.RawTensor
	ones       *tensor.RawTensor
}

// NewGRUCell creates a GRU cell.
func NewGRUCell(inputWidth, width int, init Initializer, dtype tensor.DataType) (*GRUCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	ws := NewWeightSet(init, dtype)
	c := &GRUCell{
		width:   width,
		weights: ws,
		wz:      ws.Direct("Wz", width, inputWidth),
		wr:      ws.Direct("Wr", width, inputWidth),
		wh:      ws.Direct("Wh", width, inputWidth),
		uz:      ws.Recurrent("Uz", width),
		ur:      ws.Recurrent("Ur", width),
		uh:      ws.Recurrent("Uh", width),
		bz:      ws.Bias("bz", width),
		br:      ws.Bias("br", width),
		bh:      ws.Bias("bh", width),
		ones:    ws.Ones("ones", width),
	}
	return c, nil
}

func (c *GRUCell) Width() int            { return c.width }
func (c *GRUCell) WeightSet() *WeightSet { return c.weights }
func (c *GRUCell) Recurrent() bool       { return true }

func (c *GRUCell) Inputs() int { return 1 }

func (c *GRUCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}}
}

func (c *GRUCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, hPrev := inputs[0], states[0]

	gate := func(w, u, bias *tensor.RawTensor, name string) graph.Node {
		pre := b.Add(b.Add(b.Dot(b.Weight(w), x), b.Dot(b.Weight(u), hPrev)), b.Weight(bias))
		return b.Name(b.Apply(pre, act.Sigmoid), name)
	}

	z := gate(c.wz, c.uz, c.bz, "z")
	r := gate(c.wr, c.ur, c.br, "r")

	hPre := b.Add(b.Add(b.Dot(b.Weight(c.wh), x), b.Dot(b.Weight(c.uh), b.Mul(hPrev, r))), b.Weight(c.bh))
	hCand := b.Name(b.Apply(hPre, act.Tanh), "h~")

	keep := b.Sub(b.Constant(c.ones, true), z)
	out := b.Name(b.Add(b.Mul(keep, hCand), b.Mul(z, hPrev)), "Output")
	return out, []graph.Node{out}
}
