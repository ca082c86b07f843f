package nn

import (
	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// SimpleCell is the plain recurrent cell:
//
//	out = act(W @ x + B + Wl @ out(t-1))
type SimpleCell struct {
	width   int
	weights *WeightSet
	fn      act.Activation

	w, wl, b *tensor.RawTensor
}

// NewSimpleCell creates a simple recurrent cell. A nil activation defaults
// to tanh.
func NewSimpleCell(inputWidth, width int, fn act.Activation, init Initializer, dtype tensor.DataType) (*SimpleCell, error) {
	if err := checkWidths(inputWidth, width); err != nil {
		return nil, err
	}
	if fn == nil {
		fn = act.Tanh
	}
	ws := NewWeightSet(init, dtype)
	c := &SimpleCell{
		width:   width,
		weights: ws,
		fn:      fn,
		w:       ws.Direct("W", width, inputWidth),
		wl:      ws.Recurrent("Wl", width),
		b:       ws.Bias("B", width),
	}
	return c, nil
}

func (c *SimpleCell) Width() int            { return c.width }
func (c *SimpleCell) WeightSet() *WeightSet { return c.weights }
func (c *SimpleCell) Recurrent() bool       { return true }

func (c *SimpleCell) Inputs() int { return 1 }

func (c *SimpleCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}}
}

func (c *SimpleCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	x, hPrev := inputs[0], states[0]
	pre := b.Add(b.Add(b.Dot(b.Weight(c.w), x), b.Weight(c.b)), b.Dot(b.Weight(c.wl), hPrev))
	out := b.Name(b.Apply(pre, c.fn), "Output")
	return out, []graph.Node{out}
}
