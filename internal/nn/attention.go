package nn

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// AttentionCell scores several equal-width inputs against the previous
// output (an additive attention context carried like recurrent state) and
// emits their softmax-weighted sum:
//
//	score_k = v @ tanh(Wa @ [input_k ; prev] + ba)
//	weights = softmax(score_1 .. score_n)
//	out = sum_k weights_k * input_k
//
// The output feeds back as the next call's context vector, but the cell is
// not considered recurrent.
type AttentionCell struct {
	width   int
	n       int
	weights *WeightSet

	wa, ba, v *tensor.RawTensor
}

// NewAttentionCell creates an attention cell over n inputs of the given
// width. All inputs must share that width; n must be at least 1.
func NewAttentionCell(n, width int, init Initializer, dtype tensor.DataType) (*AttentionCell, error) {
	if err := checkWidths(width, width); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("nn: attention needs at least one input, got %d", n)
	}
	ws := NewWeightSet(init, dtype)
	c := &AttentionCell{
		width:   width,
		n:       n,
		weights: ws,
		wa:      ws.Shaped("attentionWeight", tensor.Shape{width, 2 * width}, CategoryDirect),
		ba:      ws.Bias("attentionBias", width),
		v:       ws.Shaped("v", tensor.Shape{1, width}, CategoryDirect),
	}
	return c, nil
}

func (c *AttentionCell) Width() int            { return c.width }
func (c *AttentionCell) WeightSet() *WeightSet { return c.weights }
func (c *AttentionCell) Recurrent() bool       { return false }

func (c *AttentionCell) Inputs() int { return c.n }

// CheckInputs rejects input tuples whose width differs from the cell's,
// turning a mis-configured wiring into an error before replay.
func (c *AttentionCell) CheckInputs(step []*tensor.RawTensor) error {
	for k, in := range step {
		if in.Rows() != c.width || in.Columns() != 1 {
			return fmt.Errorf("nn: attention input %d has shape %v, want [%d 1]", k, in.Shape(), c.width)
		}
	}
	return nil
}

func (c *AttentionCell) StateShapes() []tensor.Shape {
	return []tensor.Shape{{c.width, 1}}
}

func (c *AttentionCell) Define(b *graph.Builder, inputs, states []graph.Node) (graph.Node, []graph.Node) {
	prev := states[0]

	scores := make([]graph.Node, c.n)
	for k, input := range inputs {
		joined := b.Join(0, input, prev)
		hidden := b.Apply(b.Add(b.Dot(b.Weight(c.wa), joined), b.Weight(c.ba)), act.Tanh)
		scores[k] = b.Name(b.Dot(b.Weight(c.v), hidden), fmt.Sprintf("score%d", k))
	}

	// Scores normalize jointly across all inputs.
	stacked := b.Join(0, scores...)
	weights := b.Name(b.Apply(stacked, act.Softmax), "attentionWeights")
	parts := b.Unjoin(weights, c.n, 0)

	var out graph.Node
	for k, input := range inputs {
		weighted := b.Mul(parts[k], input)
		if k == 0 {
			out = weighted
		} else {
			out = b.Add(out, weighted)
		}
	}
	out = b.Name(out, "Output")
	return out, []graph.Node{out}
}
