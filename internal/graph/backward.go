package graph

import (
	"errors"
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// CalculateGradient replays the tape backwards through time. outGrad holds
// the gradient of the loss with respect to each output timestep; inGrad
// receives the gradient with respect to each input timestep. Weight gradients
// accumulate across timesteps and are exposed through WeightGradients.
//
// truncateSteps bounds how many timesteps of the processing order are
// visited, counted from the end: gradient flow through earlier steps is cut.
// A value of -1 visits every step.
func (p *Procedure) CalculateGradient(outGrad, inGrad *Sequence, truncateSteps int) error {
	if p.frames == nil {
		return errors.New("graph: no forward pass to differentiate")
	}
	if outGrad.Depth() != 1 {
		return fmt.Errorf("graph: output gradient sequence depth %d, want 1", outGrad.Depth())
	}
	if outGrad.Len() != len(p.order) {
		return fmt.Errorf("graph: output gradient length %d, forward pass had %d steps", outGrad.Len(), len(p.order))
	}
	if inGrad.Depth() != len(p.inputLeaves) {
		return fmt.Errorf("graph: input gradient sequence depth %d, procedure expects %d", inGrad.Depth(), len(p.inputLeaves))
	}

	p.weightGrads = make(map[*tensor.RawTensor]*tensor.RawTensor)

	visited := p.order
	if truncateSteps >= 0 && truncateSteps < len(visited) {
		cut := visited[:len(visited)-truncateSteps]
		visited = visited[len(visited)-truncateSteps:]
		// Truncated steps still need gradient entries to keep the
		// sequence contiguous.
		for _, t := range cut {
			if err := p.zeroInputGrad(t, inGrad); err != nil {
				return err
			}
		}
	}

	// Gradient flowing into each state slot from the step processed after
	// this one.
	carry := make([]*tensor.RawTensor, len(p.stateSources))

	for step := len(visited) - 1; step >= 0; step-- {
		t := visited[step]
		frame := p.frames[t]
		grads := make([]*tensor.RawTensor, len(p.nodes))

		p.accumulate(grads, p.output, outGrad.Single(t))
		for s, src := range p.stateSources {
			if carry[s] != nil {
				p.accumulate(grads, src, carry[s])
			}
		}

		inputGrads := make([]*tensor.RawTensor, len(p.inputLeaves))

		for i := len(p.nodes) - 1; i >= 0; i-- {
			g := grads[i]
			if g == nil {
				continue
			}
			n := &p.nodes[i]

			switch n.op {
			case opLeaf:
				switch n.leaf {
				case leafWeight:
					p.accumulateValueGrad(n.value, g)
				case leafConstant:
					// stopGradient severs the flow entirely;
					// otherwise the gradient stays observable
					// through WeightGradients.
					if !n.stopGradient {
						p.accumulateValueGrad(n.value, g)
					}
				case leafInput:
					inputGrads[n.slot] = g
				}
				// State leaves terminate here; their gradients
				// are picked up below by slot.
			case opDot:
				a, c := frame[n.args[0]], frame[n.args[1]]
				p.accumulate(grads, n.args[0], p.backend.MatMul(g, p.backend.Transpose(c)))
				p.accumulate(grads, n.args[1], p.backend.MatMul(p.backend.Transpose(a), g))
			case opAdd:
				p.accumulate(grads, n.args[0], reduceBroadcast(g, frame[n.args[0]].Shape()))
				p.accumulate(grads, n.args[1], reduceBroadcast(g, frame[n.args[1]].Shape()))
			case opSub:
				p.accumulate(grads, n.args[0], reduceBroadcast(g, frame[n.args[0]].Shape()))
				p.accumulate(grads, n.args[1], reduceBroadcast(p.backend.MulScalar(g, -1), frame[n.args[1]].Shape()))
			case opMul:
				a, c := frame[n.args[0]], frame[n.args[1]]
				p.accumulate(grads, n.args[0], reduceBroadcast(p.backend.Mul(g, c), a.Shape()))
				p.accumulate(grads, n.args[1], reduceBroadcast(p.backend.Mul(g, a), c.Shape()))
			case opApply:
				p.accumulate(grads, n.args[0], n.fn.Backward(g, frame[n.args[0]], frame[i]))
			case opJoin:
				offset := 0
				for _, a := range n.args {
					size := frame[a].Shape()[n.axis]
					p.accumulate(grads, a, slice2D(g, n.axis, offset, size))
					offset += size
				}
			case opUnjoin:
				full := frame[n.args[0]]
				size := full.Shape()[n.axis] / n.parts
				gFull := tensor.Zeros(full.Shape(), g.DType())
				place2D(gFull, g, n.axis, n.part*size)
				p.accumulate(grads, n.args[0], gFull)
			case opTranspose:
				p.accumulate(grads, n.args[0], p.backend.Transpose(g))
			}
		}

		for s, leaf := range p.stateLeaves {
			carry[s] = grads[leaf]
		}

		for slot, g := range inputGrads {
			if g == nil {
				inputGrads[slot] = tensor.Zeros(frame[p.inputLeaves[slot]].Shape(), p.dtype)
			}
		}
		if err := inGrad.PutAt(t, inputGrads...); err != nil {
			return err
		}
	}

	return nil
}

func (p *Procedure) accumulate(grads []*tensor.RawTensor, n Node, g *tensor.RawTensor) {
	if grads[n] == nil {
		grads[n] = g
	} else {
		grads[n] = p.backend.Add(grads[n], g)
	}
}

// accumulateValueGrad adds a gradient for a bound leaf tensor across
// timesteps, keyed by tensor identity.
func (p *Procedure) accumulateValueGrad(value, g *tensor.RawTensor) {
	if prev, ok := p.weightGrads[value]; ok {
		p.weightGrads[value] = p.backend.Add(prev, g)
	} else {
		p.weightGrads[value] = g.Clone()
	}
}

// zeroInputGrad writes zero gradients for a timestep cut off by truncation.
func (p *Procedure) zeroInputGrad(t int, inGrad *Sequence) error {
	frame := p.frames[t]
	zeros := make([]*tensor.RawTensor, len(p.inputLeaves))
	for slot, leaf := range p.inputLeaves {
		zeros[slot] = tensor.Zeros(frame[leaf].Shape(), p.dtype)
	}
	return inGrad.PutAt(t, zeros...)
}

// reduceBroadcast sums a gradient down to the shape of the operand it belongs
// to, undoing forward broadcasting. If the shapes already match the gradient
// is returned as is.
func reduceBroadcast(g *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if g.Shape().Equal(shape) {
		return g
	}
	out := tensor.Zeros(shape, g.DType())
	gShape := g.Shape()
	offset := len(gShape) - len(shape)

	indices := make([]int, len(gShape))
	target := make([]int, len(shape))
	for flat := 0; flat < g.NumElements(); flat++ {
		rem := flat
		for d := len(gShape) - 1; d >= 0; d-- {
			indices[d] = rem % gShape[d]
			rem /= gShape[d]
		}
		for d := range target {
			if shape[d] == 1 {
				target[d] = 0
			} else {
				target[d] = indices[offset+d]
			}
		}
		out.Set(out.At(target...)+g.At(indices...), target...)
	}
	return out
}

// slice2D copies size rows or columns out of a rank-2 tensor starting at
// offset along dim.
func slice2D(t *tensor.RawTensor, dim, offset, size int) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("graph: slice2D on rank-%d tensor", len(shape)))
	}
	outShape := shape.Clone()
	outShape[dim] = size
	out := tensor.Zeros(outShape, t.DType())
	for r := 0; r < outShape[0]; r++ {
		for c := 0; c < outShape[1]; c++ {
			sr, sc := r, c
			if dim == 0 {
				sr += offset
			} else {
				sc += offset
			}
			out.Set(t.At(sr, sc), r, c)
		}
	}
	return out
}

// place2D writes src into dst starting at offset along dim. Inverse of
// slice2D.
func place2D(dst, src *tensor.RawTensor, dim, offset int) {
	shape := src.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("graph: place2D on rank-%d tensor", len(shape)))
	}
	for r := 0; r < shape[0]; r++ {
		for c := 0; c < shape[1]; c++ {
			dr, dc := r, c
			if dim == 0 {
				dr += offset
			} else {
				dc += offset
			}
			dst.Set(src.At(r, c), dr, dc)
		}
	}
}
