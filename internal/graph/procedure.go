package graph

import (
	"errors"
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Definition is the single-timestep forward formula a layer type supplies:
// the cell definition. Define is invoked exactly once, at construction, with
// placeholder leaves; the operations it performs through the Builder become
// the procedure's tape.
type Definition interface {
	// Inputs returns the number of per-timestep input tensors.
	Inputs() int

	// StateShapes returns the shape of each recurrent state tensor
	// (previous output, previous cell state, ...). Empty for stateless cells.
	StateShapes() []tensor.Shape

	// Define builds the forward step from the placeholder leaves and returns
	// the output node plus the node producing each next-state tensor, in slot
	// order.
	Define(b *Builder, inputs, states []Node) (output Node, next []Node)
}

// Phase distinguishes the two state-snapshot slots kept across
// training/testing mode switches.
type Phase int

// Snapshot slots.
const (
	Training Phase = iota
	Testing
)

// Procedure is a compiled computation graph bound to one weight set. It is
// built once and replayed for every timestep of every sequence; only leaf
// values change between replays. Replay is sequential: a Procedure must not
// be driven by two goroutines at once.
type Procedure struct {
	backend tensor.Backend
	nodes   []node
	dtype   tensor.DataType

	output       Node
	inputLeaves  []Node
	stateLeaves  []Node
	stateSources []Node // node whose value becomes next step's state, per slot
	stateShapes  []tensor.Shape

	reversed bool

	// Per-timestep node values of the last forward pass, retained for BPTT.
	frames map[int][]*tensor.RawTensor
	order  []int // processing order of the last forward pass

	// Recurrent state carried between sequences; nil means zero state.
	prevState []*tensor.RawTensor

	trainingSnapshot []*tensor.RawTensor
	testingSnapshot  []*tensor.RawTensor

	weightGrads map[*tensor.RawTensor]*tensor.RawTensor
}

// Build compiles a procedure by symbolically executing the cell definition.
// The definition runs exactly once; an inconsistent definition (no output,
// wrong state arity, dangling operands) fails here, never at replay time.
func Build(backend tensor.Backend, def Definition) (*Procedure, error) {
	b := &Builder{}

	inputs := make([]Node, def.Inputs())
	for i := range inputs {
		inputs[i] = b.newInput(i)
	}
	stateShapes := def.StateShapes()
	states := make([]Node, len(stateShapes))
	for i := range states {
		states[i] = b.newState(i)
	}

	output, next := def.Define(b, inputs, states)

	if output < 0 || int(output) >= len(b.nodes) {
		return nil, errors.New("graph: definition produced no valid output node")
	}
	if len(next) != len(states) {
		return nil, fmt.Errorf("graph: definition returned %d state nodes, want %d", len(next), len(states))
	}
	for i, n := range next {
		if n < 0 || int(n) >= len(b.nodes) {
			return nil, fmt.Errorf("graph: invalid next-state node for slot %d", i)
		}
	}
	for i, n := range b.nodes {
		for _, a := range n.args {
			if a < 0 || int(a) >= i {
				return nil, fmt.Errorf("graph: node %d references operand %d out of order", i, a)
			}
		}
	}

	p := &Procedure{
		backend:      backend,
		nodes:        b.nodes,
		dtype:        tensor.Float32,
		output:       output,
		stateSources: next,
		stateShapes:  stateShapes,
	}
	for i, n := range b.nodes {
		switch {
		case n.leaf == leafInput:
			p.inputLeaves = append(p.inputLeaves, Node(i))
		case n.leaf == leafState:
			p.stateLeaves = append(p.stateLeaves, Node(i))
		case n.leaf == leafWeight:
			p.dtype = n.value.DType()
		}
	}
	return p, nil
}

// SetReversed makes forward replay walk timestep indices in descending order.
// Outputs are still written at their original indices. Used for the reverse
// direction of bidirectional layers and for reversedInput.
func (p *Procedure) SetReversed(reversed bool) {
	p.reversed = reversed
}

// Reversed reports whether replay walks indices in descending order.
func (p *Procedure) Reversed() bool {
	return p.reversed
}

// Calculate replays the graph forward over an input sequence, writing one
// output tensor per timestep into out. State produced at step t feeds step
// t+1 in processing order; the final state is carried into the next call
// until Reset(true).
func (p *Procedure) Calculate(in, out *Sequence) error {
	if in.Depth() != len(p.inputLeaves) {
		return fmt.Errorf("graph: input sequence depth %d, procedure expects %d", in.Depth(), len(p.inputLeaves))
	}

	length := in.Len()
	p.frames = make(map[int][]*tensor.RawTensor, length)
	p.order = p.order[:0]

	state := p.prevState
	if state == nil {
		state = p.zeroState()
	}

	for step := 0; step < length; step++ {
		t := step
		if p.reversed {
			t = length - 1 - step
		}
		p.order = append(p.order, t)

		frame := make([]*tensor.RawTensor, len(p.nodes))
		inputs := in.Get(t)
		for i := range p.nodes {
			p.eval(i, frame, inputs, state)
		}
		p.frames[t] = frame

		next := make([]*tensor.RawTensor, len(p.stateSources))
		for s, src := range p.stateSources {
			next[s] = frame[src]
		}
		state = next

		if err := out.PutAt(t, frame[p.output]); err != nil {
			return err
		}
	}

	p.prevState = state
	return nil
}

// eval computes node i into frame, substituting this timestep's inputs and
// the previous timestep's state for the placeholder leaves.
func (p *Procedure) eval(i int, frame []*tensor.RawTensor, inputs, state []*tensor.RawTensor) {
	n := &p.nodes[i]
	var v *tensor.RawTensor

	switch n.op {
	case opLeaf:
		switch n.leaf {
		case leafWeight, leafConstant:
			v = n.value
		case leafInput:
			v = inputs[n.slot]
		case leafState:
			v = state[n.slot]
		}
		frame[i] = v
		return
	case opDot:
		v = p.backend.MatMul(frame[n.args[0]], frame[n.args[1]])
	case opAdd:
		v = p.backend.Add(frame[n.args[0]], frame[n.args[1]])
	case opSub:
		v = p.backend.Sub(frame[n.args[0]], frame[n.args[1]])
	case opMul:
		v = p.backend.Mul(frame[n.args[0]], frame[n.args[1]])
	case opApply:
		v = n.fn.Apply(frame[n.args[0]])
	case opJoin:
		operands := make([]*tensor.RawTensor, len(n.args))
		for j, a := range n.args {
			operands[j] = frame[a]
		}
		v = p.backend.Cat(operands, n.axis)
	case opUnjoin:
		v = p.backend.Chunk(frame[n.args[0]], n.parts, n.axis)[n.part]
	case opTranspose:
		v = p.backend.Transpose(frame[n.args[0]])
	}

	if n.name != "" {
		v.SetName(n.name)
	}
	frame[i] = v
}

// zeroState returns fresh zero tensors for every state slot.
func (p *Procedure) zeroState() []*tensor.RawTensor {
	state := make([]*tensor.RawTensor, len(p.stateShapes))
	for i, shape := range p.stateShapes {
		state[i] = tensor.Zeros(shape, p.dtype)
	}
	return state
}

// Reset prepares the procedure for a new sequence. Retained frames are always
// dropped; when clearState is set the carried recurrent state is discarded as
// well, so the next sequence starts from zero state.
func (p *Procedure) Reset(clearState bool) {
	p.frames = nil
	p.order = nil
	p.weightGrads = nil
	if clearState {
		p.prevState = nil
	}
}

// StoreState snapshots the carried recurrent state under the given phase slot.
func (p *Procedure) StoreState(phase Phase) {
	snapshot := cloneState(p.prevState)
	if phase == Training {
		p.trainingSnapshot = snapshot
	} else {
		p.testingSnapshot = snapshot
	}
}

// RestoreState reloads the carried recurrent state from the given phase slot.
// An empty slot restores zero state.
func (p *Procedure) RestoreState(phase Phase) {
	if phase == Training {
		p.prevState = cloneState(p.trainingSnapshot)
	} else {
		p.prevState = cloneState(p.testingSnapshot)
	}
}

func cloneState(state []*tensor.RawTensor) []*tensor.RawTensor {
	if state == nil {
		return nil
	}
	clone := make([]*tensor.RawTensor, len(state))
	for i, t := range state {
		clone[i] = t.Clone()
	}
	return clone
}

// WeightGradients returns the per-weight gradients accumulated by the last
// backward replay, keyed by weight tensor.
func (p *Procedure) WeightGradients() map[*tensor.RawTensor]*tensor.RawTensor {
	return p.weightGrads
}

// NumNodes returns the number of tape entries.
func (p *Procedure) NumNodes() int {
	return len(p.nodes)
}
