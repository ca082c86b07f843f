// Package graph implements the procedure engine: a computation graph recorded
// once from a cell definition and replayed per timestep, forward and backward.
//
// The graph is an instruction tape over an arena of nodes. Construction runs
// the cell definition a single time against placeholder leaves ("this step's
// input", "previous step's state"); every tensor-producing operation becomes a
// tape entry recording its opcode and operand indices. Replay then interprets
// the tape against concrete values for each timestep, and the backward pass
// walks the tape in reverse applying each opcode's local derivative rule.
package graph

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/act"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Node is a handle into the procedure's node arena.
type Node int

type opcode int

const (
	opLeaf opcode = iota
	opDot
	opAdd
	opSub
	opMul
	opApply
	opJoin
	opUnjoin
	opTranspose
)

type leafKind int

const (
	leafNone leafKind = iota
	leafWeight
	leafConstant
	leafInput
	leafState
)

type node struct {
	op   opcode
	args []Node

	// opApply
	fn act.Activation

	// opJoin / opUnjoin
	axis  int
	part  int
	parts int

	// opLeaf
	leaf         leafKind
	slot         int               // input or state slot
	value        *tensor.RawTensor // weight/constant leaves, bound permanently
	stopGradient bool

	name string
}

// Builder records the cell definition's operations during the single symbolic
// construction pass. Cells call its expression methods; each call appends one
// node to the arena and returns its handle.
type Builder struct {
	nodes []node
}

func (b *Builder) push(n node) Node {
	b.nodes = append(b.nodes, n)
	return Node(len(b.nodes) - 1)
}

// Weight registers a trainable weight tensor as a leaf. Gradients accumulate
// for it during the backward replay.
func (b *Builder) Weight(t *tensor.RawTensor) Node {
	return b.push(node{op: opLeaf, leaf: leafWeight, value: t, name: t.Name()})
}

// Constant registers a non-trainable tensor as a leaf. With stopGradient set
// any gradient arriving at it is discarded outright (e.g. the GRU "ones"
// vector); without it the gradient is still reported through
// WeightGradients, it simply has no optimizer stepping it.
func (b *Builder) Constant(t *tensor.RawTensor, stopGradient bool) Node {
	return b.push(node{op: opLeaf, leaf: leafConstant, value: t, stopGradient: stopGradient, name: t.Name()})
}

// Dot records a matrix product a @ b.
func (b *Builder) Dot(a, c Node) Node {
	return b.push(node{op: opDot, args: []Node{a, c}})
}

// Add records an element-wise addition.
func (b *Builder) Add(a, c Node) Node {
	return b.push(node{op: opAdd, args: []Node{a, c}})
}

// Sub records an element-wise subtraction.
func (b *Builder) Sub(a, c Node) Node {
	return b.push(node{op: opSub, args: []Node{a, c}})
}

// Mul records an element-wise (Hadamard) product.
func (b *Builder) Mul(a, c Node) Node {
	return b.push(node{op: opMul, args: []Node{a, c}})
}

// Apply records an element-wise activation application.
func (b *Builder) Apply(a Node, fn act.Activation) Node {
	return b.push(node{op: opApply, args: []Node{a}, fn: fn})
}

// Join records a concatenation of nodes along a dimension.
func (b *Builder) Join(axis int, parts ...Node) Node {
	if len(parts) == 0 {
		panic("graph: join requires at least one operand")
	}
	return b.push(node{op: opJoin, args: append([]Node(nil), parts...), axis: axis})
}

// Unjoin records a split of a node into parts equal chunks along a dimension,
// returning one handle per chunk.
func (b *Builder) Unjoin(a Node, parts, axis int) []Node {
	if parts < 1 {
		panic(fmt.Sprintf("graph: unjoin into %d parts", parts))
	}
	out := make([]Node, parts)
	for i := range out {
		out[i] = b.push(node{op: opUnjoin, args: []Node{a}, axis: axis, part: i, parts: parts})
	}
	return out
}

// Transpose records a 2D transpose.
func (b *Builder) Transpose(a Node) Node {
	return b.push(node{op: opTranspose, args: []Node{a}})
}

// Name attaches a debug name to a node; replayed values carry it.
func (b *Builder) Name(a Node, name string) Node {
	b.nodes[a].name = name
	return a
}

func (b *Builder) newInput(slot int) Node {
	return b.push(node{op: opLeaf, leaf: leafInput, slot: slot, name: fmt.Sprintf("Input%d", slot)})
}

func (b *Builder) newState(slot int) Node {
	return b.push(node{op: opLeaf, leaf: leafState, slot: slot, name: fmt.Sprintf("State%d", slot)})
}
