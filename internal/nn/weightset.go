package nn

import (
	"fmt"
	"sort"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// WeightSet is the owned bundle of named weight and bias tensors for one
// layer instance, or one direction of a bidirectional layer. Shapes are fixed
// at registration time and never change; Reinitialize re-randomizes contents
// in place so tensor identities stay valid in gradient maps and optimizers.
type WeightSet struct {
	init   Initializer
	dtype  tensor.DataType
	params []*Parameter
	byName map[string]*Parameter

	// Non-trainable constants (the GRU "ones" vector). Excluded from the
	// parameter count and from gradient accumulation.
	constants map[string]*tensor.RawTensor
}

// NewWeightSet creates an empty weight set using the given initializer for
// weights. A nil initializer defaults to XavierUniform.
func NewWeightSet(init Initializer, dtype tensor.DataType) *WeightSet {
	if init == nil {
		init = XavierUniform
	}
	return &WeightSet{
		init:      init,
		dtype:     dtype,
		byName:    make(map[string]*Parameter),
		constants: make(map[string]*tensor.RawTensor),
	}
}

// Direct registers a direct weight of shape (width, prevWidth), multiplying
// the current timestep's input.
func (ws *WeightSet) Direct(name string, width, prevWidth int) *tensor.RawTensor {
	return ws.register(name, tensor.Shape{width, prevWidth}, CategoryDirect)
}

// Recurrent registers a recurrent weight of shape (width, width), multiplying
// the previous timestep's output.
func (ws *WeightSet) Recurrent(name string, width int) *tensor.RawTensor {
	return ws.register(name, tensor.Shape{width, width}, CategoryRecurrent)
}

// State registers a peephole weight of shape (width, width), reading the
// previous cell state.
func (ws *WeightSet) State(name string, width int) *tensor.RawTensor {
	return ws.register(name, tensor.Shape{width, width}, CategoryState)
}

// Bias registers a zero-initialized bias column of shape (width, 1).
func (ws *WeightSet) Bias(name string, width int) *tensor.RawTensor {
	return ws.register(name, tensor.Shape{width, 1}, CategoryBias)
}

// Shaped registers a weight with an explicit shape under the given category.
// Used by cells whose tensors do not fit the standard width conventions, such
// as the attention score projection.
func (ws *WeightSet) Shaped(name string, shape tensor.Shape, category Category) *tensor.RawTensor {
	return ws.register(name, shape, category)
}

func (ws *WeightSet) register(name string, shape tensor.Shape, category Category) *tensor.RawTensor {
	if _, ok := ws.byName[name]; ok {
		panic(fmt.Sprintf("nn: duplicate weight name %q", name))
	}
	t := tensor.Zeros(shape, ws.dtype)
	p := NewParameter(name, t, category)
	ws.initialize(p)
	ws.params = append(ws.params, p)
	ws.byName[name] = p
	return t
}

// Ones registers a non-trainable all-ones constant column of shape (width, 1).
func (ws *WeightSet) Ones(name string, width int) *tensor.RawTensor {
	if _, ok := ws.constants[name]; ok {
		panic(fmt.Sprintf("nn: duplicate constant name %q", name))
	}
	t := tensor.Ones(tensor.Shape{width, 1}, ws.dtype).SetName(name)
	ws.constants[name] = t
	return t
}

func (ws *WeightSet) initialize(p *Parameter) {
	if p.category == CategoryBias {
		p.tensor.Reset()
		return
	}
	shape := p.tensor.Shape()
	fanOut, fanIn := shape[0], shape[1]
	ws.init(p.tensor, fanIn, fanOut)
}

// Reinitialize re-randomizes all weights and zeroes all biases in place.
// Shapes and tensor identities are preserved; constants are untouched.
func (ws *WeightSet) Reinitialize() {
	for _, p := range ws.params {
		ws.initialize(p)
	}
}

// Parameters returns all trainable parameters in registration order.
func (ws *WeightSet) Parameters() []*Parameter {
	return ws.params
}

// Get returns the named parameter, or nil.
func (ws *WeightSet) Get(name string) *Parameter {
	return ws.byName[name]
}

// Weights returns the trainable tensors in registration order.
func (ws *WeightSet) Weights() []*tensor.RawTensor {
	out := make([]*tensor.RawTensor, len(ws.params))
	for i, p := range ws.params {
		out[i] = p.tensor
	}
	return out
}

// RegularizedWeights returns the tensors eligible for weight decay under the
// given flags. Biases are never included.
func (ws *WeightSet) RegularizedWeights(direct, recurrent, state bool) []*tensor.RawTensor {
	var out []*tensor.RawTensor
	for _, p := range ws.params {
		switch p.category {
		case CategoryDirect:
			if direct {
				out = append(out, p.tensor)
			}
		case CategoryRecurrent:
			if recurrent {
				out = append(out, p.tensor)
			}
		case CategoryState:
			if state {
				out = append(out, p.tensor)
			}
		}
	}
	return out
}

// NumberOfParameters returns the total scalar count across all trainable
// tensors.
func (ws *WeightSet) NumberOfParameters() int {
	total := 0
	for _, p := range ws.params {
		total += p.NumElements()
	}
	return total
}

// StateDict returns a name-keyed snapshot of all trainable tensors, cloned so
// later training does not mutate the snapshot.
func (ws *WeightSet) StateDict() map[string]*tensor.RawTensor {
	dict := make(map[string]*tensor.RawTensor, len(ws.params))
	for _, p := range ws.params {
		dict[p.name] = p.tensor.Clone()
	}
	return dict
}

// LoadStateDict copies values from a snapshot into the matching parameters.
// Every parameter must be present with a matching shape and dtype.
func (ws *WeightSet) LoadStateDict(dict map[string]*tensor.RawTensor) error {
	for _, p := range ws.params {
		src, ok := dict[p.name]
		if !ok {
			return fmt.Errorf("nn: state dict missing %q", p.name)
		}
		if !src.Shape().Equal(p.tensor.Shape()) {
			return fmt.Errorf("nn: state dict shape mismatch for %q: %v vs %v", p.name, src.Shape(), p.tensor.Shape())
		}
		if src.DType() != p.tensor.DType() {
			return fmt.Errorf("nn: state dict dtype mismatch for %q", p.name)
		}
		p.tensor.CopyFrom(src)
	}
	return nil
}

// Names returns all trainable parameter names, sorted.
func (ws *WeightSet) Names() []string {
	names := make([]string, 0, len(ws.params))
	for _, p := range ws.params {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}
