package dataset

import (
	"fmt"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// OneHotEncoder maps class indices to one-hot column vectors sized to a
// fixed vocabulary.
type OneHotEncoder struct {
	size  int
	dtype tensor.DataType
}

// NewOneHotEncoder creates an encoder for a vocabulary of the given size.
func NewOneHotEncoder(size int, dtype tensor.DataType) (*OneHotEncoder, error) {
	if size < 1 {
		return nil, fmt.Errorf("dataset: one-hot size must be positive, got %d", size)
	}
	return &OneHotEncoder{size: size, dtype: dtype}, nil
}

// Size returns the vocabulary size, which is also the encoded column height.
func (e *OneHotEncoder) Size() int {
	return e.size
}

// Encode produces a (size, 1) column with a single 1 at the class index.
func (e *OneHotEncoder) Encode(class int) (*tensor.RawTensor, error) {
	if class < 0 || class >= e.size {
		return nil, fmt.Errorf("dataset: class %d out of range [0,%d)", class, e.size)
	}
	t := tensor.Zeros(tensor.Shape{e.size, 1}, e.dtype)
	t.Set(1, class, 0)
	return t, nil
}

// EncodeAll encodes a slice of class indices.
func (e *OneHotEncoder) EncodeAll(classes []int) ([]*tensor.RawTensor, error) {
	out := make([]*tensor.RawTensor, len(classes))
	for i, c := range classes {
		t, err := e.Encode(c)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Decode returns the index of the largest value, the argmax inverse of
// Encode. Works on any column, including softmax outputs.
func (e *OneHotEncoder) Decode(t *tensor.RawTensor) (int, error) {
	if t.Rows() != e.size || t.Columns() != 1 {
		return 0, fmt.Errorf("dataset: expected (%d, 1) column, got %v", e.size, t.Shape())
	}
	best, bestVal := 0, t.At(0, 0)
	for i := 1; i < e.size; i++ {
		if v := t.At(i, 0); v > bestVal {
			best, bestVal = i, v
		}
	}
	return best, nil
}
