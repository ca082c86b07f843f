package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
	// Nothing in the engine produces higher ranks.
	assert.Error(t, Shape{2, 3, 4}.Validate())
}

func TestShapeRank(t *testing.T) {
	assert.Equal(t, 2, Shape{2, 3}.Rank())
	assert.Equal(t, 0, Shape{}.Rank())
}

func TestBroadcastShapes(t *testing.T) {
	out, needed, err := BroadcastShapes(Shape{2, 1}, Shape{2, 3})
	require.NoError(t, err)
	assert.True(t, needed)
	assert.Equal(t, Shape{2, 3}, out)

	out, needed, err = BroadcastShapes(Shape{2, 3}, Shape{2, 3})
	require.NoError(t, err)
	assert.False(t, needed)
	assert.Equal(t, Shape{2, 3}, out)

	out, _, err = BroadcastShapes(Shape{1, 1}, Shape{4, 1})
	require.NoError(t, err)
	assert.Equal(t, Shape{4, 1}, out)

	_, _, err = BroadcastShapes(Shape{2, 3}, Shape{4, 5})
	assert.Error(t, err)

	_, _, err = BroadcastShapes(Shape{2, 3, 4}, Shape{2, 3, 4})
	assert.Error(t, err)
}

func TestNewRawValidation(t *testing.T) {
	_, err := NewRaw(Shape{0, 2}, Float32)
	assert.Error(t, err)

	r, err := NewRaw(Shape{2, 2}, Float64)
	require.NoError(t, err)
	assert.Equal(t, Float64, r.DType())
	assert.Equal(t, 4, r.NumElements())
}

func TestAtAndSet(t *testing.T) {
	r := MustRaw(Shape{2, 3}, Float32)
	r.Set(1.5, 1, 2)
	assert.Equal(t, 1.5, r.At(1, 2))
	assert.Equal(t, 0.0, r.At(0, 0))
}

func TestFromSlice(t *testing.T) {
	r, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, r.At(0, 1))
	assert.Equal(t, 3.0, r.At(1, 0))

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	r := MustFromSlice([]float32{1, 2}, Shape{2, 1})
	c := r.Clone()
	c.Set(9, 0, 0)
	assert.Equal(t, 1.0, r.At(0, 0))
	assert.Equal(t, 9.0, c.At(0, 0))
}

func TestCopyFromAndReset(t *testing.T) {
	src := MustFromSlice([]float32{1, 2}, Shape{2, 1})
	dst := Zeros(Shape{2, 1}, Float32)
	dst.CopyFrom(src)
	assert.Equal(t, 2.0, dst.At(1, 0))

	dst.Reset()
	assert.Equal(t, 0.0, dst.At(1, 0))
	// Reset is in place: the source is untouched.
	assert.Equal(t, 2.0, src.At(1, 0))
}

func TestCreationHelpers(t *testing.T) {
	ones := Ones(Shape{2, 2}, Float32)
	assert.Equal(t, 1.0, ones.At(1, 1))

	full := Full(Shape{2, 1}, Float64, 3.5)
	assert.Equal(t, 3.5, full.At(0, 0))

	rn := Randn(Shape{4, 4}, Float32)
	assert.Equal(t, 16, rn.NumElements())
}

func TestRowsColumnsAndName(t *testing.T) {
	r := MustRaw(Shape{3, 2}, Float32)
	assert.Equal(t, 3, r.Rows())
	assert.Equal(t, 2, r.Columns())

	r.SetName("Wi")
	assert.Equal(t, "Wi", r.Name())
}

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
}
