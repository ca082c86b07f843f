package tensor

// Backend defines the interface the procedure engine requires from a compute
// implementation. The engine records which Backend operation produced each
// graph node and replays those operations per timestep; it never mutates
// tensors through the Backend, so every method must return a fresh tensor.
//
// Shape or dtype violations are programming errors and panic; they abort the
// current forward or backward call and are never retried.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Transpose swaps the two dimensions of a 2D tensor.
	Transpose(t *RawTensor) *RawTensor

	// Cat concatenates tensors along a dimension.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Chunk splits a tensor into n equal parts along a dimension.
	Chunk(t *RawTensor, n, dim int) []*RawTensor

	// Scalar operations.
	MulScalar(t *RawTensor, scalar float64) *RawTensor
	AddScalar(t *RawTensor, scalar float64) *RawTensor

	// Name returns the backend name.
	Name() string
}
