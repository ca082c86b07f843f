package nn

import (
	"math"
	"math/rand"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Initializer fills a freshly allocated weight tensor in place. Fan-in and
// fan-out are derived from the tensor's 2D shape by the weight set before the
// call.
type Initializer func(t *tensor.RawTensor, fanIn, fanOut int)

// XavierUniform draws from U(-b, b) with b = sqrt(6 / (fan_in + fan_out)).
//
// This keeps activation variance roughly constant across layers and is the
// default for all recurrent weight sets.
func XavierUniform(t *tensor.RawTensor, fanIn, fanOut int) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	fillUniform(t, -bound, bound)
}

// XavierNormal draws from N(0, sigma) with sigma = sqrt(2 / (fan_in + fan_out)).
func XavierNormal(t *tensor.RawTensor, fanIn, fanOut int) {
	sigma := math.Sqrt(2.0 / float64(fanIn+fanOut))
	fillNormal(t, sigma)
}

// HeUniform draws from U(-b, b) with b = sqrt(6 / fan_in). Suited to ReLU
// activations.
func HeUniform(t *tensor.RawTensor, fanIn, _ int) {
	bound := math.Sqrt(6.0 / float64(fanIn))
	fillUniform(t, -bound, bound)
}

// ConstantInit returns an initializer that fills with a fixed value.
// Used in tests to pin weights to known values.
func ConstantInit(value float64) Initializer {
	return func(t *tensor.RawTensor, _, _ int) {
		fill(t, func() float64 { return value })
	}
}

func fillUniform(t *tensor.RawTensor, lo, hi float64) {
	//nolint:gosec // math/rand is fine for weight initialization
	fill(t, func() float64 { return lo + rand.Float64()*(hi-lo) })
}

func fillNormal(t *tensor.RawTensor, sigma float64) {
	//nolint:gosec // math/rand is fine for weight initialization
	fill(t, func() float64 { return rand.NormFloat64() * sigma })
}

func fill(t *tensor.RawTensor, next func() float64) {
	switch t.DType() {
	case tensor.Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(next())
		}
	case tensor.Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = next()
		}
	}
}
