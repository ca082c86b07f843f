package cpu

import (
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalarOp(t,
		func(x float32) float32 { return x * float32(scalar) },
		func(x float64) float64 { return x * scalar })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(t *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.scalarOp(t,
		func(x float32) float32 { return x + float32(scalar) },
		func(x float64) float64 { return x + scalar })
}

func (cpu *CPUBackend) scalarOp(
	t *tensor.RawTensor,
	f32 func(float32) float32,
	f64 func(float64) float64,
) *tensor.RawTensor {
	result := tensor.MustRaw(t.Shape(), t.DType())
	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = f32(src[i])
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = f64(src[i])
		}
	}
	return result
}
