// Package dataset provides the data-preparation utilities that feed
// sequences into the recurrent layers: normalization, one-hot encoding,
// CSV ingestion, train/test splitting, and token-based text ingestion.
package dataset

import (
	"errors"
	"math"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Normalizer rescales tensor values with parameters fitted once on training
// data and reapplied to any later tensor, including an inverse transform for
// reading predictions back in original units.
type Normalizer interface {
	// Fit learns the scaling parameters from the given tensors.
	Fit(tensors []*tensor.RawTensor) error

	// Transform returns a rescaled copy.
	Transform(t *tensor.RawTensor) *tensor.RawTensor

	// Inverse undoes Transform on a rescaled copy.
	Inverse(t *tensor.RawTensor) *tensor.RawTensor
}

// MinMaxNormalizer maps values linearly into [0, 1] using the global minimum
// and maximum seen during Fit.
type MinMaxNormalizer struct {
	min, max float64
	fitted   bool
}

// NewMinMaxNormalizer creates an unfitted min-max normalizer.
func NewMinMaxNormalizer() *MinMaxNormalizer {
	return &MinMaxNormalizer{}
}

// Fit records the global minimum and maximum across all values.
func (n *MinMaxNormalizer) Fit(tensors []*tensor.RawTensor) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	for _, t := range tensors {
		for i := 0; i < t.NumElements(); i++ {
			v := flatAt(t, i)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			count++
		}
	}
	if count == 0 {
		return errors.New("dataset: cannot fit normalizer on empty data")
	}
	n.min, n.max = lo, hi
	n.fitted = true
	return nil
}

// Transform maps values into [0, 1]. Constant data maps to zero.
func (n *MinMaxNormalizer) Transform(t *tensor.RawTensor) *tensor.RawTensor {
	span := n.max - n.min
	return mapValues(t, func(v float64) float64 {
		if span == 0 {
			return 0
		}
		return (v - n.min) / span
	})
}

// Inverse maps values from [0, 1] back to the original range.
func (n *MinMaxNormalizer) Inverse(t *tensor.RawTensor) *tensor.RawTensor {
	span := n.max - n.min
	return mapValues(t, func(v float64) float64 {
		return v*span + n.min
	})
}

// ZScoreNormalizer centers values at zero mean with unit variance.
type ZScoreNormalizer struct {
	mean, std float64
	fitted    bool
}

// NewZScoreNormalizer creates an unfitted z-score normalizer.
func NewZScoreNormalizer() *ZScoreNormalizer {
	return &ZScoreNormalizer{}
}

// Fit computes the global mean and standard deviation.
func (n *ZScoreNormalizer) Fit(tensors []*tensor.RawTensor) error {
	sum, count := 0.0, 0
	for _, t := range tensors {
		for i := 0; i < t.NumElements(); i++ {
			sum += flatAt(t, i)
			count++
		}
	}
	if count == 0 {
		return errors.New("dataset: cannot fit normalizer on empty data")
	}
	mean := sum / float64(count)

	variance := 0.0
	for _, t := range tensors {
		for i := 0; i < t.NumElements(); i++ {
			d := flatAt(t, i) - mean
			variance += d * d
		}
	}
	n.mean = mean
	n.std = math.Sqrt(variance / float64(count))
	n.fitted = true
	return nil
}

// Transform returns (v - mean) / std. Constant data maps to zero.
func (n *ZScoreNormalizer) Transform(t *tensor.RawTensor) *tensor.RawTensor {
	return mapValues(t, func(v float64) float64 {
		if n.std == 0 {
			return 0
		}
		return (v - n.mean) / n.std
	})
}

// Inverse returns v * std + mean.
func (n *ZScoreNormalizer) Inverse(t *tensor.RawTensor) *tensor.RawTensor {
	return mapValues(t, func(v float64) float64 {
		return v*n.std + n.mean
	})
}

func mapValues(t *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	out := t.Clone()
	switch out.DType() {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = float32(f(float64(data[i])))
		}
	case tensor.Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = f(data[i])
		}
	}
	return out
}

func flatAt(t *tensor.RawTensor, i int) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.AsFloat32()[i])
	default:
		return t.AsFloat64()[i]
	}
}
