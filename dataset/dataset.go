// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides the public API for the data-preparation
// utilities: normalization, one-hot encoding, CSV ingestion, train/test
// splitting, and token-based text ingestion.
package dataset

import (
	"io"

	"github.com/seqnet-ml/seqnet/internal/dataset"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Normalizer rescales tensor values with parameters fitted on training data.
type Normalizer = dataset.Normalizer

// MinMaxNormalizer maps values linearly into [0, 1].
type MinMaxNormalizer = dataset.MinMaxNormalizer

// NewMinMaxNormalizer creates an unfitted min-max normalizer.
func NewMinMaxNormalizer() *MinMaxNormalizer {
	return dataset.NewMinMaxNormalizer()
}

// ZScoreNormalizer centers values at zero mean with unit variance.
type ZScoreNormalizer = dataset.ZScoreNormalizer

// NewZScoreNormalizer creates an unfitted z-score normalizer.
func NewZScoreNormalizer() *ZScoreNormalizer {
	return dataset.NewZScoreNormalizer()
}

// OneHotEncoder maps class indices to one-hot column vectors.
type OneHotEncoder = dataset.OneHotEncoder

// NewOneHotEncoder creates an encoder for a vocabulary of the given size.
func NewOneHotEncoder(size int, dtype tensor.DataType) (*OneHotEncoder, error) {
	return dataset.NewOneHotEncoder(size, dtype)
}

// CSVOptions controls numeric CSV ingestion.
type CSVOptions = dataset.CSVOptions

// ReadCSV parses numeric records into one column tensor per row.
func ReadCSV(r io.Reader, opts CSVOptions) ([]*tensor.RawTensor, error) {
	return dataset.ReadCSV(r, opts)
}

// ReadCSVFile opens a file and parses it with ReadCSV.
func ReadCSVFile(path string, opts CSVOptions) ([]*tensor.RawTensor, error) {
	return dataset.ReadCSVFile(path, opts)
}

// Split holds training and testing portions of paired data.
type Split = dataset.Split

// TrainTestSplit splits paired inputs and targets by test fraction.
func TrainTestSplit(inputs, targets []*tensor.RawTensor, testFraction float64, shuffle bool, seed int64) (*Split, error) {
	return dataset.TrainTestSplit(inputs, targets, testFraction, shuffle, seed)
}

// Windows cuts a series into overlapping input/target windows for next-step
// prediction.
func Windows(series []*tensor.RawTensor, length int) ([][]*tensor.RawTensor, []*tensor.RawTensor, error) {
	return dataset.Windows(series, length)
}

// TextEncoder turns text into one-hot sequences through a BPE tokenizer.
type TextEncoder = dataset.TextEncoder

// NewTextEncoder creates a text encoder over a tiktoken encoding name.
func NewTextEncoder(encodingName string) (*TextEncoder, error) {
	return dataset.NewTextEncoder(encodingName)
}
