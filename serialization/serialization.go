// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization provides the public API for saving and loading
// weight state dicts in the .snet checkpoint format.
package serialization

import (
	"github.com/seqnet-ml/seqnet/internal/serialization"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Header is the metadata header of a .snet file.
type Header = serialization.Header

// CheckpointMeta carries training state alongside the weights.
type CheckpointMeta = serialization.CheckpointMeta

// TensorMeta describes one tensor in a .snet file.
type TensorMeta = serialization.TensorMeta

// Writer writes weight state dicts in .snet format.
type Writer = serialization.Writer

// Reader reads weight state dicts from .snet files.
type Reader = serialization.Reader

// Common errors.
var (
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrTensorNotFound     = serialization.ErrTensorNotFound
)

// NewWriter creates a .snet file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	return serialization.NewWriter(path)
}

// NewReader opens a .snet file and parses and validates its header.
func NewReader(path string) (*Reader, error) {
	return serialization.NewReader(path)
}

// SaveStateDict writes a state dict to path in one call.
func SaveStateDict(path string, stateDict map[string]*tensor.RawTensor) error {
	return serialization.SaveStateDict(path, stateDict)
}

// SaveStateDictWithHeader writes a state dict with checkpoint metadata to path.
func SaveStateDictWithHeader(path string, stateDict map[string]*tensor.RawTensor, header Header) error {
	return serialization.SaveStateDictWithHeader(path, stateDict, header)
}

// LoadStateDict reads a state dict from path in one call.
func LoadStateDict(path string) (map[string]*tensor.RawTensor, error) {
	return serialization.LoadStateDict(path)
}
