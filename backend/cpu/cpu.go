// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the public API for the pure-Go CPU backend.
package cpu

import (
	"github.com/seqnet-ml/seqnet/internal/backend/cpu"
)

// Backend implements tensor operations on CPU.
type Backend = cpu.CPUBackend

// New creates a new CPU backend.
func New() *Backend {
	return cpu.New()
}
