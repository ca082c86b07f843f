// Copyright 2025 SeqNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the procedure engine: sequences,
// cell definitions, and compiled computation graphs with reverse-mode
// differentiation.
//
// A Procedure is built once from a Definition and replayed per timestep; the
// backward pass walks the recorded tape in reverse through time, honoring a
// truncation limit.
package graph

import (
	"github.com/seqnet-ml/seqnet/internal/graph"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Sequence is an ordered collection of per-timestep tensor tuples.
type Sequence = graph.Sequence

// NewSequence creates an empty sequence with the given tuple depth.
func NewSequence(depth int) *Sequence {
	return graph.NewSequence(depth)
}

// Node is a handle into a procedure's node arena.
type Node = graph.Node

// Builder records a cell definition's operations during construction.
type Builder = graph.Builder

// Definition is the single-timestep forward formula a layer type supplies.
type Definition = graph.Definition

// Procedure is a compiled computation graph bound to one weight set.
type Procedure = graph.Procedure

// Phase distinguishes the training and testing state-snapshot slots.
type Phase = graph.Phase

// Snapshot slots.
const (
	Training Phase = graph.Training
	Testing  Phase = graph.Testing
)

// Build compiles a procedure by symbolically executing the cell definition.
func Build(backend tensor.Backend, def Definition) (*Procedure, error) {
	return graph.Build(backend, def)
}
