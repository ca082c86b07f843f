package serialization

import (
	"time"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "SNET"
	FormatVersion   = 1
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary.
	MaxHeaderSize   = 64 << 20
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Header is the JSON header of a .snet file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	SeqNetVersion string            `json:"seqnet_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Checksum      string            `json:"checksum"` // SHA-256 of the data section, hex.
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta carries training state alongside the weights.
type CheckpointMeta struct {
	Epoch         int     `json:"epoch"`
	Step          int64   `json:"step"`
	Loss          float64 `json:"loss"`
	OptimizerType string  `json:"optimizer_type,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // Bytes from the start of the data section.
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}
