package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

const seqnetVersion = "0.1.0"

// Writer writes weight state dicts in .snet format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .snet file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: path comes from the caller, which is expected for checkpoint saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes the state dict with an empty metadata header.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor) error {
	return w.WriteStateDictWithHeader(stateDict, Header{})
}

// WriteStateDictWithHeader writes the state dict, filling in the header's
// format fields and tensor table. Tensors are packed in sorted name order so
// the output is deterministic.
func (w *Writer) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	var dataSize int64
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.NumElements() * raw.DType().Size())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: dataSize,
			Size:   size,
		})
		dataSize += size
	}

	data := make([]byte, 0, dataSize)
	for _, name := range names {
		data = append(data, stateDict[name].Data()...)
	}

	sum := sha256.Sum256(data)
	header.Checksum = hex.EncodeToString(sum[:])
	header.FormatVersion = FormatVersion
	header.SeqNetVersion = seqnetVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	headerJSON, err := marshalHeader(&header)
	if err != nil {
		return err
	}

	if _, err := w.file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	pos := int64(4+4+8) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// Close closes the underlying file. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

func marshalHeader(header *Header) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	return headerJSON, nil
}

// SaveStateDict writes a state dict to path in one call.
func SaveStateDict(path string, stateDict map[string]*tensor.RawTensor) error {
	return SaveStateDictWithHeader(path, stateDict, Header{})
}

// SaveStateDictWithHeader writes a state dict with checkpoint metadata to path.
func SaveStateDictWithHeader(path string, stateDict map[string]*tensor.RawTensor, header Header) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStateDictWithHeader(stateDict, header); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
