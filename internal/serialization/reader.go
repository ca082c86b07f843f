package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// Reader reads weight state dicts from .snet files.
type Reader struct {
	file       *os.File
	header     Header
	dataOffset int64
	dataSize   int64
	closed     bool
}

// NewReader opens a .snet file and parses and validates its header.
// The data section checksum is verified on the first tensor read.
func NewReader(path string) (*Reader, error) {
	//nolint:gosec // G304: path comes from the caller, which is expected for checkpoint loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file}
	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	r.dataSize = info.Size() - r.dataOffset

	if err := validateTensorTable(r.header.Tensors, r.dataSize); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to unmarshal header: %w", err)
	}

	pos := int64(4+4+8) + int64(headerSize)
	r.dataOffset = pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
	return nil
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// ReadStateDict reads every tensor in the file, verifying the data checksum.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	data := make([]byte, r.dataSize)
	if _, err := r.file.ReadAt(data, r.dataOffset); err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}

	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != r.header.Checksum {
		return nil, ErrChecksumMismatch
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := tensorFromMeta(meta, data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// ReadTensor reads a single tensor by name without checksum verification.
func (r *Reader) ReadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	for _, meta := range r.header.Tensors {
		if meta.Name != name {
			continue
		}
		buf := make([]byte, meta.Size)
		if _, err := r.file.ReadAt(buf, r.dataOffset+meta.Offset); err != nil {
			return nil, fmt.Errorf("failed to read tensor %q: %w", name, err)
		}
		return tensorFromMeta(meta, buf)
	}
	return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
}

// Close closes the underlying file. Safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

func tensorFromMeta(meta TensorMeta, buf []byte) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %q: unknown dtype %q", meta.Name, meta.DType)
	}
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}
	if int64(len(raw.Data())) != meta.Size {
		return nil, fmt.Errorf("tensor %q: size %d does not match shape %v", meta.Name, meta.Size, meta.Shape)
	}
	copy(raw.Data(), buf)
	raw.SetName(meta.Name)
	return raw, nil
}

// LoadStateDict reads a state dict from path in one call.
func LoadStateDict(path string) (map[string]*tensor.RawTensor, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadStateDict()
}

func validateTensorTable(tensors []TensorMeta, dataSize int64) error {
	for _, meta := range tensors {
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("tensor %q: negative offset or size", meta.Name)
		}
		if meta.Offset+meta.Size > dataSize {
			return fmt.Errorf("%w: %q", ErrOutOfBounds, meta.Name)
		}
	}
	return nil
}
