package serialization

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqnet-ml/seqnet/internal/nn"
	"github.com/seqnet-ml/seqnet/internal/tensor"
)

func sampleStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()

	w := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := tensor.MustFromSlice([]float32{0.5, -0.5}, tensor.Shape{2, 1})
	return map[string]*tensor.RawTensor{"W": w, "B": b}
}

func TestStateDictRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.snet")

	require.NoError(t, SaveStateDict(path, sampleStateDict(t)))

	loaded, err := LoadStateDict(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, tensor.Shape{2, 3}, loaded["W"].Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, loaded["W"].AsFloat32())
	assert.Equal(t, []float32{0.5, -0.5}, loaded["B"].AsFloat32())
	assert.Equal(t, "B", loaded["B"].Name())
}

func TestDeterministicOutput(t *testing.T) {
	dir := t.TempDir()
	header := Header{CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	p1 := filepath.Join(dir, "a.snet")
	p2 := filepath.Join(dir, "b.snet")
	require.NoError(t, SaveStateDictWithHeader(p1, sampleStateDict(t), header))
	require.NoError(t, SaveStateDictWithHeader(p2, sampleStateDict(t), header))

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestCheckpointMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.snet")

	header := Header{
		Metadata: map[string]string{"model": "lstm-w4"},
		Checkpoint: &CheckpointMeta{
			Epoch:         12,
			Step:          4800,
			Loss:          0.031,
			OptimizerType: "SGD",
		},
	}
	require.NoError(t, SaveStateDictWithHeader(path, sampleStateDict(t), header))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	got := r.Header()
	assert.Equal(t, FormatVersion, got.FormatVersion)
	assert.Equal(t, "lstm-w4", got.Metadata["model"])
	require.NotNil(t, got.Checkpoint)
	assert.Equal(t, 12, got.Checkpoint.Epoch)
	assert.Equal(t, int64(4800), got.Checkpoint.Step)
	assert.InDelta(t, 0.031, got.Checkpoint.Loss, 1e-12)
	assert.Equal(t, "SGD", got.Checkpoint.OptimizerType)
}

func TestReadSingleTensor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.snet")
	require.NoError(t, SaveStateDict(path, sampleStateDict(t)))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	b, err := r.ReadTensor("B")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, b.AsFloat32())

	_, err = r.ReadTensor("missing")
	assert.ErrorIs(t, err, ErrTensorNotFound)
}

func TestCorruptionDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.snet")
	require.NoError(t, SaveStateDict(path, sampleStateDict(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = LoadStateDict(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestRejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.snet")
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), 0o600))

	_, err := NewReader(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestWeightSetRoundTrip(t *testing.T) {
	ws := nn.NewWeightSet(nn.ConstantInit(0.25), tensor.Float32)
	ws.Direct("W", 3, 2)
	ws.Bias("B", 3)

	path := filepath.Join(t.TempDir(), "weights.snet")
	require.NoError(t, SaveStateDict(path, ws.StateDict()))

	restored := nn.NewWeightSet(nn.ConstantInit(0.9), tensor.Float32)
	restored.Direct("W", 3, 2)
	restored.Bias("B", 3)

	loaded, err := LoadStateDict(path)
	require.NoError(t, err)
	require.NoError(t, restored.LoadStateDict(loaded))

	assert.Equal(t, ws.Get("W").Tensor().AsFloat32(), restored.Get("W").Tensor().AsFloat32())
	assert.Equal(t, ws.Get("B").Tensor().AsFloat32(), restored.Get("B").Tensor().AsFloat32())
}
