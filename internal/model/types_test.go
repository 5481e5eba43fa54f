package model

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var sixClasses = []string{"normal", "dust", "shading", "bird_droppings", "physical_damage", "electrical_damage"}

func TestLoadMetadata_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"output_shape":[1,6],"classes":["normal","dust","shading","bird_droppings","physical_damage","electrical_damage"]}`), 0o644))

	m, err := LoadMetadata(path, 6)
	require.NoError(t, err)
	require.Equal(t, DefaultImageSize, m.ImageSize)
	require.Equal(t, DefaultInputName, m.InputName)
	require.Equal(t, [3]float32{0.5, 0.5, 0.5}, m.ImageStd)
	require.Equal(t, 3*224*224, m.InputSize())
	require.NoError(t, m.Validate(sixClasses))
}

func TestLoadMetadata_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

	_, err := LoadMetadata(path, 6)
	require.Error(t, err)

	_, err = LoadMetadata(filepath.Join(t.TempDir(), "missing.json"), 6)
	require.Error(t, err)
}

func TestMetadataValidate(t *testing.T) {
	m := DefaultMetadata(4)
	require.ErrorIs(t, m.Validate(sixClasses), ErrClassMismatch)

	m = DefaultMetadata(6)
	m.Classes = []string{"normal", "dust", "shading", "bird_droppings", "electrical_damage", "physical_damage"}
	require.ErrorIs(t, m.Validate(sixClasses), ErrClassMismatch)

	m = DefaultMetadata(6)
	m.InputShape = []int64{1, 1, 224, 224}
	require.ErrorIs(t, m.Validate(sixClasses), ErrBadShape)

	m = DefaultMetadata(6)
	m.ImageSize = 384
	require.ErrorIs(t, m.Validate(sixClasses), ErrBadShape)
}

func TestResolveWeights(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "vit-base.onnx")
	checkpoint := filepath.Join(dir, "best_model.onnx")
	require.NoError(t, os.WriteFile(base, []byte("base"), 0o644))

	w, err := ResolveWeights(base, checkpoint)
	require.ErrorIs(t, err, ErrCheckpointNotFound)
	require.Equal(t, Weights{Path: base}, w)

	require.NoError(t, os.WriteFile(checkpoint, []byte("tuned"), 0o644))
	w, err = ResolveWeights(base, checkpoint)
	require.NoError(t, err)
	require.Equal(t, Weights{Path: checkpoint, FineTuned: true}, w)

	_, err = ResolveWeights(filepath.Join(dir, "nope.onnx"), filepath.Join(dir, "nope-either.onnx"))
	require.ErrorIs(t, err, ErrModelNotFound)

	_, err = ResolveWeights(base, dir)
	require.Error(t, err)
}

func TestParseDevice(t *testing.T) {
	for in, want := range map[string]Device{"": DeviceAuto, "AUTO": DeviceAuto, "cuda": DeviceCUDA, " cpu ": DeviceCPU} {
		d, err := ParseDevice(in)
		require.NoError(t, err)
		require.Equal(t, want, d)
	}

	_, err := ParseDevice("tpu")
	require.Error(t, err)
}

func TestLoadWeights_MissingCheckpointWarns(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "vit-base.onnx")
	require.NoError(t, os.WriteFile(base, []byte("base"), 0o644))

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	w, err := LoadWeights(base, filepath.Join(dir, "best_model.onnx"), logger)
	require.NoError(t, err)
	require.Equal(t, Weights{Path: base}, w)
	require.Contains(t, buf.String(), "warning: checkpoint not found")
	require.Contains(t, buf.String(), "using base weights from "+base)

	buf.Reset()
	_, err = LoadWeights(filepath.Join(dir, "nope.onnx"), "", logger)
	require.ErrorIs(t, err, ErrModelNotFound)
	require.Empty(t, buf.String())
}
