package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	DefaultImageSize  = 224
	DefaultInputName  = "pixel_values"
	DefaultOutputName = "logits"
)

var (
	ErrClassMismatch = errors.New("class count does not match model output")
	ErrBadShape      = errors.New("invalid tensor shape")
)

// Metadata describes the exported ViT graph: tensor names and shapes, the
// class order baked into the classification head and the normalisation the
// feature extractor must apply.
type Metadata struct {
	InputShape  []int64    `json:"input_shape"`
	OutputShape []int64    `json:"output_shape"`
	Classes     []string   `json:"classes"`
	ImageSize   int        `json:"image_size"`
	InputName   string     `json:"input_name"`
	OutputName  string     `json:"output_name"`
	ImageMean   [3]float32 `json:"image_mean"`
	ImageStd    [3]float32 `json:"image_std"`
}

// DefaultMetadata matches google/vit-base-patch16-224 with a head of
// numClasses outputs.
func DefaultMetadata(numClasses int) Metadata {
	return Metadata{
		InputShape:  []int64{1, 3, DefaultImageSize, DefaultImageSize},
		OutputShape: []int64{1, int64(numClasses)},
		ImageSize:   DefaultImageSize,
		InputName:   DefaultInputName,
		OutputName:  DefaultOutputName,
		ImageMean:   [3]float32{0.5, 0.5, 0.5},
		ImageStd:    [3]float32{0.5, 0.5, 0.5},
	}
}

// LoadMetadata reads the metadata file. Fields missing from the file keep
// their ViT defaults.
func LoadMetadata(path string, numClasses int) (Metadata, error) {
	metadata := DefaultMetadata(numClasses)

	metaFile, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if metadata.ImageStd == [3]float32{} {
		metadata.ImageStd = [3]float32{0.5, 0.5, 0.5}
	}

	return metadata, nil
}

// Validate checks that the graph produces exactly one logit per class and
// that the class order, when recorded, agrees with classes.
func (m Metadata) Validate(classes []string) error {
	if len(m.InputShape) != 4 || m.InputShape[1] != 3 {
		return fmt.Errorf("%w: input %v, want [N 3 H W]", ErrBadShape, m.InputShape)
	}
	if m.InputShape[2] != int64(m.ImageSize) || m.InputShape[3] != int64(m.ImageSize) {
		return fmt.Errorf("%w: input %v does not match image size %d", ErrBadShape, m.InputShape, m.ImageSize)
	}
	if len(m.OutputShape) == 0 {
		return fmt.Errorf("%w: empty output shape", ErrBadShape)
	}
	if out := m.OutputShape[len(m.OutputShape)-1]; out != int64(len(classes)) {
		return fmt.Errorf("%w: model has %d outputs, %d classes configured", ErrClassMismatch, out, len(classes))
	}
	if len(m.Classes) == 0 {
		return nil
	}
	if len(m.Classes) != len(classes) {
		return fmt.Errorf("%w: metadata lists %d classes, %d configured", ErrClassMismatch, len(m.Classes), len(classes))
	}
	for i, name := range m.Classes {
		if name != classes[i] {
			return fmt.Errorf("%w: class %d is %q in metadata, %q configured", ErrClassMismatch, i, name, classes[i])
		}
	}
	return nil
}

// InputSize is the number of float32 values in one input tensor.
func (m Metadata) InputSize() int {
	size := 1
	for _, dim := range m.InputShape {
		size *= int(dim)
	}
	return size
}

// NumClasses is the width of the logits row.
func (m Metadata) NumClasses() int {
	return int(m.OutputShape[len(m.OutputShape)-1])
}
