package preprocess

import (
	"errors"
	"image"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/solariq/internal/model"
)

// FeatureExtractor reproduces the ViT image processor: bilinear resize to a
// square, rescale to [0,1], normalise per channel, channel-first layout.
type FeatureExtractor struct {
	Size int
	Mean [3]float32
	Std  [3]float32
}

func NewFeatureExtractor(metadata model.Metadata) *FeatureExtractor {
	return &FeatureExtractor{
		Size: metadata.ImageSize,
		Mean: metadata.ImageMean,
		Std:  metadata.ImageStd,
	}
}

// Encode converts an image to the CHW float32 tensor expected by the model.
func (e *FeatureExtractor) Encode(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	targetSize := uint(e.Size)
	resized := resize.Resize(targetSize, targetSize, ToRGB(img), resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	inputData := make([]float32, 3*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			pixelIndex := y*width + x
			inputData[pixelIndex] = e.normalize(0, r)
			inputData[plane+pixelIndex] = e.normalize(1, g)
			inputData[2*plane+pixelIndex] = e.normalize(2, b)
		}
	}

	return inputData, nil
}

func (e *FeatureExtractor) normalize(channel int, v uint32) float32 {
	scaled := float32(v>>8) / 255.0
	return (scaled - e.Mean[channel]) / e.Std[channel]
}
