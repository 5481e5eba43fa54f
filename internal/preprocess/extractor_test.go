package preprocess

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/solariq/internal/model"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEncode_ShapeAndNormalisation(t *testing.T) {
	e := NewFeatureExtractor(model.DefaultMetadata(6))

	tests := []struct {
		name  string
		color color.Color
		want  [3]float32
	}{
		{"white", color.White, [3]float32{1, 1, 1}},
		{"black", color.Black, [3]float32{-1, -1, -1}},
		{"red", color.NRGBA{R: 255, A: 255}, [3]float32{1, -1, -1}},
		{"translucent red keeps its colour", color.NRGBA{R: 255, A: 10}, [3]float32{1, -1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := e.Encode(solid(300, 180, tt.color))
			require.NoError(t, err)
			require.Len(t, data, 3*224*224)

			plane := 224 * 224
			for ch := 0; ch < 3; ch++ {
				require.InDelta(t, tt.want[ch], data[ch*plane], 1e-6)
				require.InDelta(t, tt.want[ch], data[ch*plane+plane-1], 1e-6)
			}
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	e := NewFeatureExtractor(model.DefaultMetadata(6))
	_, err := e.Encode(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)
	_, err = e.Encode(nil)
	require.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "panel.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(8, 4, color.White)))
	require.NoError(t, f.Close())

	img, format, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 8, img.Bounds().Dx())

	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))
	_, _, err = DecodeFile(corrupt)
	require.Error(t, err)

	_, _, err = DecodeFile(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestToRGB_Offset(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	src.Set(6, 6, color.NRGBA{G: 200, A: 0})

	rgb := ToRGB(src)
	require.Equal(t, image.Rect(0, 0, 2, 2), rgb.Bounds())
	require.Equal(t, color.RGBA{G: 200, A: 255}, rgb.RGBAAt(1, 1))
}
