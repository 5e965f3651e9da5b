package testutil

import (
	"fmt"
	"github.com/stretchr/testify/require"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

const (
	ImageWidth  = 20
	ImageHeight = 20
)

// RGBImage generates a noisy RGB image: each pixel has a random per-pixel
// bias and variance so that no two generated images are alike.
func RGBImage(rng *rand.Rand) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))

	for y := 0; y < ImageHeight; y++ {
		for x := 0; x < ImageWidth; x++ {
			bias := rng.Float64() * 64
			variance := rng.Float64() * (255 - 64)

			channel := func() uint8 {
				return uint8(rng.Float64()*variance + bias)
			}

			img.SetRGBA(x, y, color.RGBA{R: channel(), G: channel(), B: channel(), A: 0xff})
		}
	}

	return img
}

// RGBImages writes count generated images as image_0.jpeg, image_1.jpeg, ...
// into a temporary directory and returns the directory and the file names
// relative to it.
func RGBImages(t *testing.T, count int) (string, []string) {
	t.Helper()

	dir := t.TempDir()
	rng := rand.New(rand.NewSource(123))

	var names []string

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("image_%d.jpeg", i)

		file, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)

		require.NoError(t, jpeg.Encode(file, RGBImage(rng), nil))
		require.NoError(t, file.Close())

		names = append(names, name)
	}

	return dir, names
}
