package ocr

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestPNG renders a synthetic scan: left half black, right half white
// unless uniform is set, in which case the whole frame is white.
func writeTestPNG(t *testing.T, dir string, w, h int, uniform bool) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if !uniform && x < w/2 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPrepareBaseDownscalesOversizedInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeTestPNG(t, dir, MaxImageDim+800, 200, false)

	basePath, _, err := prepareBase(input, dir)
	require.NoError(t, err)

	f, err := os.Open(basePath)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	require.LessOrEqual(t, cfg.Width, MaxImageDim)
	require.LessOrEqual(t, cfg.Height, MaxImageDim)
}

func TestPrepareBaseContrastFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, lowContrast, err := prepareBase(writeTestPNG(t, dir, 80, 80, true), dir)
	require.NoError(t, err)
	require.True(t, lowContrast, "uniform frame has no contrast")

	dir2 := t.TempDir()
	_, lowContrast, err = prepareBase(writeTestPNG(t, dir2, 80, 80, false), dir2)
	require.NoError(t, err)
	require.False(t, lowContrast, "half black half white is high contrast")
}

func TestPrepareBaseRejectsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "input.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	_, _, err := prepareBase(path, dir)
	require.Error(t, err)
}

func TestPrepareEnhancedProducesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	basePath, _, err := prepareBase(writeTestPNG(t, dir, 60, 60, true), dir)
	require.NoError(t, err)

	enhancedPath, err := prepareEnhanced(basePath, dir)
	require.NoError(t, err)
	require.FileExists(t, enhancedPath)
	require.NotEqual(t, basePath, enhancedPath)
}

func TestIntensityStdDev(t *testing.T) {
	t.Parallel()

	uniform := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range uniform.Pix {
		uniform.Pix[i] = 200
	}
	require.Zero(t, intensityStdDev(uniform))

	split := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(0)
			if x >= 5 {
				v = 255
			}
			split.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	require.InDelta(t, 127.5, intensityStdDev(split), 1.0)
}
