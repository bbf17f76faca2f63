package ocr

import (
	"fmt"
	"image"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Image preparation policy. One base variant is always produced; a second,
// contrast-enhanced variant only when the base looks washed out.
const (
	// MaxImageDim caps the largest image dimension to bound peak memory.
	MaxImageDim = 2200
	// LowContrastStdDev: below this pixel-intensity standard deviation the
	// enhanced variant is worth trying.
	LowContrastStdDev = 48.0
	// ContrastBoost and SharpenSigma shape the enhanced variant.
	ContrastBoost = 30
	SharpenSigma  = 1.0
)

// prepareBase decodes the input image, downscales and grayscales it, writes
// the result next to the input, and reports whether contrast was low enough
// to justify a second variant. The decoded buffer is released before the
// function returns; callers only ever see the on-disk path.
func prepareBase(inputPath, tmpDir string) (basePath string, lowContrast bool, err error) {
	src, err := imaging.Open(inputPath)
	if err != nil {
		return "", false, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	if b.Dx() > MaxImageDim || b.Dy() > MaxImageDim {
		src = imaging.Fit(src, MaxImageDim, MaxImageDim, imaging.Lanczos)
	}
	gray := imaging.Grayscale(src)
	src = nil

	sd := intensityStdDev(gray)

	basePath = filepath.Join(tmpDir, "base.png")
	if err := imaging.Save(gray, basePath); err != nil {
		return "", false, fmt.Errorf("save base variant: %w", err)
	}
	gray = nil

	return basePath, sd < LowContrastStdDev, nil
}

// prepareEnhanced builds the contrast-enhanced variant from the saved base
// image, so the base buffer never coexists with the enhanced one.
func prepareEnhanced(basePath, tmpDir string) (string, error) {
	base, err := imaging.Open(basePath)
	if err != nil {
		return "", fmt.Errorf("reopen base variant: %w", err)
	}
	enhanced := imaging.Sharpen(imaging.AdjustContrast(base, ContrastBoost), SharpenSigma)
	base = nil

	outPath := filepath.Join(tmpDir, "enhanced.png")
	if err := imaging.Save(enhanced, outPath); err != nil {
		return "", fmt.Errorf("save enhanced variant: %w", err)
	}
	return outPath, nil
}

// intensityStdDev computes the standard deviation of pixel intensities over
// the red channel, which carries the full signal on a grayscaled image.
func intensityStdDev(img *image.NRGBA) float64 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride : (y-b.Min.Y)*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			v := float64(row[x])
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
