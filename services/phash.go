package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"math/bits"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
)

// pHash parameters: the image is reduced to hashSize*freqFactor pixels per
// side before the DCT, and the top-left hashSize x hashSize block of
// low-frequency coefficients forms the 64-bit fingerprint.
const (
	phashSize       = 8
	phashFreqFactor = 4
	phashHexLen     = phashSize * phashSize / 4
)

// DecodeImage decodes raw photo bytes into an image. A failure here is
// fatal to the validation pass.
func DecodeImage(photo []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

// GeneratePhash computes the perceptual hash of raw photo bytes and
// returns it as a fixed-width hex string of 16 characters.
func GeneratePhash(photo []byte) (string, error) {
	img, err := DecodeImage(photo)
	if err != nil {
		return "", err
	}
	return Phash(img), nil
}

// Phash computes a 64-bit perceptual hash of an image. Visually
// near-identical images (recompression, small crops, lighting changes)
// produce hashes within a small Hamming distance of each other.
//
// The image is converted to grayscale, downsampled to 32x32, transformed
// with a 2-D DCT, and each of the 64 low-frequency coefficients
// contributes one bit: set when the coefficient exceeds the block median.
func Phash(img image.Image) string {
	size := phashSize * phashFreqFactor

	gray := imaging.Grayscale(img)
	small := imaging.Resize(gray, size, size, imaging.Lanczos)

	pixels := make([][]float64, size)
	for y := 0; y < size; y++ {
		pixels[y] = make([]float64, size)
		for x := 0; x < size; x++ {
			r, _, _, _ := small.At(x, y).RGBA()
			pixels[y][x] = float64(r >> 8)
		}
	}

	coeffs := dct2d(pixels)

	lowFreq := make([]float64, 0, phashSize*phashSize)
	for y := 0; y < phashSize; y++ {
		for x := 0; x < phashSize; x++ {
			lowFreq = append(lowFreq, coeffs[y][x])
		}
	}

	med := median(lowFreq)

	var hash uint64
	for i, c := range lowFreq {
		if c > med {
			hash |= 1 << (63 - i)
		}
	}

	return fmt.Sprintf("%016x", hash)
}

// HammingDistance counts the differing bits between two fingerprints.
// It is symmetric and zero iff the fingerprints are identical.
func HammingDistance(a, b string) (int, error) {
	if len(a) != phashHexLen || len(b) != phashHexLen {
		return 0, fmt.Errorf("fingerprints must be %d hex chars, got %d and %d", phashHexLen, len(a), len(b))
	}

	ai, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", a, err)
	}
	bi, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", b, err)
	}

	return bits.OnesCount64(ai ^ bi), nil
}

// dct2d applies an unnormalized DCT-II along rows, then columns.
func dct2d(pixels [][]float64) [][]float64 {
	n := len(pixels)

	rows := make([][]float64, n)
	for y := 0; y < n; y++ {
		rows[y] = dct1d(pixels[y])
	}

	out := make([][]float64, n)
	for y := 0; y < n; y++ {
		out[y] = make([]float64, n)
	}
	col := make([]float64, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			col[y] = rows[y][x]
		}
		transformed := dct1d(col)
		for y := 0; y < n; y++ {
			out[y][x] = transformed[y]
		}
	}

	return out
}

func dct1d(in []float64) []float64 {
	n := len(in)
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += in[i] * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(n)))
		}
		out[k] = 2 * sum
	}
	return out
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
