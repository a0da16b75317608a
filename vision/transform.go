// Package vision turns image files into flat float32 buffers suitable for
// the episodic pipeline: decode, resize to a square target, convert to
// channel-major (CHW) layout and apply per-channel normalization.
//
// Only the formats registered below (JPEG, PNG, GIF) are decoded. Anything
// the transform cannot decode is reported to the caller; the package never
// substitutes placeholder data.
package vision

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Per-channel RGB normalization constants commonly used for natural-image
// datasets (the ImageNet statistics).
var (
	DefaultMean = [3]float32{0.485, 0.456, 0.406}
	DefaultStd  = [3]float32{0.229, 0.224, 0.225}
)

// DefaultSize is the square side length used when no size is configured.
const DefaultSize = 84

// Transform decodes an image file into a normalized CHW float32 buffer of
// shape [3, Size, Size]. The zero value is not usable; construct with
// NewTransform or fill in all fields.
//
// Apply is safe for concurrent use: the transform holds no mutable state,
// so one instance can serve many decode workers.
type Transform struct {
	// Size is the square side length the image is resized to.
	Size int

	// Mean and Std are the per-channel normalization constants applied as
	// (value - mean) / std after scaling pixels to [0, 1].
	Mean [3]float32
	Std  [3]float32
}

// NewTransform returns a Transform with the default normalization
// constants. A non-positive size falls back to DefaultSize.
func NewTransform(size int) *Transform {
	if size <= 0 {
		size = DefaultSize
	}
	return &Transform{Size: size, Mean: DefaultMean, Std: DefaultStd}
}

// Apply decodes the file at path, resizes it to Size x Size with bilinear
// interpolation and returns the normalized CHW buffer plus its shape
// [3, Size, Size].
func (t *Transform) Apply(path string) ([]float32, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}

	size := t.Size
	if size <= 0 {
		size = DefaultSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	buf := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// RGBA stores premultiplied 8-bit channels at a fixed stride.
			off := dst.PixOffset(x, y)
			pos := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255.0
				std := t.Std[c]
				if std == 0 {
					std = 1
				}
				buf[c*plane+pos] = (v - t.Mean[c]) / std
			}
		}
	}
	return buf, []int{3, size, size}, nil
}
