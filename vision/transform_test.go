package vision

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a w x h image filled with a single color.
func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func TestTransform_ApplyShapeAndNormalization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 100, 60, color.RGBA{R: 255, A: 255})

	tr := NewTransform(32)
	buf, dims, err := tr.Apply(path)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(dims) != 3 || dims[0] != 3 || dims[1] != 32 || dims[2] != 32 {
		t.Fatalf("expected dims [3 32 32], got %v", dims)
	}
	if len(buf) != 3*32*32 {
		t.Fatalf("expected buffer of %d values, got %d", 3*32*32, len(buf))
	}

	// Uniform red input: every red-channel value is (1-mean)/std and every
	// green-channel value is (0-mean)/std regardless of pixel position.
	wantR := (1.0 - float64(DefaultMean[0])) / float64(DefaultStd[0])
	wantG := (0.0 - float64(DefaultMean[1])) / float64(DefaultStd[1])
	plane := 32 * 32
	for _, pos := range []int{0, plane / 2, plane - 1} {
		if got := float64(buf[pos]); math.Abs(got-wantR) > 0.05 {
			t.Fatalf("red channel at %d: expected ~%.3f, got %.3f", pos, wantR, got)
		}
		if got := float64(buf[plane+pos]); math.Abs(got-wantG) > 0.05 {
			t.Fatalf("green channel at %d: expected ~%.3f, got %.3f", pos, wantG, got)
		}
	}
}

func TestTransform_ApplyUpscales(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.png")
	writePNG(t, path, 2, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	tr := NewTransform(84)
	_, dims, err := tr.Apply(path)
	if err != nil {
		t.Fatalf("Apply failed on small image: %v", err)
	}
	if dims[1] != 84 || dims[2] != 84 {
		t.Fatalf("expected 84x84 output, got %v", dims)
	}
}

func TestTransform_ApplyErrors(t *testing.T) {
	dir := t.TempDir()

	// Missing file.
	tr := NewTransform(16)
	if _, _, err := tr.Apply(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	// Present but not an image.
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to write bad file: %v", err)
	}
	if _, _, err := tr.Apply(bad); err == nil {
		t.Fatalf("expected decode error for non-image file")
	}
}

func TestNewTransform_Defaults(t *testing.T) {
	tr := NewTransform(0)
	if tr.Size != DefaultSize {
		t.Fatalf("expected default size %d, got %d", DefaultSize, tr.Size)
	}
	if tr.Mean != DefaultMean || tr.Std != DefaultStd {
		t.Fatalf("expected default normalization constants, got %v / %v", tr.Mean, tr.Std)
	}
}
