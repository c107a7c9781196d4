package preprocess

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func grayRamp(t *testing.T) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 16))
	for x := 0; x < 64; x++ {
		v := uint8(x * 4)
		draw.Draw(img, image.Rect(x, 0, x+1, 16), &image.Uniform{C: color.RGBA{v, v, v, 255}}, image.Point{}, draw.Src)
	}
	return img
}

func TestIdentityReturnsSameImage(t *testing.T) {
	img := grayRamp(t)
	out, err := Identity{}.Apply(img)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out != img {
		t.Fatalf("identity should return the input unchanged")
	}
}

func TestChainName(t *testing.T) {
	c := Chain{Grayscale{}, Blur{Sigma: 1}, Threshold{Level: 128}}
	if got := c.Name(); got != "grayscale+blur+threshold" {
		t.Fatalf("unexpected chain name: %q", got)
	}
}

func TestThresholdBinarizes(t *testing.T) {
	out, err := Threshold{Level: 128}.Apply(grayRamp(t))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			v := uint8(r >> 8)
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) not binarized: %d", x, y, v)
			}
			if r != g || g != b {
				t.Fatalf("pixel (%d,%d) not grayscale", x, y)
			}
		}
	}
}

func TestDocumentChain(t *testing.T) {
	p := Document()
	if p.Name() != "grayscale+blur+contrast+threshold" {
		t.Fatalf("unexpected recipe name: %q", p.Name())
	}
	out, err := p.Apply(grayRamp(t))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 16 {
		t.Fatalf("document chain should preserve dimensions, got %v", out.Bounds())
	}
}

func TestScaleDoublesHeight(t *testing.T) {
	out, err := Scale{Factor: 2}.Apply(grayRamp(t))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := out.Bounds().Dy(); got != 32 {
		t.Fatalf("expected height 32, got %d", got)
	}
	if got := out.Bounds().Dx(); got != 128 {
		t.Fatalf("expected aspect ratio preserved (width 128), got %d", got)
	}
}
