package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pagescan/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(t *testing.T, text string) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return img
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	in, err := ocr.InputFromImage(3, renderText(t, "Hello Page"), ocr.WithLanguages("eng"), ocr.WithDPI(300))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}

	res, err := NewTesseractEngine().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "page") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if len(res.Lines) == 0 {
		t.Fatalf("expected at least one recognized line")
	}
	if res.InputID != "page-3" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
	if res.Language != "eng" {
		t.Fatalf("unexpected language: %s", res.Language)
	}
}

func TestTesseractEngineRegionCrop(t *testing.T) {
	ensureTesseractAvailable(t)

	// Text only in the left half; restrict recognition to the empty right half.
	in, err := ocr.InputFromImage(4, renderText(t, "LEFT"),
		ocr.WithLanguages("eng"),
		ocr.WithRegion(ocr.Region{X: 160, Y: 0, Width: 80, Height: 80}),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}

	res, err := NewTesseractEngine().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if strings.Contains(strings.ToLower(res.PlainText), "left") {
		t.Fatalf("region crop did not exclude text: %q", res.PlainText)
	}
}

func TestTesseractEngineIsDefault(t *testing.T) {
	if ocr.DefaultEngine().Name() != "tesseract" {
		t.Fatalf("importing the tesseract package should install the default engine")
	}
}

func TestCropImageOutsideBounds(t *testing.T) {
	in, err := ocr.InputFromImage(1, renderText(t, "X"))
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	region := ocr.Region{X: 1000, Y: 1000, Width: 10, Height: 10}
	if _, err := cropImage(in.Image, &region); err == nil {
		t.Fatalf("expected error for region outside image bounds")
	}
}
