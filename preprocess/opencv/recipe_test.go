package opencv

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/wudi/pagescan/preprocess"
)

var _ preprocess.Preprocessor = (*Recipe)(nil)

func TestRecipeApply(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{200, 200, 200, 255}}, image.Point{}, draw.Src)
	// Dark block standing in for text.
	draw.Draw(img, image.Rect(10, 10, 70, 30), &image.Uniform{C: color.RGBA{40, 40, 40, 255}}, image.Point{}, draw.Src)

	out, err := NewRecipe().Apply(img)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 40 {
		t.Fatalf("recipe should preserve dimensions, got %v", out.Bounds())
	}

	// Otsu should push the dark block towards black and the background towards
	// white; sample the centers of each.
	cr, _, _, _ := out.At(40, 20).RGBA()
	br, _, _, _ := out.At(2, 2).RGBA()
	if cr>>8 > 100 {
		t.Fatalf("expected dark center after binarization, got %d", cr>>8)
	}
	if br>>8 < 150 {
		t.Fatalf("expected light background after binarization, got %d", br>>8)
	}
}

func TestRecipeName(t *testing.T) {
	if NewRecipe().Name() != "opencv" {
		t.Fatalf("unexpected recipe name")
	}
}
