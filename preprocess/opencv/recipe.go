// Package opencv implements the full document cleanup recipe on top of OpenCV
// via gocv: grayscale, Gaussian blur, CLAHE contrast equalization, Otsu
// binarization, morphological close, and a final smoothing blur. It requires
// the OpenCV runtime; the pure-Go chains in the parent package cover
// environments without it.
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Recipe holds the tunable parameters of the OpenCV pipeline. The zero value
// is not usable; construct with NewRecipe.
type Recipe struct {
	// BlurKernel is the Gaussian kernel applied before equalization.
	BlurKernel image.Point
	// ClipLimit bounds CLAHE contrast amplification.
	ClipLimit float64
	// TileSize is the CLAHE tile grid.
	TileSize image.Point
	// CloseKernel is the structuring element for the morphological close that
	// fills gaps inside character strokes after binarization.
	CloseKernel image.Point
	// FinalBlurKernel softens the hard binary edges for the OCR engine.
	FinalBlurKernel image.Point
}

// NewRecipe returns the recipe with default parameters.
func NewRecipe() *Recipe {
	return &Recipe{
		BlurKernel:      image.Pt(5, 5),
		ClipLimit:       2.0,
		TileSize:        image.Pt(8, 8),
		CloseKernel:     image.Pt(3, 3),
		FinalBlurKernel: image.Pt(3, 3),
	}
}

func (r *Recipe) Name() string { return "opencv" }

// Apply runs the pipeline and returns the cleaned image.
func (r *Recipe) Apply(img image.Image) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, r.BlurKernel, 0, 0, gocv.BorderDefault)

	clahe := gocv.NewCLAHEWithParams(r.ClipLimit, r.TileSize)
	defer clahe.Close()
	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(blurred, &equalized)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(equalized, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, r.CloseKernel)
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)

	out := gocv.NewMat()
	defer out.Close()
	gocv.GaussianBlur(closed, &out, r.FinalBlurKernel, 0, 0, gocv.BorderDefault)

	result, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat to image: %w", err)
	}
	return result, nil
}
