// Package preprocess prepares page crops for OCR. Engines such as Tesseract
// binarize internally, but scans of uneven lighting or faint ink benefit from
// an explicit cleanup pass first. Preprocessors are composable so callers can
// pick how aggressive that pass should be.
package preprocess

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// Preprocessor transforms a page image before it is handed to an OCR engine.
type Preprocessor interface {
	Name() string
	Apply(img image.Image) (image.Image, error)
}

// Identity performs no preprocessing.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Apply(img image.Image) (image.Image, error) { return img, nil }

// Chain applies preprocessors in order.
type Chain []Preprocessor

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, p := range c {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (c Chain) Apply(img image.Image) (image.Image, error) {
	var err error
	for _, p := range c {
		img, err = p.Apply(img)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return img, nil
}

// Grayscale converts the image to grayscale for more stable OCR.
type Grayscale struct{}

func (Grayscale) Name() string { return "grayscale" }

func (Grayscale) Apply(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

// Blur applies a Gaussian blur to suppress scanner noise.
type Blur struct {
	Sigma float64
}

func (Blur) Name() string { return "blur" }

func (b Blur) Apply(img image.Image) (image.Image, error) {
	sigma := b.Sigma
	if sigma <= 0 {
		sigma = 1.0
	}
	return imaging.Blur(img, sigma), nil
}

// Contrast stretches contrast so text stands out from the paper.
// Percentage follows imaging.AdjustContrast semantics (-100..100).
type Contrast struct {
	Percentage float64
}

func (Contrast) Name() string { return "contrast" }

func (c Contrast) Apply(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, c.Percentage), nil
}

// Threshold applies a hard threshold producing a pure black/white image.
type Threshold struct {
	Level uint8
}

func (Threshold) Name() string { return "threshold" }

func (t Threshold) Apply(img image.Image) (image.Image, error) {
	level := t.Level
	if level == 0 {
		level = 200
	}
	out := imaging.AdjustFunc(imaging.Grayscale(img), func(c color.NRGBA) color.NRGBA {
		// Grayscale input, so the red channel is a brightness proxy.
		if c.R > level {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
	return out, nil
}

// Scale resizes the image by the given factor, preserving aspect ratio.
// Upscaling small crops helps OCR with low-resolution text.
type Scale struct {
	Factor float64
}

func (Scale) Name() string { return "scale" }

func (s Scale) Apply(img image.Image) (image.Image, error) {
	factor := s.Factor
	if factor <= 0 {
		factor = 2.0
	}
	height := int(float64(img.Bounds().Dy()) * factor)
	if height < 1 {
		return nil, fmt.Errorf("scale factor %v collapses image", factor)
	}
	return imaging.Resize(img, 0, height, imaging.Lanczos), nil
}

// None returns the identity preprocessor.
func None() Preprocessor { return Identity{} }

// Document returns the pure-Go document cleanup chain: grayscale, mild blur,
// contrast stretch, hard threshold.
func Document() Preprocessor {
	return Chain{Grayscale{}, Blur{Sigma: 1.0}, Contrast{Percentage: 60}, Threshold{Level: 200}}
}
