package main

import (
	"testing"

	"github.com/wudi/pagescan/ocr"
)

func TestParseROI(t *testing.T) {
	region, err := parseROI("379,154,608,943")
	if err != nil {
		t.Fatalf("parseROI() error = %v", err)
	}
	want := ocr.Region{X: 379, Y: 154, Width: 229, Height: 789}
	if region != want {
		t.Fatalf("parseROI() = %+v, want %+v", region, want)
	}

	if r, err := parseROI(""); err != nil || !r.IsEmpty() {
		t.Fatalf("empty roi should disable cropping, got %+v, %v", r, err)
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d", "10,10,5,20", "10,10,20,5", "-1,0,5,5"} {
		if _, err := parseROI(bad); err == nil {
			t.Fatalf("parseROI(%q) expected error", bad)
		}
	}
}

func TestRecipeByName(t *testing.T) {
	for _, name := range []string{"none", "document", "opencv"} {
		p, err := recipeByName(name)
		if err != nil {
			t.Fatalf("recipeByName(%q) error = %v", name, err)
		}
		if p == nil {
			t.Fatalf("recipeByName(%q) returned nil", name)
		}
	}
	if _, err := recipeByName("sharpen-only"); err == nil {
		t.Fatalf("unknown recipe should error")
	}
}
