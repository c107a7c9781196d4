package ocr

import (
	"reflect"
	"testing"
)

func TestRegionFromCorners(t *testing.T) {
	r := RegionFromCorners(379, 154, 608, 943)
	want := Region{X: 379, Y: 154, Width: 229, Height: 789}
	if r != want {
		t.Fatalf("RegionFromCorners() = %+v, want %+v", r, want)
	}
	if r.IsEmpty() {
		t.Fatalf("region should not be empty")
	}
	if !RegionFromCorners(10, 10, 10, 20).IsEmpty() {
		t.Fatalf("zero-width region should be empty")
	}
}

func TestFilterLines(t *testing.T) {
	res := Result{
		Lines: []TextLine{
			{Text: "KIM 0231", Confidence: 0.92},
			{Text: "smudge", Confidence: 0.31},
			{Text: "LEE 0442", Confidence: 0.51},
			{Text: "", Confidence: 0},
		},
	}

	kept := res.FilterLines(0.5)
	got := make([]string, 0, len(kept))
	for _, l := range kept {
		got = append(got, l.Text)
	}
	want := []string{"KIM 0231", "LEE 0442"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterLines(0.5) kept %v, want %v", got, want)
	}

	if n := len(res.FilterLines(0)); n != 4 {
		t.Fatalf("FilterLines(0) should keep all lines, kept %d", n)
	}
}
