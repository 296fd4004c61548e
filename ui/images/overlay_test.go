package images

import (
	"image"
	"image/color"
	"testing"
)

func TestAnnotate_DrawsBoxesOnCopy(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 120, 100))
	out := Annotate(frame, Annotation{
		Face:     image.Rect(20, 20, 80, 90),
		Forehead: image.Rect(20, 20, 80, 43),
		Lines:    []string{"Measuring: 12s"},
		Footer:   []string{"HR 72 BPM"},
	})
	if out == frame {
		t.Fatalf("annotate must not return the input frame")
	}
	if got := out.RGBAAt(50, 89); got != FaceColor {
		t.Fatalf("face bottom edge not drawn: %v", got)
	}
	if got := out.RGBAAt(50, 20); got != ForeheadColor {
		t.Fatalf("forehead top edge not drawn: %v", got)
	}
	if got := frame.RGBAAt(50, 89); got != (color.RGBA{}) {
		t.Fatalf("input frame modified: %v", got)
	}
	var lit int
	for y := 0; y < 30; y++ {
		for x := 0; x < 120; x++ {
			if out.RGBAAt(x, y) == TextColor {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("no text pixels drawn")
	}
}

func TestResultsCard_Size(t *testing.T) {
	card := ResultsCard("Cardiovascular Results", []string{"Heart Beat: 72 BPM"}, 0, 0)
	if card.Bounds() != image.Rect(0, 0, 500, 300) {
		t.Fatalf("unexpected default size %v", card.Bounds())
	}
	if card.RGBAAt(499, 299) != cardBG {
		t.Fatalf("background not filled")
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := ScaleToFit(src, 100, 100)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Fatalf("unexpected scaled size %v", out.Bounds())
	}
	if ScaleToFit(src, 500, 500) != image.Image(src) {
		t.Fatalf("fitting image should be returned as-is")
	}
	if len(EncodePNG(out)) == 0 {
		t.Fatalf("png encoding failed")
	}
}
