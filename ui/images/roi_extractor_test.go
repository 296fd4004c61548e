package images

import (
	"image"
	"testing"
)

func TestExtractROI_CentersAndClamps(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	roi, rect, err := ExtractROI(frame, 50, 50, 40, 20)
	if err != nil || roi == nil {
		t.Fatalf("expected ROI, got err=%v", err)
	}
	if rect.Dx() != 40 || rect.Dy() != 20 {
		t.Fatalf("expected 40x20, got %dx%d", rect.Dx(), rect.Dy())
	}
	if rect.Min.X != 30 || rect.Min.Y != 40 {
		t.Fatalf("unexpected rect origin %v", rect.Min)
	}
}

func TestExtractROI_ShiftsInsideNearEdge(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 20, 20))
	roi, rect, err := ExtractROI(frame, 2, 18, 10, 10)
	if err != nil || roi == nil {
		t.Fatalf("roi error: %v", err)
	}
	if rect != image.Rect(0, 10, 10, 20) {
		t.Fatalf("expected shift inside frame, got %v", rect)
	}
}

func TestExtractROI_SizeAdjustedWhenTooLarge(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 30, 30))
	roi, rect, _ := ExtractROI(frame, 5, 5, 50, 50)
	if roi == nil {
		t.Fatalf("nil roi")
	}
	if rect != frame.Bounds() {
		t.Fatalf("expected whole frame, got %v", rect)
	}
}

func TestExtractROI_MinSize(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	roi, rect, _ := ExtractROI(frame, 0, 0, 0, 0)
	if roi == nil {
		t.Fatalf("nil roi")
	}
	if rect.Dx() != 1 || rect.Dy() != 1 {
		t.Fatalf("expected 1x1 got %dx%d", rect.Dx(), rect.Dy())
	}
}

func TestForeheadPreview(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 200, 200))
	roi, ok := ForeheadPreview(frame, image.Rect(80, 40, 120, 60))
	if !ok || roi.Bounds().Dx() != 50 || roi.Bounds().Dy() != 30 {
		t.Fatalf("unexpected preview %v ok=%v", roi, ok)
	}
	if _, ok := ForeheadPreview(frame, image.Rectangle{}); ok {
		t.Fatalf("empty forehead should not preview")
	}
}
