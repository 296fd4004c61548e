package face

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestForehead_TopThirdSameWidth(t *testing.T) {
	faceBox := image.Rect(10, 20, 70, 110)
	got := Forehead(faceBox, DefaultForeheadFraction)
	want := image.Rect(10, 20, 70, 50)
	if got != want {
		t.Fatalf("forehead = %v want %v", got, want)
	}
	if !Forehead(image.Rectangle{}, DefaultForeheadFraction).Empty() {
		t.Fatalf("empty face must give empty forehead")
	}
	if got := Forehead(faceBox, 0); got != want {
		t.Fatalf("invalid fraction should fall back to a third, got %v", got)
	}
}

func TestCropRGBA_ClampsToFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 50, 40))
	roi, ok := CropRGBA(frame, image.Rect(40, 30, 80, 90))
	if !ok || roi.Bounds() != image.Rect(40, 30, 50, 40) {
		t.Fatalf("unexpected crop %v ok=%v", roi, ok)
	}
	if _, ok := CropRGBA(frame, image.Rect(60, 60, 70, 70)); ok {
		t.Fatalf("crop outside frame should fail")
	}
	if _, ok := CropRGBA(nil, image.Rect(0, 0, 1, 1)); ok {
		t.Fatalf("nil frame should fail")
	}
}

func TestStaticLocator(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r, ok := StaticLocator{Box: image.Rect(80, 80, 120, 120)}.Locate(frame)
	if !ok || r != image.Rect(80, 80, 100, 100) {
		t.Fatalf("unexpected box %v ok=%v", r, ok)
	}
	if _, ok := (StaticLocator{}).Locate(frame); ok {
		t.Fatalf("empty static box should report no face")
	}
}

// texturedFrame draws a blocky random "face" at box over a smooth background.
func texturedFrame(w, h int, box image.Rectangle, texture [][]uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(60 + (x+y)/8)
			if (image.Point{x, y}).In(box) {
				v = texture[(y-box.Min.Y)/8][(x-box.Min.X)/8]
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func randomTexture(n int, seed int64) [][]uint8 {
	rng := rand.New(rand.NewSource(seed))
	tex := make([][]uint8, n)
	for i := range tex {
		tex[i] = make([]uint8, n)
		for j := range tex[i] {
			tex[i][j] = uint8(rng.Intn(200) + 30)
		}
	}
	return tex
}

func TestTrackingLocator_BridgesDetectorMisses(t *testing.T) {
	tex := randomTexture(12, 3)
	box := image.Rect(64, 48, 144, 128)
	detect := true
	inner := LocatorFunc(func(frame *image.RGBA) (image.Rectangle, bool) {
		if detect {
			return box, true
		}
		return image.Rectangle{}, false
	})
	tr := NewTrackingLocator(inner, TrackerOptions{AnalysisScale: 0.5, Threshold: 0.7, HoldFrames: 2}, nil)

	if r, ok := tr.Locate(texturedFrame(240, 180, box, tex)); !ok || r != box {
		t.Fatalf("detector hit not passed through: %v %v", r, ok)
	}

	detect = false
	moved := box.Add(image.Pt(6, 4))
	r, ok := tr.Locate(texturedFrame(240, 180, moved, tex))
	if !ok {
		t.Fatalf("tracker lost the face on first miss")
	}
	if d := r.Min.Sub(moved.Min); abs(d.X) > 3 || abs(d.Y) > 3 {
		t.Fatalf("tracked box %v too far from %v", r, moved)
	}
	if _, ok := tr.Locate(texturedFrame(240, 180, moved, tex)); !ok {
		t.Fatalf("second miss should still be bridged")
	}
	if _, ok := tr.Locate(texturedFrame(240, 180, moved, tex)); ok {
		t.Fatalf("hold limit exceeded, expected no face")
	}
	hits, bridged := tr.Stats()
	if hits != 1 || bridged != 2 {
		t.Fatalf("unexpected stats hits=%d bridged=%d", hits, bridged)
	}
}

func TestTrackingLocator_NoFaceWithoutDetection(t *testing.T) {
	tr := NewTrackingLocator(LocatorFunc(func(*image.RGBA) (image.Rectangle, bool) {
		return image.Rectangle{}, false
	}), DefaultTrackerOptions(), nil)
	if _, ok := tr.Locate(image.NewRGBA(image.Rect(0, 0, 64, 64))); ok {
		t.Fatalf("nothing was ever detected")
	}
}

func TestMatchNCC_FindsPatch(t *testing.T) {
	tex := randomTexture(6, 9)
	img := image.NewGray(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.Pix[y*img.Stride+x] = uint8(40 + x/4)
		}
	}
	at := image.Pt(31, 17)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.Pix[(at.Y+y)*img.Stride+at.X+x] = tex[y/4][x/4]
		}
	}
	p := newPatch(img, image.Rect(at.X, at.Y, at.X+24, at.Y+24))
	res := matchNCC(buildGrayPrecomp(img), p, NCCOptions{Threshold: 0.9, Stride: 3, Refine: true})
	if !res.Found || res.X != at.X || res.Y != at.Y {
		t.Fatalf("expected match at %v, got %+v", at, res)
	}
	if res.Score < 0.999 {
		t.Fatalf("exact patch should score ~1, got %.4f", res.Score)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
