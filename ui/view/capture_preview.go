package view

import (
	"image"

	"github.com/soocke/pixel-pulse-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the annotated live frame and the zoomed forehead ROI.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateForehead(img image.Image)
	Reset()
}

type capturePreview struct {
	captureLabel      *LabelWidget
	foreheadLabel     *LabelWidget
	prevCapturePhoto  *Img
	prevForeheadPhoto *Img
}

const (
	maxPreviewW  = 640
	maxPreviewH  = 480
	maxForeheadW = 200
	maxForeheadH = 150
)

// NewCapturePreview creates the preview labels on row. The live frame spans
// columns 0-3, the forehead zoom sits in column 4.
func NewCapturePreview(row int) CapturePreview {
	v := &capturePreview{}
	v.captureLabel = Label(Borderwidth(1), Relief("sunken"))
	v.foreheadLabel = Label(Borderwidth(1), Relief("sunken"))
	Grid(v.captureLabel, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.foreheadLabel, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	v.Reset()
	return v
}

// replace swaps the label's photo and disposes the previous Tk image.
func replace(lbl *LabelWidget, prev **Img, img image.Image) {
	if lbl == nil || img == nil {
		return
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	if *prev != nil {
		(*prev).Delete()
	}
	*prev = photo
	lbl.Configure(Image(photo))
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	replace(v.captureLabel, &v.prevCapturePhoto, images.ScaleToFit(img, maxPreviewW, maxPreviewH))
}

func (v *capturePreview) UpdateForehead(img image.Image) {
	replace(v.foreheadLabel, &v.prevForeheadPhoto, images.ScaleToFit(img, maxForeheadW, maxForeheadH))
}

func (v *capturePreview) Reset() {
	replace(v.captureLabel, &v.prevCapturePhoto, image.NewRGBA(image.Rect(0, 0, 320, 240)))
	replace(v.foreheadLabel, &v.prevForeheadPhoto, image.NewRGBA(image.Rect(0, 0, 120, 60)))
}
