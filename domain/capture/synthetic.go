package capture

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"time"
)

// skin reflectance and the per-channel pulse amplitude in 8-bit units
var (
	syntheticSkin       = [3]float64{196, 148, 122}
	syntheticAmplitude  = [3]float64{0.55, 1.2, 0.9}
	syntheticBackground = color.RGBA{R: 48, G: 56, B: 64, A: 255}
)

// SyntheticGrabber renders a skin-toned face whose colour pulses at a fixed
// heart rate. Frames are paced to fps in real time so sample timestamps are
// realistic.
type SyntheticGrabber struct {
	width, height int
	bpm, fps      float64
	noise         float64
	face          image.Rectangle
	rng           *rand.Rand
	start         time.Time
	frames        int
	open          bool
	sleep         func(time.Duration)
}

// NewSyntheticGrabber returns a grabber producing width x height frames at
// fps with a pulse of bpm beats per minute.
func NewSyntheticGrabber(width, height int, bpm, fps float64) *SyntheticGrabber {
	if width < 64 {
		width = 64
	}
	if height < 64 {
		height = 64
	}
	if fps <= 0 {
		fps = 30
	}
	fw, fh := width*2/5, height*3/5
	x0, y0 := (width-fw)/2, (height-fh)/3
	return &SyntheticGrabber{
		width: width, height: height,
		bpm: bpm, fps: fps,
		noise: 2.0,
		face:  image.Rect(x0, y0, x0+fw, y0+fh),
		sleep: time.Sleep,
	}
}

// FaceRect is where the rendered face sits in every frame.
func (g *SyntheticGrabber) FaceRect() image.Rectangle { return g.face }

func (g *SyntheticGrabber) Open() error {
	g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	g.start = time.Now()
	g.frames = 0
	g.open = true
	return nil
}

func (g *SyntheticGrabber) Grab() (*image.RGBA, error) {
	if !g.open {
		return nil, ErrNotOpen
	}
	due := g.start.Add(time.Duration(float64(g.frames) / g.fps * float64(time.Second)))
	if wait := time.Until(due); wait > 0 {
		g.sleep(wait)
	}
	ts := float64(g.frames) / g.fps
	g.frames++
	return g.render(ts), nil
}

// render draws the frame at ts seconds into the session.
func (g *SyntheticGrabber) render(ts float64) *image.RGBA {
	img := acquireFrame(image.Rect(0, 0, g.width, g.height))
	pulse := math.Sin(2 * math.Pi * g.bpm / 60 * ts)
	var skin [3]float64
	for c := range skin {
		skin[c] = syntheticSkin[c] + syntheticAmplitude[c]*pulse
	}
	cx := float64(g.face.Min.X+g.face.Max.X) / 2
	cy := float64(g.face.Min.Y+g.face.Max.Y) / 2
	rx := float64(g.face.Dx()) / 2
	ry := float64(g.face.Dy()) / 2
	for y := 0; y < g.height; y++ {
		row := img.Pix[y*img.Stride:]
		dy := (float64(y) + 0.5 - cy) / ry
		for x := 0; x < g.width; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			o := x * 4
			if dx*dx+dy*dy > 1 {
				row[o], row[o+1], row[o+2], row[o+3] = syntheticBackground.R, syntheticBackground.G, syntheticBackground.B, 0xFF
				continue
			}
			for c := 0; c < 3; c++ {
				row[o+c] = clamp8(skin[c] + g.noise*g.rng.NormFloat64())
			}
			row[o+3] = 0xFF
		}
	}
	return img
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (g *SyntheticGrabber) Close() error {
	g.open = false
	return nil
}
