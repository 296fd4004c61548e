package model

import (
	"image"
	"time"
)

// FaceModel holds the latest face and forehead boxes in frame coordinates.
// Zero value means no face and is usable. Updates occur on the UI tick only.
type FaceModel struct {
	face     image.Rectangle
	forehead image.Rectangle
	lastSeen time.Time
	present  bool
}

func NewFaceModel() *FaceModel { return &FaceModel{} }

// SetFace records a located face at now. Empty rectangles clear the model.
func (m *FaceModel) SetFace(face, forehead image.Rectangle, now time.Time) {
	if m == nil {
		return
	}
	if face.Empty() {
		m.Clear()
		return
	}
	m.face, m.forehead = face, forehead
	m.lastSeen = now
	m.present = true
}

// Clear marks the face as absent; the last-seen time is kept.
func (m *FaceModel) Clear() {
	if m == nil {
		return
	}
	m.face, m.forehead = image.Rectangle{}, image.Rectangle{}
	m.present = false
}

// Boxes returns the current face and forehead rectangles (may be empty).
func (m *FaceModel) Boxes() (face, forehead image.Rectangle) {
	if m == nil {
		return image.Rectangle{}, image.Rectangle{}
	}
	return m.face, m.forehead
}

// Present reports whether a face is currently tracked.
func (m *FaceModel) Present() bool { return m != nil && m.present }

// LastSeen returns when a face was last located.
func (m *FaceModel) LastSeen() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.lastSeen
}
