package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows capture uptime and measurement progress.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetMeasurement(remaining time.Duration, samples int, fps float64)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	measureLbl *LabelWidget
}

// NewSessionStats creates the uptime labels at (row, startCol) and
// (row, startCol+1) and the measurement line spanning both on row+1.
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), measureLbl: Label(Width(30), Anchor("w"))}
	place := func(w *LabelWidget, r, c, span int) {
		if parent != nil {
			Grid(w, In(parent), Row(r), Column(c), Columnspan(span), Sticky("w"), Padx("0.2m"))
			return
		}
		Grid(w, Row(r), Column(c), Columnspan(span), Sticky("w"), Padx("0.2m"))
	}
	place(s.sessionLbl, row, startCol, 1)
	place(s.totalLbl, row, startCol+1, 1)
	place(s.measureLbl, row+1, startCol, 2)
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.measureLbl.Configure(Txt("Remaining: --"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the current capture run duration.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

// SetTotal updates the accumulated capture duration.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

func (s *sessionStats) SetMeasurement(remaining time.Duration, samples int, fps float64) {
	if s == nil || s.measureLbl == nil {
		return
	}
	left := "--"
	if remaining > 0 {
		left = fmt.Sprintf("%ds", int((remaining+time.Second-1)/time.Second))
	}
	s.measureLbl.Configure(Txt(fmt.Sprintf("Remaining: %s  Samples: %d  %.1f fps", left, samples, fps)))
}
