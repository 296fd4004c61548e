// Package console renders measurement progress as plain text for headless
// runs. It does not depend on Tk.
package console

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/session"
)

// View prints state changes, the countdown and the final summary. Methods
// are safe for concurrent use.
type View struct {
	mu       sync.Mutex
	w        io.Writer
	duration time.Duration
	lastSec  int
	state    string
	finished chan session.Result
}

// New returns a console view writing to w. duration is announced when a
// measurement starts.
func New(w io.Writer, duration time.Duration) *View {
	return &View{w: w, duration: duration, lastSec: -1, finished: make(chan session.Result, 1)}
}

// Finished delivers each shown result. Holds one result; older unread
// results are replaced.
func (v *View) Finished() <-chan session.Result { return v.finished }

func (v *View) SetStateLabel(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s == v.state {
		return
	}
	v.state = s
	if s == "State: "+session.StateWaiting.String() {
		fmt.Fprintf(v.w, "Starting %d-second measurement...\n", int(v.duration/time.Second))
		fmt.Fprintln(v.w, "Please keep your face still in front of the camera")
		v.lastSec = -1
		return
	}
	fmt.Fprintln(v.w, s)
}

// SetSession is a no-op; uptime is only shown in the window.
func (v *View) SetSession(session, total time.Duration) {}

// SetMeasurement prints the countdown once per whole second.
func (v *View) SetMeasurement(remaining time.Duration, samples int, fps float64) {
	if remaining <= 0 {
		return
	}
	sec := int((remaining + time.Second - 1) / time.Second)
	v.mu.Lock()
	defer v.mu.Unlock()
	if sec == v.lastSec {
		return
	}
	v.lastSec = sec
	fmt.Fprintf(v.w, "Measuring: %ds (%d samples, %.1f fps)\n", sec, samples, fps)
}

func (v *View) ShowResults(res session.Result, lines []string, _ image.Image) {
	v.mu.Lock()
	if res.OK() {
		fmt.Fprintln(v.w)
		fmt.Fprintln(v.w, "=== MEASUREMENT COMPLETE ===")
	}
	for _, l := range lines {
		fmt.Fprintln(v.w, l)
	}
	v.mu.Unlock()
	select {
	case v.finished <- res:
	default:
		select {
		case <-v.finished:
		default:
		}
		v.finished <- res
	}
}

// Error prints a user-facing error line.
func (v *View) Error(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.w, "Error:", msg)
}
