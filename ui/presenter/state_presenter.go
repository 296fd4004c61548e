package presenter

import (
	"sync"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/session"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives session transitions from the session goroutine and
// reflects the newest one in the view on the next tick.
type StatePresenter struct {
	eng  session.StateSource
	view StateView

	mu      sync.Mutex
	pending []session.State
	latest  session.State // last reflected state
	shown   bool
}

func NewStatePresenter(eng session.StateSource, view StateView) *StatePresenter {
	return &StatePresenter{eng: eng, view: view}
}

// OnState queues a transitioned state. Safe to call from any goroutine.
func (p *StatePresenter) OnState(prev, next session.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick flushes queued states and updates the view with the most recent one.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.eng == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		if !p.shown {
			p.show(p.eng.Current())
		}
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if !p.shown || last != p.latest {
		p.show(last)
	}
}

func (p *StatePresenter) show(s session.State) {
	p.latest = s
	p.shown = true
	p.view.SetStateLabel("State: " + s.String())
}
