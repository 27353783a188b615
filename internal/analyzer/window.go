package analyzer

import (
	"time"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// slidingWindow accumulates time-ordered events and drops those older than
// the window span relative to the newest event. The backing slice grows and
// a head pointer advances instead of rebuilding the buffer each step.
type slidingWindow struct {
	span time.Duration
	evts []contracts.Event
	head int
}

func newSlidingWindow(spanSec float64) *slidingWindow {
	return &slidingWindow{span: time.Duration(spanSec * float64(time.Second))}
}

// add appends an event and evicts entries outside the window.
func (w *slidingWindow) add(e contracts.Event) {
	w.evts = append(w.evts, e)
	for w.head < len(w.evts)-1 && e.Time.Sub(w.evts[w.head].Time) > w.span {
		w.head++
	}
}

func (w *slidingWindow) size() int {
	return len(w.evts) - w.head
}

func (w *slidingWindow) first() contracts.Event {
	return w.evts[w.head]
}

// events returns the live window contents.
func (w *slidingWindow) events() []contracts.Event {
	return w.evts[w.head:]
}
