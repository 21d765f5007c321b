package player

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/teslashibe/go-panorama/pkg/events"
)

// hideRetryDelay is how long a timeout waits before posting again when the
// loop queue is full.
const hideRetryDelay = 100 * time.Millisecond

// autoHide owns the single pending hide callback. The callback does not
// touch synchronizer state; it posts a HideTimeout tagged with the
// generation that scheduled it, and only the newest generation counts.
type autoHide struct {
	clock  clockwork.Clock
	delay  time.Duration
	post   Poster
	logger *slog.Logger

	timer   clockwork.Timer
	gen     uint64
	pending bool

	// live is the generation timer goroutines may still post, 0 when none.
	live atomic.Uint64
}

// reset cancels any pending hide and schedules a new one.
func (a *autoHide) reset() {
	a.stop()
	a.gen++
	gen := a.gen
	a.pending = true
	a.live.Store(gen)
	a.timer = a.clock.AfterFunc(a.delay, func() { a.deliver(gen) })
}

// deliver posts the timeout for gen from a timer goroutine. A full queue
// is retried after hideRetryDelay until the generation is superseded,
// stopped, or the loop closes.
func (a *autoHide) deliver(gen uint64) {
	if a.live.Load() != gen {
		return
	}
	err := a.post.Post(events.Event{Type: events.HideTimeout, Gen: gen})
	switch {
	case err == nil:
	case errors.Is(err, events.ErrLoopFull):
		a.logger.Debug("auto-hide deferred, queue full", "gen", gen)
		a.clock.AfterFunc(hideRetryDelay, func() { a.deliver(gen) })
	default:
		a.logger.Warn("auto-hide post failed", "gen", gen, "error", err)
	}
}

// stop cancels the pending hide, if any.
func (a *autoHide) stop() {
	a.live.Store(0)
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
}

// fire consumes a HideTimeout and reports whether it is the live one.
func (a *autoHide) fire(gen uint64) bool {
	if !a.pending || gen != a.gen {
		return false
	}
	a.pending = false
	a.timer = nil
	a.live.Store(0)
	return true
}
