package game

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until fn returns false or the returned
// stop func is called. stop must not wait for an in-flight fn.
type Scheduler interface {
	Every(interval time.Duration, fn func() bool) (stop func())
}

// TickerScheduler backs each schedule with its own time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func() bool) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if !fn() {
					stop()
					return
				}
			}
		}
	}()
	return stop
}

// startCountdown schedules the per-second tick for the current round.
// Callers hold r.mu.
func (c *Controller) startCountdown(r *Room) {
	gameID := r.gameID
	r.stopTimer = c.sched.Every(time.Second, func() bool {
		return c.tick(r, gameID)
	})
}

// tick advances the countdown of r by one second. It returns false once the
// schedule should stop: the room is gone, the round changed or the clock ran
// out.
func (c *Controller) tick(r *Room, gameID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.phase != PhasePlaying || r.gameID != gameID {
		return false
	}
	if cur, err := c.rooms.Get(r.Code); err != nil || cur != r {
		return false
	}

	r.timer--
	c.broadcast(r, EventTimerUpdate, r.timer)
	if r.timer > 0 {
		return true
	}

	r.stopTimer = nil
	r.phase = PhaseVoting
	c.log.Info().Str("code", r.Code).Str("game", gameID).Msg("countdown expired, voting")
	c.emitState(r)
	return false
}
