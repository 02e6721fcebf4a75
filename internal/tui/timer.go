package tui

import (
	"time"

	"github.com/sadopc/timetracker/internal/stats"
)

// timerState tracks the current state of the stopwatch.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel is the stopwatch logic, separate from display. Nothing is
// persisted until it stops.
type timerModel struct {
	clock stats.Clock

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(clock stats.Clock) timerModel {
	return timerModel{
		clock:        clock,
		state:        timerStopped,
		lastActivity: clock.Now(),
		idleTimeout:  5 * time.Minute,
	}
}

func (t *timerModel) start() {
	if t.state != timerStopped {
		return
	}
	now := t.clock.Now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.lastActivity = now
	t.isIdle = false
}

// stop halts the stopwatch and returns the tracked time.
func (t *timerModel) stop() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	d := t.currentElapsed()
	t.state = timerStopped
	t.elapsed = 0
	t.isIdle = false
	return d
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.clock.Now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	now := t.clock.Now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state != timerRunning {
		return
	}
	now := t.clock.Now()
	t.elapsed = now.Sub(t.startTime) - t.pauseGap
	if now.Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		t.pause()
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.clock.Now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	now := t.clock.Now()
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return now.Sub(t.startTime) - t.pauseGap - now.Sub(t.pausedAt)
	}
	return now.Sub(t.startTime) - t.pauseGap
}

// loggedMinutes is the whole number of minutes a stop records.
func loggedMinutes(d time.Duration) float64 {
	return float64(int64(d / time.Minute))
}
