package practice

import "practice-engine/internal/domain"

// TimerState is the state of the session clock.
type TimerState int

const (
	Running TimerState = iota
	Paused
	Stopped
)

func (s TimerState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON views.
func (s TimerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Timer counts elapsed seconds. All methods return a new value; the receiver is never modified.
type Timer struct {
	State   TimerState `json:"state"`
	Elapsed int        `json:"elapsed_seconds"`
	// Limit stops the clock once Elapsed reaches it. Zero means untimed.
	Limit int `json:"limit_seconds,omitempty"`
}

// NewTimer returns a running timer with the given limit in seconds.
func NewTimer(limit int) Timer {
	if limit < 0 {
		limit = 0
	}
	return Timer{State: Running, Limit: limit}
}

// Tick advances the clock by delta seconds. Ticks outside Running are dropped,
// so time that passes while paused is never counted later.
func (t Timer) Tick(delta int) Timer {
	if t.State != Running || delta <= 0 {
		return t
	}
	t.Elapsed += delta
	if t.Limit > 0 && t.Elapsed >= t.Limit {
		t.Elapsed = t.Limit
		t.State = Stopped
	}
	return t
}

func (t Timer) Pause() (Timer, error) {
	if t.State != Running {
		return t, domain.NewInvalidTransitionError(t.State.String(), "pause")
	}
	t.State = Paused
	return t, nil
}

func (t Timer) Resume() (Timer, error) {
	if t.State != Paused {
		return t, domain.NewInvalidTransitionError(t.State.String(), "resume")
	}
	t.State = Running
	return t, nil
}

// Stop is terminal. Stopping a stopped timer is a no-op.
func (t Timer) Stop() Timer {
	t.State = Stopped
	return t
}

// Expired reports whether a timed session ran out of time.
func (t Timer) Expired() bool {
	return t.Limit > 0 && t.Elapsed >= t.Limit
}

// Remaining returns the seconds left for a timed session, or -1 when untimed.
func (t Timer) Remaining() int {
	if t.Limit == 0 {
		return -1
	}
	return t.Limit - t.Elapsed
}
