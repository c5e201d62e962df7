package authclient

import (
	"fmt"
	"sync"
	"time"
)

// TimerState is the resend countdown state
type TimerState int

const (
	// TimerIdle means no OTP has been sent in this form
	TimerIdle TimerState = iota
	// TimerPending means the countdown is running and resend is hidden
	TimerPending
	// TimerSent means an OTP was sent and resend is available again
	TimerSent
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "IDLE"
	case TimerPending:
		return "PENDING"
	case TimerSent:
		return "SENT"
	default:
		return fmt.Sprintf("TimerState(%d)", int(s))
	}
}

// ResendTimer counts down the seconds until an OTP may be resent. At most
// one ticking goroutine is alive per timer; it exits on Stop, on a restart
// and when the countdown reaches zero.
type ResendTimer struct {
	interval time.Duration
	onChange func(state TimerState, secondsLeft int)

	mu          sync.Mutex
	state       TimerState
	secondsLeft int
	stop        chan struct{}
	wg          sync.WaitGroup
}

// NewResendTimer creates an idle timer that decrements once per interval.
// onChange, if set, is called after every transition and tick outside the
// timer's lock.
func NewResendTimer(interval time.Duration, onChange func(state TimerState, secondsLeft int)) *ResendTimer {
	if interval <= 0 {
		interval = time.Second
	}
	return &ResendTimer{
		interval: interval,
		onChange: onChange,
	}
}

// Start (re)starts the countdown from seconds, cancelling any running one
func (t *ResendTimer) Start(seconds int) {
	t.mu.Lock()
	t.stopLocked()

	if seconds <= 0 {
		t.state, t.secondsLeft = TimerSent, 0
		t.mu.Unlock()
		t.notify(TimerSent, 0)
		return
	}

	t.state, t.secondsLeft = TimerPending, seconds
	stop := make(chan struct{})
	t.stop = stop
	t.wg.Add(1)
	go t.run(stop)
	t.mu.Unlock()

	t.notify(TimerPending, seconds)
}

// Stop cancels the countdown and returns the timer to Idle
func (t *ResendTimer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	changed := t.state != TimerIdle
	t.state, t.secondsLeft = TimerIdle, 0
	t.mu.Unlock()

	if changed {
		t.notify(TimerIdle, 0)
	}
}

// Wait blocks until the ticking goroutine, if any, has exited
func (t *ResendTimer) Wait() {
	t.wg.Wait()
}

// State returns the current state and the seconds left while pending
func (t *ResendTimer) State() (TimerState, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.secondsLeft
}

// SecondsLeft returns the remaining countdown, 0 unless pending
func (t *ResendTimer) SecondsLeft() int {
	_, left := t.State()
	return left
}

// ResendAllowed reports whether the countdown is not running
func (t *ResendTimer) ResendAllowed() bool {
	state, _ := t.State()
	return state != TimerPending
}

func (t *ResendTimer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *ResendTimer) run(stop chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		select {
		case <-stop:
			// cancelled while waiting for the lock
			t.mu.Unlock()
			return
		default:
		}

		t.secondsLeft--
		if t.secondsLeft <= 0 {
			t.state, t.secondsLeft = TimerSent, 0
			t.stop = nil
			t.mu.Unlock()
			t.notify(TimerSent, 0)
			return
		}
		left := t.secondsLeft
		t.mu.Unlock()

		t.notify(TimerPending, left)
	}
}

func (t *ResendTimer) notify(state TimerState, secondsLeft int) {
	if t.onChange != nil {
		t.onChange(state, secondsLeft)
	}
}
