package timer

import (
	"log/slog"
	"sync"
	"time"
)

// LongBreakInterval is the number of work sessions between long breaks.
const LongBreakInterval = 4

const tickInterval = time.Second

// State is a consistent snapshot of the engine.
type State struct {
	Mode              Mode
	TimeLeft          int // seconds
	Running           bool
	SessionsCompleted int
	Durations         Durations

	// Pending is the mode the user is being asked to move to, or nil.
	Pending *Mode
	// AwaitingConfirmation is set while a finished WORK interval is held
	// for the completion prompt.
	AwaitingConfirmation bool
}

// Full returns the full countdown length of the active mode.
func (s State) Full() int {
	return s.Durations.Seconds(s.Mode)
}

// Progress returns the elapsed share of the active interval in percent.
func (s State) Progress() float64 {
	total := s.Full()
	if total == 0 {
		return 0
	}
	return float64(total-s.TimeLeft) / float64(total) * 100
}

// Completion describes an interval that just reached zero.
type Completion struct {
	Mode    Mode
	Session *Session // set for WORK intervals
	Next    Mode
	// Held is true when the transition was deferred for the completion prompt.
	Held  bool
	State State
}

// Options configures a new Engine. Zero values fall back to defaults.
type Options struct {
	Durations         Durations
	SessionsCompleted int
	History           History
	Clock             Clock
	Logger            *slog.Logger

	// HoldForConfirmation is asked when a WORK interval completes. Returning
	// true keeps the engine from exposing a pending transition. It is called
	// with the engine lock held and must not call back into the engine.
	HoldForConfirmation func() bool

	// OnChange and OnComplete run after the engine lock is released.
	OnChange   func(State)
	OnComplete func(Completion)
}

// Engine is the work/break countdown state machine.
type Engine struct {
	mu sync.Mutex

	clock  Clock
	logger *slog.Logger

	durations Durations
	mode      Mode
	timeLeft  int
	running   bool
	sessions  int
	history   History
	pending   *Mode
	awaiting  bool
	// workCounted is set once the current WORK interval has been added to
	// sessions, so the next-mode rule does not count it twice.
	workCounted bool

	// tick is the single outstanding scheduled callback, nil when disarmed.
	tick Stopper
	gen  uint64

	hold       func() bool
	onChange   func(State)
	onComplete func(Completion)
}

func New(opts Options) *Engine {
	d := opts.Durations
	if err := d.Validate(); err != nil {
		d = DefaultDurations()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sessions := opts.SessionsCompleted
	if sessions < 0 {
		sessions = 0
	}

	e := &Engine{
		clock:      clock,
		logger:     logger,
		durations:  d,
		mode:       Work,
		sessions:   sessions,
		history:    append(History(nil), opts.History...),
		hold:       opts.HoldForConfirmation,
		onChange:   opts.OnChange,
		onComplete: opts.OnComplete,
	}
	e.timeLeft = d.Seconds(Work)
	return e
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// History returns a copy of the session history.
func (e *Engine) History() History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(History(nil), e.history...)
}

func (e *Engine) Now() time.Time { return e.clock.Now() }

// Start begins counting down. It is a no-op when already running, when
// the countdown is exhausted, or while a completion awaits confirmation.
func (e *Engine) Start() bool {
	e.mu.Lock()
	if e.running || e.awaiting || e.timeLeft <= 0 {
		e.mu.Unlock()
		return false
	}
	e.running = true
	e.arm()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.logger.Debug("timer started", "mode", snap.Mode, "time_left", snap.TimeLeft)
	e.emit(snap, nil)
	return true
}

// Pause stops the countdown, keeping the partial time.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}
	e.running = false
	e.disarm()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.logger.Debug("timer paused", "mode", snap.Mode, "time_left", snap.TimeLeft)
	e.emit(snap, nil)
	return true
}

// Reset stops the countdown and refills the active mode. A finished interval
// awaiting confirmation is left alone until the prompt is answered.
func (e *Engine) Reset() bool {
	e.mu.Lock()
	if e.awaiting {
		e.mu.Unlock()
		return false
	}
	e.running = false
	e.disarm()
	e.refill()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, nil)
	return true
}

// Tick advances the countdown by one second. The scheduler calls it once per
// elapsed second; calling it while idle does nothing.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	c := e.tickLocked()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, c)
}

// SwitchMode stops the timer and loads the full duration of m, dropping any
// pending transition.
func (e *Engine) SwitchMode(m Mode) {
	e.mu.Lock()
	e.switchLocked(m)
	snap := e.stateLocked()
	e.mu.Unlock()

	e.logger.Debug("mode switched", "mode", m)
	e.emit(snap, nil)
}

// AcceptTransition switches to the pending mode and starts it.
func (e *Engine) AcceptTransition() bool {
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return false
	}
	e.switchLocked(*e.pending)
	e.running = true
	e.arm()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, nil)
	return true
}

// DismissTransition switches to the pending mode without starting it.
func (e *Engine) DismissTransition() bool {
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return false
	}
	e.switchLocked(*e.pending)
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, nil)
	return true
}

// AdjustDuration changes the minutes of m by delta while idle. Adjusting the
// active mode refills the countdown, discarding any paused partial time.
// Durations are locked while a completion awaits confirmation.
func (e *Engine) AdjustDuration(m Mode, delta int) bool {
	e.mu.Lock()
	if e.running || e.awaiting {
		e.mu.Unlock()
		return false
	}
	e.durations = e.durations.With(m, e.durations.Minutes(m)+delta)
	if m == e.mode {
		e.refill()
	}
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, nil)
	return true
}

// DetermineNextMode returns the mode that follows the current interval.
func (e *Engine) DetermineNextMode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextModeLocked()
}

// Close cancels any scheduled tick without emitting events.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.disarm()
}

func (e *Engine) stateLocked() State {
	s := State{
		Mode:                 e.mode,
		TimeLeft:             e.timeLeft,
		Running:              e.running,
		SessionsCompleted:    e.sessions,
		Durations:            e.durations,
		AwaitingConfirmation: e.awaiting,
	}
	if e.pending != nil {
		p := *e.pending
		s.Pending = &p
	}
	return s
}

func (e *Engine) refill() {
	e.timeLeft = e.durations.Seconds(e.mode)
	e.workCounted = false
}

func (e *Engine) switchLocked(m Mode) {
	e.running = false
	e.disarm()
	e.mode = m
	e.refill()
	e.pending = nil
	e.awaiting = false
}

func (e *Engine) nextModeLocked() Mode {
	if e.mode != Work {
		return Work
	}
	n := e.sessions
	if !e.workCounted {
		n++
	}
	if n%LongBreakInterval == 0 {
		return LongBreak
	}
	return ShortBreak
}

// tickLocked decrements the countdown. Reaching zero stops the timer and
// completes the interval in the same critical section.
func (e *Engine) tickLocked() *Completion {
	e.timeLeft--
	if e.timeLeft > 0 {
		e.arm()
		return nil
	}
	e.timeLeft = 0
	e.running = false
	e.disarm()
	return e.completeLocked()
}

func (e *Engine) completeLocked() *Completion {
	c := &Completion{Mode: e.mode}
	if e.mode == Work {
		now := e.clock.Now()
		s := Session{Date: Day(now), Timestamp: now, DurationMinutes: e.durations.Work}
		e.sessions++
		e.history = append(e.history, s)
		e.workCounted = true
		c.Session = &s

		if e.hold != nil && e.hold() {
			e.awaiting = true
			c.Held = true
			c.Next = e.nextModeLocked()
			c.State = e.stateLocked()
			return c
		}
	}
	next := e.nextModeLocked()
	e.pending = &next
	c.Next = next
	c.State = e.stateLocked()
	return c
}

// arm schedules the next tick unless one is already outstanding.
func (e *Engine) arm() {
	if e.tick != nil {
		return
	}
	gen := e.gen
	e.tick = e.clock.AfterFunc(tickInterval, func() { e.fire(gen) })
}

// disarm cancels the outstanding tick. Bumping gen makes a callback that
// already started running a no-op.
func (e *Engine) disarm() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	e.gen++
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.running {
		e.mu.Unlock()
		return
	}
	e.tick = nil
	c := e.tickLocked()
	snap := e.stateLocked()
	e.mu.Unlock()

	e.emit(snap, c)
}

func (e *Engine) emit(s State, c *Completion) {
	if e.onChange != nil {
		e.onChange(s)
	}
	if c != nil {
		e.logger.Info("interval completed", "mode", c.Mode, "next", c.Next, "held", c.Held)
		if e.onComplete != nil {
			e.onComplete(*c)
		}
	}
}
