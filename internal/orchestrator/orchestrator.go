package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sadopc/pixelpomo/internal/board"
	"github.com/sadopc/pixelpomo/internal/sound"
	"github.com/sadopc/pixelpomo/internal/store"
	"github.com/sadopc/pixelpomo/internal/timer"
)

const eventBuffer = 64

// KV is the persistence the orchestrator needs.
type KV interface {
	store.Getter
	store.Setter
}

// Clearer is implemented by stores that can drop every namespaced key.
type Clearer interface {
	Clear() (int64, error)
}

type Config struct {
	Store  KV
	Sink   sound.Sink
	Logger *slog.Logger
	Clock  timer.Clock
}

// Orchestrator sequences the timer and the board in response to user
// intent, decides which prompt to show, persists state and emits sounds.
//
// Lock order is o.mu, then the timer engine, then the board. Engine
// callbacks run with the engine unlocked; only the completion callback
// takes o.mu.
type Orchestrator struct {
	mu sync.Mutex

	kv     KV
	sink   sound.Sink
	logger *slog.Logger
	clock  timer.Clock

	board *board.Board
	timer *timer.Engine

	focusPrompt bool

	events chan Event
}

// New loads persisted state from cfg.Store, falling back to defaults for
// anything missing or unusable.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	kv := cfg.Store
	if kv == nil {
		kv = NewMemoryKV()
	}

	o := &Orchestrator{
		kv:     kv,
		sink:   sound.Safe(cfg.Sink, logger),
		logger: logger,
		clock:  cfg.Clock,
		events: make(chan Event, eventBuffer),
	}

	o.load()
	return o
}

// Events delivers change notifications. Sends never block; a slow reader
// misses intermediate events but a Snapshot is always current.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Close cancels any scheduled tick.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timer.Close()
}

// Wipe drops every stored value and starts over from defaults. The store
// must implement Clearer for the wipe to reach disk.
func (o *Orchestrator) Wipe() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.timer.Close()
	var err error
	if c, ok := o.kv.(Clearer); ok {
		var n int64
		n, err = c.Clear()
		o.logger.Info("stored data wiped", "keys", n)
	}
	o.focusPrompt = false
	o.load()
	o.sink.Notify(sound.Delete)
	o.emit(Event{Kind: EventChanged})
	if err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	return nil
}

// load builds the board and timer from the store. Callers hold o.mu or
// own o exclusively.
func (o *Orchestrator) load() {
	tasks := load(o, KeyTasks, board.State{}, board.State.Validate)
	durations := load(o, KeyDurations, timer.DefaultDurations(), timer.Durations.Validate)
	sessions := load(o, KeySessionsCompleted, 0, validCount)
	history := load(o, KeySessions, timer.History(nil), timer.History.Validate)

	b := board.New(tasks)
	var e *timer.Engine
	e = timer.New(timer.Options{
		Durations:           durations,
		SessionsCompleted:   sessions,
		History:             history,
		Clock:               o.clock,
		Logger:              o.logger,
		HoldForConfirmation: b.HasFocus,
		OnChange:            func(timer.State) { o.emit(Event{Kind: EventChanged}) },
		OnComplete:          func(c timer.Completion) { o.handleCompletion(e, c) },
	})
	o.board, o.timer = b, e

	o.logger.Info("state loaded",
		"tasks", tasks.Len(),
		"sessions_completed", sessions,
		"history", len(history),
	)
}

// --- Timer intents ---

// Start starts the timer, unless this is a WORK interval with open tasks
// and nothing focused, in which case the focus prompt is raised instead.
func (o *Orchestrator) Start() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.timer.State()
	if st.Running || st.AwaitingConfirmation {
		return false
	}
	if st.Mode == timer.Work && o.board.Available() > 0 && !o.board.HasFocus() {
		o.focusPrompt = true
		o.emit(Event{Kind: EventChanged})
		return false
	}
	return o.startLocked()
}

// StartAnyway clears the focus prompt and starts without a focused task.
func (o *Orchestrator) StartAnyway() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.focusPrompt = false
	return o.startLocked()
}

// CancelFocusPrompt closes the focus prompt without starting.
func (o *Orchestrator) CancelFocusPrompt() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.focusPrompt {
		o.focusPrompt = false
		o.sink.Notify(sound.Click)
		o.emit(Event{Kind: EventChanged})
	}
}

func (o *Orchestrator) Pause() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Click)
	return o.timer.Pause()
}

// Reset refills the active mode. It is refused while the completion prompt
// is open.
func (o *Orchestrator) Reset() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.timer.Reset() {
		return false
	}
	o.sink.Notify(sound.Click)
	return true
}

func (o *Orchestrator) SwitchMode(m timer.Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.focusPrompt = false
	o.sink.Notify(sound.Click)
	o.timer.SwitchMode(m)
}

// AdjustDuration nudges the minutes of m while the timer is idle and no
// completion prompt is open.
func (o *Orchestrator) AdjustDuration(m timer.Mode, delta int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.timer.AdjustDuration(m, delta) {
		return false
	}
	o.sink.Notify(sound.Click)
	o.save(KeyDurations, o.timer.State().Durations)
	return true
}

// AcceptTransition moves to the offered mode and starts it.
func (o *Orchestrator) AcceptTransition() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.timer.AcceptTransition() {
		return false
	}
	o.sink.Notify(sound.Start)
	return true
}

// DismissTransition moves to the offered mode without starting it.
func (o *Orchestrator) DismissTransition() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.timer.DismissTransition() {
		return false
	}
	o.sink.Notify(sound.Click)
	return true
}

// ResolveCompletion answers the completion prompt. done moves the focused
// task to Done; either way the timer switches to the next mode.
func (o *Orchestrator) ResolveCompletion(done bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.timer.State().AwaitingConfirmation {
		return false
	}
	if done {
		o.sink.Notify(sound.Celebration)
		if o.board.CompleteFocusedTask() {
			o.saveBoard()
		}
	} else {
		o.sink.Notify(sound.Click)
	}
	o.timer.SwitchMode(o.timer.DetermineNextMode())
	return true
}

// --- Board intents ---

// FocusTask toggles focus. Picking a task while the focus prompt is open
// closes it and starts the timer.
func (o *Orchestrator) FocusTask(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Click)
	o.board.FocusTask(id)
	if o.focusPrompt {
		if f, ok := o.board.FocusedID(); ok && f == id {
			o.focusPrompt = false
			o.startLocked()
			return
		}
	}
	o.emit(Event{Kind: EventChanged})
}

func (o *Orchestrator) AddTask(text string) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id, ok := o.board.AddTask(text)
	if !ok {
		return 0, false
	}
	o.sink.Notify(sound.Click)
	o.saveBoard()
	return id, true
}

func (o *Orchestrator) DeleteTask(c board.Column, id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Delete)
	return o.boardChanged(o.board.DeleteTask(c, id))
}

func (o *Orchestrator) MoveTask(from, to board.Column, id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Click)
	return o.boardChanged(o.board.MoveTask(from, to, id))
}

// StepTask moves a task one column forward or back.
func (o *Orchestrator) StepTask(c board.Column, id int, forward bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Click)
	return o.boardChanged(o.board.StepTask(c, id, forward))
}

func (o *Orchestrator) QuickComplete(id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Notify(sound.Click)
	return o.boardChanged(o.board.QuickComplete(id))
}

func (o *Orchestrator) DragStart(c board.Column, id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.board.DragStart(c, id)
	o.emit(Event{Kind: EventChanged})
}

func (o *Orchestrator) DragOver(c board.Column) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.board.DragOver(c)
	o.emit(Event{Kind: EventChanged})
}

func (o *Orchestrator) DragLeave() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.board.DragLeave()
	o.emit(Event{Kind: EventChanged})
}

func (o *Orchestrator) DragEnd() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.board.DragEnd()
	o.emit(Event{Kind: EventChanged})
}

func (o *Orchestrator) Drop(target board.Column) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	moved := o.board.Drop(target)
	if moved {
		o.sink.Notify(sound.Click)
	}
	return o.boardChanged(moved)
}

// --- Reads ---

// Prompt returns the question currently waiting for the user. A held WORK
// completion wins over the focus prompt, which wins over a pending
// transition.
func (o *Orchestrator) Prompt() Prompt {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.promptLocked(o.timer.State())
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.timer.State()
	snap := Snapshot{
		Timer:     st,
		Prompt:    o.promptLocked(st),
		Board:     o.board.Snapshot(),
		QuestLog:  o.board.QuestLog(),
		DoneTasks: o.board.DoneTasks(),
		DoneTotal: o.board.DoneTotal(),
		AllTotal:  o.board.AllTotal(),
		Drag:      o.board.Drag(),
		Stats:     o.statsLocked(),
	}
	if t, ok := o.board.FocusedTask(); ok {
		snap.Focused = &t
	}
	return snap
}

// History returns a copy of the session history.
func (o *Orchestrator) History() timer.History {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.timer.History()
}

func (o *Orchestrator) promptLocked(st timer.State) Prompt {
	switch {
	case st.AwaitingConfirmation:
		return PromptCompletion
	case o.focusPrompt:
		return PromptFocus
	case st.Pending != nil:
		return PromptTransition
	}
	return PromptNone
}

func (o *Orchestrator) statsLocked() Stats {
	h := o.timer.History()
	now := o.timer.Now()
	return Stats{
		TodayCount:    h.TodayCount(now),
		TodayMinutes:  h.TodayMinutes(now),
		Streak:        h.Streak(now),
		TotalSessions: h.TotalSessions(),
		TotalMinutes:  h.TotalMinutes(),
		Last7Days:     h.Last7Days(now),
		Recent:        h.Recent(20),
	}
}

// --- internals ---

func (o *Orchestrator) startLocked() bool {
	if !o.timer.Start() {
		o.emit(Event{Kind: EventChanged})
		return false
	}
	o.sink.Notify(sound.Start)
	return true
}

// handleCompletion runs on the ticking goroutine after e has released its
// lock. Completions from an engine replaced by Wipe are dropped so stale
// history never reaches the store.
func (o *Orchestrator) handleCompletion(e *timer.Engine, c timer.Completion) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e != o.timer {
		o.logger.Debug("dropping completion from a replaced timer", "mode", c.Mode)
		return
	}
	if c.Session != nil {
		o.save(KeySessionsCompleted, c.State.SessionsCompleted)
		o.save(KeySessions, e.History())
	}
	o.sink.Notify(sound.Complete)
	o.emit(Event{Kind: EventCompleted, Completion: &c})
}

func (o *Orchestrator) boardChanged(changed bool) bool {
	if changed {
		o.saveBoard()
	} else {
		o.emit(Event{Kind: EventChanged})
	}
	return changed
}

func (o *Orchestrator) saveBoard() {
	o.save(KeyTasks, o.board.Snapshot())
	o.emit(Event{Kind: EventChanged})
}

// save persists v. Failures are logged and otherwise ignored; in-memory
// state stays authoritative.
func (o *Orchestrator) save(key string, v any) {
	if err := store.SaveJSON(o.kv, key, v); err != nil {
		o.logger.Error("persist failed", "key", key, "error", err)
	}
}

func (o *Orchestrator) emit(e Event) {
	select {
	case o.events <- e:
	default:
	}
}

func load[T any](o *Orchestrator, key string, def T, validate func(T) error) T {
	v, err := store.LoadJSON(o.kv, key, def, validate)
	if err != nil {
		var ce *store.CorruptError
		if errors.As(err, &ce) {
			o.logger.Warn("discarding stored value", "key", key, "reason", ce.Reason)
		} else {
			o.logger.Error("load failed", "key", key, "error", err)
		}
	}
	return v
}

func validCount(n int) error {
	if n < 0 {
		return errors.New("negative count")
	}
	return nil
}
