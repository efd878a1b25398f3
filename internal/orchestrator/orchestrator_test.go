package orchestrator

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/pixelpomo/internal/board"
	"github.com/sadopc/pixelpomo/internal/sound"
	"github.com/sadopc/pixelpomo/internal/store"
	"github.com/sadopc/pixelpomo/internal/timer"
)

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

// --- fakes ---

type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	f       func()
	stopped bool
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) timer.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) advance(n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		c.now = c.now.Add(time.Second)
		due := c.pending
		c.pending = nil
		c.mu.Unlock()

		for _, t := range due {
			c.mu.Lock()
			live := !t.stopped
			t.stopped = true
			c.mu.Unlock()
			if live {
				t.f()
			}
		}
	}
}

type recorder struct {
	mu    sync.Mutex
	kinds []sound.Kind
}

func (r *recorder) Notify(k sound.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, k)
}

func (r *recorder) count(k sound.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.kinds {
		if got == k {
			n++
		}
	}
	return n
}

type brokenKV struct{}

func (brokenKV) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenKV) Set(string, string) error         { return errors.New("disk gone") }

type fixture struct {
	o     *Orchestrator
	clock *manualClock
	sink  *recorder
	kv    KV
}

func newFixture(t *testing.T, kv KV) *fixture {
	t.Helper()
	if kv == nil {
		kv = NewMemoryKV()
	}
	// One-minute intervals keep completion tests short.
	if err := store.SaveJSON(kv, KeyDurations, timer.Durations{Work: 1, ShortBreak: 1, LongBreak: 2}); err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		clock: &manualClock{now: testNow},
		sink:  &recorder{},
		kv:    kv,
	}
	f.o = New(Config{Store: kv, Sink: f.sink, Clock: f.clock})
	t.Cleanup(f.o.Close)
	return f
}

// finishWork runs the current WORK interval to zero.
func (f *fixture) finishWork(t *testing.T) {
	t.Helper()
	if !f.o.Snapshot().Timer.Running {
		t.Fatal("timer should be running")
	}
	f.clock.advance(60)
}

// ============================================================
// Start gating
// ============================================================

func TestStartWithEmptyBoard(t *testing.T) {
	f := newFixture(t, nil)

	if !f.o.Start() {
		t.Fatal("empty board should start straight away")
	}
	snap := f.o.Snapshot()
	if !snap.Timer.Running || snap.Prompt != PromptNone {
		t.Fatalf("expected running with no prompt, got %+v", snap.Prompt)
	}
	if f.sink.count(sound.Start) != 1 {
		t.Fatal("start should notify")
	}
}

func TestStartAsksForFocus(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("write report")
	f.o.FocusTask(id) // toggle the auto-focus off

	if f.o.Start() {
		t.Fatal("start should be gated by the focus prompt")
	}
	snap := f.o.Snapshot()
	if snap.Prompt != PromptFocus || snap.Timer.Running {
		t.Fatalf("expected focus prompt while idle, got %s running=%v", snap.Prompt, snap.Timer.Running)
	}

	f.o.FocusTask(id)
	snap = f.o.Snapshot()
	if !snap.Timer.Running {
		t.Fatal("picking a task should start the timer")
	}
	if snap.Prompt != PromptNone {
		t.Fatalf("prompt should close, got %s", snap.Prompt)
	}
	if snap.Focused == nil || snap.Focused.ID != id {
		t.Fatal("picked task should be focused")
	}
}

func TestStartAnyway(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("a")
	f.o.FocusTask(id)
	f.o.Start()

	if !f.o.StartAnyway() {
		t.Fatal("start anyway should start")
	}
	snap := f.o.Snapshot()
	if !snap.Timer.Running || snap.Prompt != PromptNone || snap.Focused != nil {
		t.Fatalf("unexpected state %+v", snap)
	}
}

func TestCancelFocusPrompt(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("a")
	f.o.FocusTask(id)
	f.o.Start()

	f.o.CancelFocusPrompt()
	snap := f.o.Snapshot()
	if snap.Prompt != PromptNone || snap.Timer.Running {
		t.Fatal("cancel should close the prompt and stay idle")
	}
}

func TestBreakIsNeverGated(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("a")
	f.o.FocusTask(id)
	f.o.SwitchMode(timer.ShortBreak)

	if !f.o.Start() {
		t.Fatal("breaks should start without focus")
	}
}

func TestOnlyDoneTasksDoNotGate(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("a")
	f.o.QuickComplete(id)

	if !f.o.Start() {
		t.Fatal("a board with only done tasks should not gate")
	}
}

// ============================================================
// Completion
// ============================================================

func TestFocusedCompletionAsksAndCelebrates(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("ship it")
	f.o.Start()
	f.finishWork(t)

	snap := f.o.Snapshot()
	if snap.Prompt != PromptCompletion {
		t.Fatalf("expected completion prompt, got %s", snap.Prompt)
	}
	if snap.Timer.Pending != nil {
		t.Fatal("transition should be held back")
	}
	if snap.Timer.SessionsCompleted != 1 || snap.Stats.TodayCount != 1 {
		t.Fatalf("session not recorded: %+v", snap.Stats)
	}
	if f.sink.count(sound.Complete) != 1 {
		t.Fatal("completion should notify")
	}

	if !f.o.ResolveCompletion(true) {
		t.Fatal("resolve should act while awaiting")
	}
	snap = f.o.Snapshot()
	if snap.Timer.Mode != timer.ShortBreak || snap.Timer.Running {
		t.Fatalf("expected idle SHORT_BREAK, got %s running=%v", snap.Timer.Mode, snap.Timer.Running)
	}
	if snap.Prompt != PromptNone {
		t.Fatalf("prompt should close, got %s", snap.Prompt)
	}
	if len(snap.Board.Done) != 1 || snap.Board.Done[0].ID != id {
		t.Fatal("focused task should be done")
	}
	if snap.Focused != nil {
		t.Fatal("focus should clear")
	}
	if f.sink.count(sound.Celebration) != 1 {
		t.Fatal("yes should celebrate")
	}
	if f.o.ResolveCompletion(true) {
		t.Fatal("second resolve should be ignored")
	}
}

func TestCompletionNoKeepsTask(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("keep going")
	f.o.Start()
	f.finishWork(t)

	f.o.ResolveCompletion(false)
	snap := f.o.Snapshot()
	if len(snap.Board.Todo) != 1 || snap.Board.Todo[0].ID != id {
		t.Fatal("task should stay put")
	}
	if snap.Focused == nil || snap.Focused.ID != id {
		t.Fatal("focus should be kept")
	}
	if snap.Timer.Mode != timer.ShortBreak {
		t.Fatalf("expected SHORT_BREAK, got %s", snap.Timer.Mode)
	}
}

func TestUnfocusedCompletionOffersTransition(t *testing.T) {
	f := newFixture(t, nil)
	f.o.Start()
	f.finishWork(t)

	snap := f.o.Snapshot()
	if snap.Prompt != PromptTransition {
		t.Fatalf("expected transition prompt, got %s", snap.Prompt)
	}
	if snap.Timer.Pending == nil || *snap.Timer.Pending != timer.ShortBreak {
		t.Fatal("SHORT_BREAK should be offered")
	}

	if !f.o.AcceptTransition() {
		t.Fatal("accept should act")
	}
	snap = f.o.Snapshot()
	if snap.Timer.Mode != timer.ShortBreak || !snap.Timer.Running {
		t.Fatal("accept should start the break")
	}
}

func TestDismissTransition(t *testing.T) {
	f := newFixture(t, nil)
	f.o.Start()
	f.finishWork(t)

	if !f.o.DismissTransition() {
		t.Fatal("dismiss should act")
	}
	snap := f.o.Snapshot()
	if snap.Timer.Mode != timer.ShortBreak || snap.Timer.Running || snap.Prompt != PromptNone {
		t.Fatalf("expected idle SHORT_BREAK, got %+v", snap.Timer)
	}
}

func TestFourthSessionEarnsLongBreak(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 3; i++ {
		f.o.Start()
		f.finishWork(t)
		f.o.DismissTransition()
		f.o.SwitchMode(timer.Work)
	}
	f.o.AddTask("fourth")
	f.o.Start()
	f.finishWork(t)
	f.o.ResolveCompletion(false)

	snap := f.o.Snapshot()
	if snap.Timer.SessionsCompleted != 4 {
		t.Fatalf("expected 4 sessions, got %d", snap.Timer.SessionsCompleted)
	}
	if snap.Timer.Mode != timer.LongBreak {
		t.Fatalf("expected LONG_BREAK, got %s", snap.Timer.Mode)
	}
}

func TestCompletionPromptLocksTimer(t *testing.T) {
	kv := NewMemoryKV()
	if err := store.SaveJSON(kv, KeySessionsCompleted, 3); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, kv)
	f.o.AddTask("fourth")
	f.o.Start()
	f.finishWork(t)

	if f.o.AdjustDuration(timer.Work, 1) {
		t.Error("duration edits should wait for the prompt")
	}
	if f.o.Reset() {
		t.Error("reset should wait for the prompt")
	}
	if f.o.Start() {
		t.Error("start should wait for the prompt")
	}
	snap := f.o.Snapshot()
	if snap.Prompt != PromptCompletion || snap.Timer.Running || snap.Timer.Durations.Work != 1 {
		t.Fatalf("prompt state should be untouched: prompt=%s %+v", snap.Prompt, snap.Timer)
	}

	f.o.ResolveCompletion(false)
	snap = f.o.Snapshot()
	if snap.Timer.SessionsCompleted != 4 {
		t.Fatalf("expected 4 sessions, got %d", snap.Timer.SessionsCompleted)
	}
	if snap.Timer.Mode != timer.LongBreak {
		t.Fatalf("4th session should earn LONG_BREAK, got %s", snap.Timer.Mode)
	}
}

func TestCompletionEmitsEvent(t *testing.T) {
	f := newFixture(t, nil)
	f.o.Start()
	f.finishWork(t)

	var got *timer.Completion
	for {
		select {
		case e := <-f.o.Events():
			if e.Kind == EventCompleted {
				got = e.Completion
			}
			continue
		default:
		}
		break
	}
	if got == nil || got.Mode != timer.Work || got.Session == nil {
		t.Fatalf("expected a WORK completion event, got %+v", got)
	}
}

// ============================================================
// Persistence
// ============================================================

func TestStatePersistsAcrossRestart(t *testing.T) {
	kv := NewMemoryKV()
	f := newFixture(t, kv)
	f.o.AddTask("a")
	b, _ := f.o.AddTask("b")
	f.o.MoveTask(board.Todo, board.InProgress, b)
	f.o.SwitchMode(timer.Work)
	f.o.AdjustDuration(timer.ShortBreak, 4)
	f.o.Start()
	f.finishWork(t)
	f.o.Close()

	o := New(Config{Store: kv, Clock: &manualClock{now: testNow}})
	defer o.Close()
	snap := o.Snapshot()

	if len(snap.Board.Todo) != 1 || len(snap.Board.InProgress) != 1 {
		t.Fatalf("board not restored: %+v", snap.Board)
	}
	if snap.Timer.Durations.ShortBreak != 5 {
		t.Fatalf("durations not restored: %+v", snap.Timer.Durations)
	}
	if snap.Timer.SessionsCompleted != 1 || len(o.History()) != 1 {
		t.Fatal("sessions not restored")
	}
	if snap.Focused != nil {
		t.Fatal("focus is not persisted")
	}
	if id, _ := o.AddTask("c"); id != 3 {
		t.Fatalf("ids should continue after the max, got %d", id)
	}
}

func TestCorruptValuesFallBack(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyTasks, "{broken")
	kv.Set(KeySessionsCompleted, "-2")
	kv.Set(KeySessions, `[{"date":"nope"}]`)

	o := New(Config{Store: kv, Clock: &manualClock{now: testNow}})
	defer o.Close()
	snap := o.Snapshot()
	if snap.AllTotal != 0 || snap.Timer.SessionsCompleted != 0 || snap.Stats.TotalSessions != 0 {
		t.Fatalf("expected defaults, got %+v", snap)
	}
	if snap.Timer.Durations != timer.DefaultDurations() {
		t.Fatal("missing durations should default")
	}
}

func TestStoreFailuresDoNotBreakSession(t *testing.T) {
	f := &fixture{clock: &manualClock{now: testNow}, sink: &recorder{}}
	f.o = New(Config{Store: brokenKV{}, Sink: f.sink, Clock: f.clock})
	defer f.o.Close()

	id, ok := f.o.AddTask("offline")
	if !ok {
		t.Fatal("add should work without storage")
	}
	if !f.o.MoveTask(board.Todo, board.Done, id) {
		t.Fatal("move should work without storage")
	}
	if f.o.Snapshot().DoneTotal != 1 {
		t.Fatal("in-memory state should stay authoritative")
	}
}

func TestBoardWritesJSONShape(t *testing.T) {
	f := newFixture(t, nil)
	f.o.AddTask("shape")

	raw, ok, _ := f.kv.Get(KeyTasks)
	if !ok {
		t.Fatal("tasks should be written")
	}
	var got map[string][]map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"todo", "inProgress", "done"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing column %q in %s", k, raw)
		}
	}
	if got["todo"][0]["text"] != "shape" {
		t.Fatalf("unexpected payload %s", raw)
	}
}

// ============================================================
// Board intents and sounds
// ============================================================

func TestDeleteNotifiesDelete(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("x")
	if !f.o.DeleteTask(board.Todo, id) {
		t.Fatal("delete should succeed")
	}
	if f.sink.count(sound.Delete) != 1 {
		t.Fatal("delete should notify delete")
	}
	if f.o.DeleteTask(board.Todo, id) {
		t.Fatal("second delete should be a no-op")
	}
}

func TestDragDropThroughOrchestrator(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("drag me")

	f.o.DragStart(board.Todo, id)
	f.o.DragOver(board.Done)
	if d := f.o.Snapshot().Drag; !d.Active || !d.Hovering || d.Over != board.Done {
		t.Fatalf("unexpected drag state %+v", d)
	}
	if !f.o.Drop(board.Done) {
		t.Fatal("drop should move the task")
	}
	snap := f.o.Snapshot()
	if snap.DoneTotal != 1 || snap.Drag.Active {
		t.Fatalf("unexpected state after drop %+v", snap)
	}
}

func TestAdjustDurationRejectedWhileRunning(t *testing.T) {
	f := newFixture(t, nil)
	f.o.Start()
	if f.o.AdjustDuration(timer.Work, 5) {
		t.Fatal("adjust should be refused while running")
	}
}

func TestStepTask(t *testing.T) {
	f := newFixture(t, nil)
	id, _ := f.o.AddTask("step")
	if !f.o.StepTask(board.Todo, id, true) {
		t.Fatal("step forward should move")
	}
	if f.o.StepTask(board.Todo, id, false) {
		t.Fatal("stepping from the wrong column should fail")
	}
	if len(f.o.Snapshot().Board.InProgress) != 1 {
		t.Fatal("task should be in progress")
	}
}

func TestWipeStartsOver(t *testing.T) {
	f := newFixture(t, nil)
	f.o.AddTask("gone soon")
	f.o.Start()
	f.finishWork(t)

	if err := f.o.Wipe(); err != nil {
		t.Fatal(err)
	}
	snap := f.o.Snapshot()
	if snap.AllTotal != 0 || snap.Timer.SessionsCompleted != 0 || snap.Stats.TotalSessions != 0 {
		t.Fatalf("expected empty state, got %+v", snap)
	}
	if snap.Prompt != PromptNone || snap.Timer.Running {
		t.Fatal("wipe should leave an idle timer without prompts")
	}
	if snap.Timer.Durations != timer.DefaultDurations() {
		t.Fatal("durations should reset to defaults")
	}
	if _, ok, _ := f.kv.Get(KeyTasks); ok {
		t.Fatal("stored board should be gone")
	}
	if id, _ := f.o.AddTask("fresh"); id != 1 {
		t.Fatalf("ids should restart, got %d", id)
	}
}

func TestWipeDropsCompletionFromReplacedTimer(t *testing.T) {
	f := newFixture(t, nil)
	f.o.Start()
	old := f.o.timer

	if err := f.o.Wipe(); err != nil {
		t.Fatal(err)
	}
	// A completion that was already in flight when the wipe happened.
	f.o.handleCompletion(old, timer.Completion{
		Mode:    timer.Work,
		Session: &timer.Session{Date: timer.Day(testNow), Timestamp: testNow, DurationMinutes: 1},
		State:   timer.State{SessionsCompleted: 1},
	})

	for _, k := range []string{KeySessions, KeySessionsCompleted} {
		if _, ok, _ := f.kv.Get(k); ok {
			t.Errorf("%s should stay wiped", k)
		}
	}
	if f.sink.count(sound.Complete) != 0 {
		t.Error("stale completion should not notify")
	}
	if snap := f.o.Snapshot(); snap.Stats.TotalSessions != 0 {
		t.Fatalf("history should stay empty, got %d", snap.Stats.TotalSessions)
	}
}

func TestWipeWithSQLiteStore(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	o := New(Config{Store: s, Clock: &manualClock{now: testNow}})
	defer o.Close()
	o.AddTask("persisted")
	if keys, _ := s.Keys(); len(keys) == 0 {
		t.Fatal("board should be written to sqlite")
	}
	if err := o.Wipe(); err != nil {
		t.Fatal(err)
	}
	if keys, _ := s.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys after wipe, got %v", keys)
	}
}
