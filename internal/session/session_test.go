package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/promptdice/internal/dice"
	"github.com/jackzampolin/promptdice/internal/storage"
	"github.com/jackzampolin/promptdice/internal/testutil"
)

// fakeTimer is fired by hand from tests.
type fakeTimer struct {
	f       func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.f()
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

type fakeClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

// failingKV fails every Set after it is armed, or only Sets of failKey
// when that is non-empty.
type failingKV struct {
	*storage.Memory
	failSet bool
	failKey string
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet && (f.failKey == "" || f.failKey == key) {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

type counterRoller struct{ n int }

func (c *counterRoller) IntN(n int) int {
	c.n++
	return c.n % n
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = storage.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = testutil.Logger(t)
	}
	s, err := New(t.Context(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := newTestSession(t, Config{})

	if diff := cmp.Diff(dice.DefaultDataset(), s.Dataset()); diff != "" {
		t.Errorf("initial dataset mismatch (-want +got):\n%s", diff)
	}
	if got := s.History(); len(got) != 0 {
		t.Errorf("initial history = %v", got)
	}
	st := s.State()
	if st.Phase != PhaseIdle {
		t.Errorf("phase = %s, want idle", st.Phase)
	}
	if diff := cmp.Diff(dice.Parse(dice.DefaultTemplate), st.Segments); diff != "" {
		t.Errorf("initial segments mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_LoadsPersistedState(t *testing.T) {
	ctx := t.Context()
	kv := storage.NewMemory()
	ds := dice.Dataset{"build": {"lean"}}
	storage.SaveJSON(ctx, kv, storage.KeyDataset, ds)
	storage.SaveJSON(ctx, kv, storage.KeyHistory, []string{"b", "a"})

	s := newTestSession(t, Config{Store: kv})

	if diff := cmp.Diff(ds, s.Dataset()); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a"}, s.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_CorruptStateFallsBack(t *testing.T) {
	ctx := t.Context()
	kv := storage.NewMemory()
	kv.Set(ctx, storage.KeyDataset, []byte(`{"build": "not a list"}`))
	kv.Set(ctx, storage.KeyHistory, []byte(`not json`))

	s := newTestSession(t, Config{Store: kv})

	if diff := cmp.Diff(dice.DefaultDataset(), s.Dataset()); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
	if len(s.History()) != 0 {
		t.Errorf("history = %v, want empty", s.History())
	}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without store")
	}
}

func TestRoll(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestSession(t, Config{Store: kv})

	st, err := s.Roll(t.Context())
	if err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	if st.Phase != PhaseRolled {
		t.Errorf("phase = %s", st.Phase)
	}
	if strings.Contains(st.Prompt, "**") {
		t.Errorf("prompt has markers: %q", st.Prompt)
	}
	ds := dice.DefaultDataset()
	for _, seg := range st.Segments {
		if seg.IsDynamic() && !containsSanitized(ds[seg.Category], seg.Value) {
			t.Errorf("slot %q = %q is not a candidate", seg.Category, seg.Value)
		}
	}

	history := s.History()
	if len(history) != 1 || history[0] != st.Prompt {
		t.Errorf("history = %v, want [%q]", history, st.Prompt)
	}

	var persisted []string
	if _, err := storage.LoadJSON(t.Context(), kv, storage.KeyHistory, storage.HistorySchema, &persisted); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if diff := cmp.Diff(history, persisted); diff != "" {
		t.Errorf("persisted history mismatch (-want +got):\n%s", diff)
	}
}

func containsSanitized(values []string, v string) bool {
	for _, c := range values {
		if dice.Sanitize(c) == v {
			return true
		}
	}
	return false
}

func TestRoll_HistoryBound(t *testing.T) {
	s := newTestSession(t, Config{
		Template: "**n**",
		Roller:   &counterRoller{},
	})
	ctx := t.Context()
	for i := range 20 {
		s.AddValue(ctx, "n", fmt.Sprintf("v%02d", i))
	}

	var last string
	for range 15 {
		st, err := s.Roll(ctx)
		if err != nil {
			t.Fatalf("Roll() error = %v", err)
		}
		last = st.Prompt
	}

	history := s.History()
	if len(history) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(history), MaxHistory)
	}
	if history[0] != last {
		t.Errorf("history[0] = %q, want %q", history[0], last)
	}
	// counterRoller walks the list, so rolls are v01..v15 and the window is v15..v06.
	if history[MaxHistory-1] != "v06" {
		t.Errorf("oldest entry = %q, want v06", history[MaxHistory-1])
	}
}

func TestRoll_MissingValuesStillRecorded(t *testing.T) {
	s := newTestSession(t, Config{Template: "a **build** and **nothing**"})

	st, err := s.Roll(t.Context())
	if err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	errSlot := st.Segments[3]
	if !errSlot.IsError || errSlot.Value != "[No values for nothing]" {
		t.Errorf("error slot = %+v", errSlot)
	}
	if st.Segments[1].IsError {
		t.Errorf("build slot should resolve: %+v", st.Segments[1])
	}
	if h := s.History(); len(h) != 1 || !strings.HasSuffix(h[0], "[No values for nothing]") {
		t.Errorf("history = %v", h)
	}
}

func TestRoll_SaveFailureLeavesState(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory()}
	s := newTestSession(t, Config{Store: kv})
	before := s.State()

	kv.failSet = true
	if _, err := s.Roll(t.Context()); err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed after failed roll (-want +got):\n%s", diff)
	}
	if len(s.History()) != 0 {
		t.Errorf("history = %v", s.History())
	}
}

func TestEditSlot(t *testing.T) {
	s := newTestSession(t, Config{Template: "x **gone** y **build**"})
	st, _ := s.Roll(t.Context())
	if !st.Segments[1].IsError {
		t.Fatalf("expected error slot, got %+v", st.Segments[1])
	}
	historyBefore := s.History()
	other := st.Segments[3]

	st, err := s.EditSlot(1, "hand written")
	if err != nil {
		t.Fatalf("EditSlot() error = %v", err)
	}
	if st.Segments[1].IsError || st.Segments[1].Value != "hand written" {
		t.Errorf("edited slot = %+v", st.Segments[1])
	}
	if st.Segments[3] != other {
		t.Errorf("other slot changed: %+v", st.Segments[3])
	}
	if st.Phase != PhaseEdited {
		t.Errorf("phase = %s", st.Phase)
	}
	if !strings.Contains(st.Prompt, "hand written") {
		t.Errorf("prompt = %q", st.Prompt)
	}
	if diff := cmp.Diff(historyBefore, s.History()); diff != "" {
		t.Errorf("history changed (-want +got):\n%s", diff)
	}

	st, err = s.EditSlot(3, "")
	if err != nil {
		t.Fatalf("EditSlot(empty) error = %v", err)
	}
	if st.Segments[3].Value != "" {
		t.Errorf("empty edit = %q", st.Segments[3].Value)
	}
}

func TestEditSlot_Errors(t *testing.T) {
	s := newTestSession(t, Config{Template: "x **build**"})
	if _, err := s.EditSlot(0, "v"); !errors.Is(err, dice.ErrNotDynamic) {
		t.Errorf("static edit error = %v", err)
	}
	for _, idx := range []int{-1, 2} {
		if _, err := s.EditSlot(idx, "v"); !errors.Is(err, dice.ErrIndexOutOfRange) {
			t.Errorf("EditSlot(%d) error = %v", idx, err)
		}
	}
}

func TestValueMutations(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestSession(t, Config{Store: kv})
	ctx := t.Context()
	before := len(s.Dataset()["build"])

	changed, err := s.AddValue(ctx, "build", "   ")
	if err != nil || changed {
		t.Errorf("whitespace AddValue() = %v, %v", changed, err)
	}
	if _, err := kv.Get(ctx, storage.KeyDataset); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("no-op add should not persist, Get error = %v", err)
	}
	if got := len(s.Dataset()["build"]); got != before {
		t.Errorf("length = %d, want %d", got, before)
	}

	if _, err := s.AddValue(ctx, "build", " wiry "); err != nil {
		t.Fatalf("AddValue() error = %v", err)
	}
	if _, err := s.UpdateValue(ctx, "build", 0, "  lanky  "); err != nil {
		t.Fatalf("UpdateValue() error = %v", err)
	}
	if err := s.DeleteValue(ctx, "build", 1); err != nil {
		t.Fatalf("DeleteValue() error = %v", err)
	}

	want := dice.DefaultDataset()
	want["build"][0] = "lanky"
	want["build"] = append(want["build"], "wiry")
	want.Delete("build", 1)
	if diff := cmp.Diff(want, s.Dataset()); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}

	var persisted dice.Dataset
	if _, err := storage.LoadJSON(ctx, kv, storage.KeyDataset, storage.DatasetSchema, &persisted); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("persisted dataset mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.UpdateValue(ctx, "build", 99, "x"); !errors.Is(err, dice.ErrIndexOutOfRange) {
		t.Errorf("UpdateValue out of range error = %v", err)
	}
	if err := s.DeleteValue(ctx, "build", -1); !errors.Is(err, dice.ErrIndexOutOfRange) {
		t.Errorf("DeleteValue out of range error = %v", err)
	}
	if diff := cmp.Diff(want, s.Dataset()); diff != "" {
		t.Errorf("failed mutation changed dataset (-want +got):\n%s", diff)
	}
}

func TestValueMutations_AffectNextRoll(t *testing.T) {
	s := newTestSession(t, Config{Template: "**build**"})
	ctx := t.Context()
	for len(s.Dataset()["build"]) > 0 {
		if err := s.DeleteValue(ctx, "build", 0); err != nil {
			t.Fatalf("DeleteValue() error = %v", err)
		}
	}

	st, _ := s.Roll(ctx)
	if st.Prompt != "[No values for build]" || !st.Segments[0].IsError {
		t.Errorf("roll over empty category = %+v", st)
	}

	s.AddValue(ctx, "build", "it's lean")
	st, _ = s.Roll(ctx)
	if st.Prompt != "its lean" || st.Segments[0].IsError {
		t.Errorf("roll after add = %+v", st)
	}
}

func TestMutate_SaveFailure(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory()}
	s := newTestSession(t, Config{Store: kv})
	kv.failSet = true

	if _, err := s.AddValue(t.Context(), "build", "x"); err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(dice.DefaultDataset(), s.Dataset()); diff != "" {
		t.Errorf("dataset changed after failed save (-want +got):\n%s", diff)
	}
}

func TestCopy(t *testing.T) {
	sched := &fakeScheduler{}
	clip := &fakeClipboard{}
	s := newTestSession(t, Config{Scheduler: sched, Clipboard: clip, CopiedWindow: 2 * time.Second})
	ctx := t.Context()
	st, _ := s.Roll(ctx)

	res := s.Copy(ctx)
	if !res.Copied || res.Text != st.Prompt {
		t.Fatalf("Copy() = %+v", res)
	}
	if !s.State().Copied {
		t.Error("copied flag not set")
	}
	if len(sched.timers) != 1 || sched.timers[0].d != 2*time.Second {
		t.Fatalf("timers = %+v", sched.timers)
	}

	// Ignored while the indicator is set.
	if res := s.Copy(ctx); res.Copied {
		t.Error("second copy should be ignored")
	}
	if len(clip.writes) != 1 {
		t.Errorf("clipboard writes = %d, want 1", len(clip.writes))
	}

	sched.timers[0].fire()
	if s.State().Copied {
		t.Error("copied flag not cleared by timer")
	}
	if res := s.Copy(ctx); !res.Copied {
		t.Error("copy after window should succeed")
	}
	if len(clip.writes) != 2 {
		t.Errorf("clipboard writes = %d, want 2", len(clip.writes))
	}
}

func TestCopy_NotCopyable(t *testing.T) {
	tests := []struct {
		name     string
		template string
		edit     string
	}{
		{"empty prompt", "**x**", ""},
		{"leftover marker", "**x**", "has ** inside"},
		{"whitespace only", "**x**  ", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := &fakeClipboard{}
			sched := &fakeScheduler{}
			s := newTestSession(t, Config{Template: tt.template, Clipboard: clip, Scheduler: sched})
			if _, err := s.EditSlot(0, tt.edit); err != nil {
				t.Fatalf("EditSlot() error = %v", err)
			}
			if s.State().Copyable {
				t.Error("state reports copyable")
			}
			if res := s.Copy(t.Context()); res.Copied {
				t.Errorf("Copy() = %+v", res)
			}
			if len(clip.writes) != 0 || len(sched.timers) != 0 {
				t.Errorf("writes = %v, timers = %d", clip.writes, len(sched.timers))
			}
		})
	}
}

func TestCopy_BeforeFirstRoll(t *testing.T) {
	clip := &fakeClipboard{}
	sched := &fakeScheduler{}
	s := newTestSession(t, Config{Clipboard: clip, Scheduler: sched})

	st := s.State()
	if st.Prompt != dice.DefaultTemplate {
		t.Errorf("initial prompt = %q, want the template", st.Prompt)
	}
	if st.Copyable {
		t.Error("unrolled prompt reported copyable")
	}
	res := s.Copy(t.Context())
	if res.Copied || res.Text != dice.DefaultTemplate {
		t.Errorf("Copy() = %+v", res)
	}

	// Editing one slot still leaves markers in the others.
	if _, err := s.EditSlot(1, "calm"); err != nil {
		t.Fatalf("EditSlot() error = %v", err)
	}
	if res := s.Copy(t.Context()); res.Copied {
		t.Errorf("Copy() after partial edit = %+v", res)
	}
	if len(clip.writes) != 0 || len(sched.timers) != 0 {
		t.Errorf("writes = %v, timers = %d", clip.writes, len(sched.timers))
	}
}

func TestCopy_ClipboardFailureIsSwallowed(t *testing.T) {
	sched := &fakeScheduler{}
	s := newTestSession(t, Config{
		Scheduler: sched,
		Clipboard: &fakeClipboard{err: errors.New("no display")},
	})
	s.Roll(t.Context())

	res := s.Copy(t.Context())
	if res.Copied {
		t.Error("failed copy reported as copied")
	}
	if s.State().Copied || len(sched.timers) != 0 {
		t.Error("failed copy set the indicator")
	}
}

func TestCopy_WithoutClipboard(t *testing.T) {
	s := newTestSession(t, Config{Scheduler: &fakeScheduler{}})
	st, _ := s.Roll(t.Context())
	res := s.Copy(t.Context())
	if !res.Copied || res.Text != st.Prompt {
		t.Errorf("Copy() = %+v", res)
	}
}

func TestCopyHistory(t *testing.T) {
	clip := &fakeClipboard{}
	s := newTestSession(t, Config{Clipboard: clip})
	ctx := t.Context()
	first, _ := s.Roll(ctx)
	s.Roll(ctx)

	res, err := s.CopyHistory(ctx, 1)
	if err != nil {
		t.Fatalf("CopyHistory() error = %v", err)
	}
	if !res.Copied || res.Text != first.Prompt {
		t.Errorf("CopyHistory() = %+v, want %q", res, first.Prompt)
	}
	if diff := cmp.Diff([]string{first.Prompt}, clip.writes); diff != "" {
		t.Errorf("clipboard writes mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.CopyHistory(ctx, 2); !errors.Is(err, dice.ErrIndexOutOfRange) {
		t.Errorf("CopyHistory(2) error = %v", err)
	}
}

func TestReset(t *testing.T) {
	kv := storage.NewMemory()
	sched := &fakeScheduler{}
	s := newTestSession(t, Config{Store: kv, Scheduler: sched})
	ctx := t.Context()

	s.AddValue(ctx, "build", "extra")
	s.DeleteValue(ctx, "hairstyle", 0)
	s.Roll(ctx)
	s.Roll(ctx)
	s.Copy(ctx)

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if diff := cmp.Diff(dice.DefaultDataset(), s.Dataset()); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, s.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	st := s.State()
	if st.Phase != PhaseIdle || st.Copied {
		t.Errorf("state after reset = %+v", st)
	}
	if diff := cmp.Diff(dice.Parse(dice.DefaultTemplate), st.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	if !sched.timers[0].stopped {
		t.Error("pending copied timer not cancelled")
	}

	reloaded := newTestSession(t, Config{Store: kv})
	if diff := cmp.Diff(dice.DefaultDataset(), reloaded.Dataset()); diff != "" {
		t.Errorf("persisted dataset mismatch (-want +got):\n%s", diff)
	}
	if len(reloaded.History()) != 0 {
		t.Errorf("persisted history = %v", reloaded.History())
	}
}

func TestReset_StaleTimerIgnored(t *testing.T) {
	sched := &fakeScheduler{}
	s := newTestSession(t, Config{Scheduler: sched})
	ctx := t.Context()
	s.Roll(ctx)
	s.Copy(ctx)
	stale := sched.timers[0]

	s.Reset(ctx)
	s.Roll(ctx)
	s.Copy(ctx)

	// Force the cancelled callback to run anyway.
	stale.f()
	if !s.State().Copied {
		t.Error("stale timer cleared the new copied flag")
	}
}

func TestConfirmAndReset(t *testing.T) {
	ctx := t.Context()

	t.Run("declined leaves state", func(t *testing.T) {
		s := newTestSession(t, Config{})
		s.AddValue(ctx, "build", "extra")
		s.Roll(ctx)
		dsBefore, hBefore, stBefore := s.Dataset(), s.History(), s.State()

		var asked string
		err := ConfirmAndReset(ctx, s, ConfirmFunc(func(_ context.Context, q string) (bool, error) {
			asked = q
			return false, nil
		}))
		if !errors.Is(err, ErrNotConfirmed) {
			t.Fatalf("error = %v, want ErrNotConfirmed", err)
		}
		if asked != ResetPrompt {
			t.Errorf("question = %q", asked)
		}
		if diff := cmp.Diff(dsBefore, s.Dataset()); diff != "" {
			t.Errorf("dataset changed (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(hBefore, s.History()); diff != "" {
			t.Errorf("history changed (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(stBefore, s.State()); diff != "" {
			t.Errorf("state changed (-want +got):\n%s", diff)
		}
	})

	t.Run("confirmer error", func(t *testing.T) {
		s := newTestSession(t, Config{})
		err := ConfirmAndReset(ctx, s, ConfirmFunc(func(context.Context, string) (bool, error) {
			return false, io.ErrUnexpectedEOF
		}))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("accepted resets", func(t *testing.T) {
		s := newTestSession(t, Config{})
		s.Roll(ctx)
		if err := ConfirmAndReset(ctx, s, Answer(true)); err != nil {
			t.Fatalf("error = %v", err)
		}
		if len(s.History()) != 0 {
			t.Errorf("history = %v", s.History())
		}
	})
}

func TestReset_PartialWriteFailure(t *testing.T) {
	for _, key := range []string{storage.KeyHistory, storage.KeyDataset} {
		t.Run(key, func(t *testing.T) {
			ctx := t.Context()
			kv := &failingKV{Memory: storage.NewMemory()}
			s := newTestSession(t, Config{Store: kv})
			if _, err := s.AddValue(ctx, "build", "lanky"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Roll(ctx); err != nil {
				t.Fatal(err)
			}
			wantDataset := s.Dataset()
			wantHistory := s.History()

			kv.failSet, kv.failKey = true, key
			if err := s.Reset(ctx); err == nil {
				t.Fatal("expected error")
			}
			if diff := cmp.Diff(wantDataset, s.Dataset()); diff != "" {
				t.Errorf("in-memory dataset changed (-want +got):\n%s", diff)
			}

			// A restart must see the pre-reset state too.
			kv.failSet = false
			reloaded := newTestSession(t, Config{Store: kv})
			if diff := cmp.Diff(wantDataset, reloaded.Dataset()); diff != "" {
				t.Errorf("persisted dataset changed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantHistory, reloaded.History()); diff != "" {
				t.Errorf("persisted history changed (-want +got):\n%s", diff)
			}
		})
	}
}
