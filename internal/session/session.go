// Package session is the prompt roller's controller. It owns the category
// dataset, the displayed segments and the history log, persists the first
// and last through a storage.KV, and applies user actions one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackzampolin/promptdice/internal/dice"
	"github.com/jackzampolin/promptdice/internal/storage"
)

// DefaultCopiedWindow is how long the copied indicator stays set.
const DefaultCopiedWindow = 2 * time.Second

// Phase is the controller state shown to the user.
type Phase string

const (
	// PhaseIdle shows the freshly parsed template.
	PhaseIdle Phase = "idle"
	// PhaseRolled follows a roll.
	PhaseRolled Phase = "rolled"
	// PhaseEdited follows a manual slot edit.
	PhaseEdited Phase = "edited"
)

// Clipboard receives copied prompts.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Config holds the collaborators of a Session.
type Config struct {
	// Store persists the dataset and history. Required.
	Store storage.KV
	// Template is parsed into the initial segments. Defaults to dice.DefaultTemplate.
	Template string
	// Clipboard receives copies. When nil a copy only marks the prompt as
	// copied and hands the text back to the caller.
	Clipboard Clipboard
	// Scheduler clears the copied indicator. Defaults to RealScheduler.
	Scheduler Scheduler
	// CopiedWindow defaults to DefaultCopiedWindow.
	CopiedWindow time.Duration
	// Roller picks values. Defaults to dice.DefaultRoller.
	Roller dice.Roller
	Logger *slog.Logger
}

// Session is safe for concurrent use; all operations are serialized.
type Session struct {
	store     storage.KV
	template  string
	clipboard Clipboard
	scheduler Scheduler
	roller    dice.Roller
	logger    *slog.Logger

	mu           sync.Mutex
	dataset      dice.Dataset
	segments     []dice.Segment
	history      *History
	phase        Phase
	copiedWindow time.Duration
	copied       bool
	copyTimer    Timer
	copyGen      uint64
}

// New builds a session and loads persisted state. Missing or corrupt values
// fall back to the defaults; only storage read failures are errors.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Template == "" {
		cfg.Template = dice.DefaultTemplate
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.CopiedWindow <= 0 {
		cfg.CopiedWindow = DefaultCopiedWindow
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.DefaultRoller
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Session{
		store:        cfg.Store,
		template:     cfg.Template,
		clipboard:    cfg.Clipboard,
		scheduler:    cfg.Scheduler,
		roller:       cfg.Roller,
		logger:       cfg.Logger,
		segments:     dice.Parse(cfg.Template),
		phase:        PhaseIdle,
		copiedWindow: cfg.CopiedWindow,
	}

	dataset, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	s.dataset = dataset

	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	s.history = history

	return s, nil
}

func (s *Session) loadDataset(ctx context.Context) (dice.Dataset, error) {
	var ds dice.Dataset
	found, err := storage.LoadJSON(ctx, s.store, storage.KeyDataset, storage.DatasetSchema, &ds)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("stored dataset is corrupt, using defaults", "error", err)
		return dice.DefaultDataset(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	case !found:
		return dice.DefaultDataset(), nil
	}
	return ds, nil
}

func (s *Session) loadHistory(ctx context.Context) (*History, error) {
	var entries []string
	found, err := storage.LoadJSON(ctx, s.store, storage.KeyHistory, storage.HistorySchema, &entries)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("stored history is corrupt, starting empty", "error", err)
		return NewHistory(nil), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load history: %w", err)
	case !found:
		return NewHistory(nil), nil
	}
	return NewHistory(entries), nil
}

// State is a point-in-time view of the displayed prompt.
type State struct {
	Segments []dice.Segment `json:"segments"`
	Prompt   string         `json:"prompt"`
	Phase    Phase          `json:"phase"`
	Copied   bool           `json:"copied"`
	// Copyable reports whether Copy would hand the prompt to the clipboard.
	Copyable bool `json:"copyable"`
}

// String returns the rendered prompt.
func (st State) String() string { return st.Prompt }

// State returns the current prompt view.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	prompt := dice.Render(s.segments)
	return State{
		Segments: slices.Clone(s.segments),
		Prompt:   prompt,
		Phase:    s.phase,
		Copied:   s.copied,
		Copyable: copyable(prompt),
	}
}

// Dataset returns a copy of the current category dataset.
func (s *Session) Dataset() dice.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset.Clone()
}

// History returns the rendered prompts, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// SetCopiedWindow changes how long future copies keep the indicator set.
func (s *Session) SetCopiedWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.copiedWindow = d
	s.mu.Unlock()
}

// Roll resolves every slot against the current dataset, shows the result and
// records it in history, even when some slots have no values.
func (s *Session) Roll(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	segments := dice.Resolve(s.segments, s.dataset, s.roller)
	prompt := dice.Render(segments)

	history := s.history.Clone()
	history.Push(prompt)
	if err := storage.SaveJSON(ctx, s.store, storage.KeyHistory, history.Entries()); err != nil {
		return State{}, fmt.Errorf("failed to save history: %w", err)
	}

	s.segments = segments
	s.history = history
	s.phase = PhaseRolled
	s.logger.Debug("rolled prompt", "prompt", prompt)
	return s.stateLocked(), nil
}

// EditSlot replaces the value of the dynamic segment at index and clears its
// error flag. History is not touched.
func (s *Session) EditSlot(index int, value string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.segments) {
		return State{}, fmt.Errorf("%w: %d segments, got index %d", dice.ErrIndexOutOfRange, len(s.segments), index)
	}
	if !s.segments[index].IsDynamic() {
		return State{}, fmt.Errorf("%w: index %d", dice.ErrNotDynamic, index)
	}

	segments := slices.Clone(s.segments)
	segments[index].Value = value
	segments[index].IsError = false
	segments[index].Resolved = true
	s.segments = segments
	s.phase = PhaseEdited
	return s.stateLocked(), nil
}

// CopyResult reports what a copy did.
type CopyResult struct {
	Text   string `json:"text"`
	Copied bool   `json:"copied"`
}

func (c CopyResult) String() string { return c.Text }

func copyable(prompt string) bool {
	return prompt != "" && !strings.Contains(prompt, dice.MarkerDelimiter)
}

// Copy hands the rendered prompt to the clipboard when it is non-empty and
// fully resolved. On success the copied indicator is set for the copied
// window; copies made while it is set are ignored. Clipboard failures are
// logged and reported as Copied=false, never as an error.
func (s *Session) Copy(ctx context.Context) CopyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := dice.Render(s.segments)
	if s.copied || !copyable(prompt) {
		return CopyResult{Text: prompt}
	}

	if s.clipboard != nil {
		if err := s.clipboard.WriteText(ctx, prompt); err != nil {
			s.logger.Error("failed to copy text", "error", err)
			return CopyResult{Text: prompt}
		}
	}

	s.copied = true
	s.copyGen++
	gen := s.copyGen
	s.copyTimer = s.scheduler.AfterFunc(s.copiedWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.copyGen == gen {
			s.copied = false
			s.copyTimer = nil
		}
	})
	return CopyResult{Text: prompt, Copied: true}
}

// CopyHistory hands the history entry at index to the clipboard. Clipboard
// failures are logged; only a bad index is an error.
func (s *Session) CopyHistory(ctx context.Context, index int) (CopyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.history.At(index)
	if err != nil {
		return CopyResult{}, err
	}
	if s.clipboard != nil {
		if err := s.clipboard.WriteText(ctx, text); err != nil {
			s.logger.Error("failed to copy history entry", "index", index, "error", err)
			return CopyResult{Text: text}, nil
		}
	}
	return CopyResult{Text: text, Copied: true}, nil
}

// AddValue appends value to category. Whitespace-only values are ignored.
func (s *Session) AddValue(ctx context.Context, category, value string) (bool, error) {
	return s.mutate(ctx, func(ds dice.Dataset) (bool, error) {
		return ds.Add(category, value), nil
	})
}

// UpdateValue replaces the value at index in category. Whitespace-only values
// are ignored; an invalid index returns dice.ErrIndexOutOfRange.
func (s *Session) UpdateValue(ctx context.Context, category string, index int, value string) (bool, error) {
	return s.mutate(ctx, func(ds dice.Dataset) (bool, error) {
		return ds.Update(category, index, value)
	})
}

// DeleteValue removes the value at index in category.
func (s *Session) DeleteValue(ctx context.Context, category string, index int) error {
	_, err := s.mutate(ctx, func(ds dice.Dataset) (bool, error) {
		return true, ds.Delete(category, index)
	})
	return err
}

// mutate applies fn to a copy of the dataset and persists it before making it
// current, so a failed write leaves the session unchanged.
func (s *Session) mutate(ctx context.Context, fn func(dice.Dataset) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.dataset.Clone()
	changed, err := fn(next)
	if err != nil || !changed {
		return false, err
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyDataset, next); err != nil {
		return false, fmt.Errorf("failed to save dataset: %w", err)
	}
	s.dataset = next
	return true, nil
}

// Reset restores the default dataset, re-parses the template and clears the
// history. It is unconditional; use ConfirmAndReset at user-facing boundaries.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// History goes first; if the dataset write then fails the old history is
	// put back so storage never holds half a reset.
	dataset := dice.DefaultDataset()
	if err := storage.SaveJSON(ctx, s.store, storage.KeyHistory, []string{}); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyDataset, dataset); err != nil {
		if rerr := storage.SaveJSON(ctx, s.store, storage.KeyHistory, s.history.Entries()); rerr != nil {
			s.logger.Error("failed to restore history after aborted reset", "error", rerr)
		}
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	if s.copyTimer != nil {
		s.copyTimer.Stop()
		s.copyTimer = nil
	}
	s.copyGen++
	s.copied = false
	s.dataset = dataset
	s.segments = dice.Parse(s.template)
	s.history = NewHistory(nil)
	s.phase = PhaseIdle
	s.logger.Info("session reset to defaults")
	return nil
}
