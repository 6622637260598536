package session

import (
	"fmt"
	"slices"

	"github.com/jackzampolin/promptdice/internal/dice"
)

// MaxHistory is the number of rendered prompts kept.
const MaxHistory = 10

// History is a bounded, most-recent-first list of rendered prompts.
type History struct {
	entries []string
}

// NewHistory wraps entries, dropping anything past MaxHistory.
func NewHistory(entries []string) *History {
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}
	return &History{entries: slices.Clone(entries)}
}

// Push prepends prompt and evicts the oldest entry past the bound.
func (h *History) Push(prompt string) {
	h.entries = append([]string{prompt}, h.entries...)
	if len(h.entries) > MaxHistory {
		h.entries = h.entries[:MaxHistory]
	}
}

// At returns the entry at index, 0 being the most recent.
func (h *History) At(index int) (string, error) {
	if index < 0 || index >= len(h.entries) {
		return "", fmt.Errorf("%w: history has %d entries, got index %d", dice.ErrIndexOutOfRange, len(h.entries), index)
	}
	return h.entries[index], nil
}

// Entries returns a copy of the entries, most recent first. Never nil.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{entries: slices.Clone(h.entries)}
}
