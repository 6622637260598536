// Package clipboard writes text to the system clipboard of the machine running
// the server.
package clipboard

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned when the platform has no usable clipboard.
var ErrUnavailable = errors.New("system clipboard not available")

// System writes to the host clipboard. The zero value is ready to use.
type System struct {
	once    sync.Once
	initErr error
}

// New returns a System clipboard.
func New() *System {
	return &System{}
}

// Available reports whether this build can reach a clipboard at all.
func Available() bool {
	return available
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.once.Do(func() { s.initErr = initClipboard() })
	if s.initErr != nil {
		return s.initErr
	}
	return writeText(text)
}
