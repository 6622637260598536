//go:build !linux

package clipboard

import (
	"fmt"

	"golang.design/x/clipboard"
)

const available = true

func initClipboard() error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func writeText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
