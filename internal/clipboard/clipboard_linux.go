//go:build linux

package clipboard

import "fmt"

// Linux builds are usually headless servers without X11.
const available = false

func initClipboard() error {
	return fmt.Errorf("%w: linux without X11", ErrUnavailable)
}

func writeText(string) error {
	return ErrUnavailable
}
