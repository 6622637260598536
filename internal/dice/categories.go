package dice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned when a value or slot index does not
	// address an existing element.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotDynamic is returned when a slot edit targets literal template text.
	ErrNotDynamic = errors.New("segment is not a dynamic slot")
)

// Add appends the trimmed value to category, creating the list if needed.
// Whitespace-only values are ignored and reported as unchanged.
func (d Dataset) Add(category, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	d[category] = append(d[category], value)
	return true
}

// Update replaces the value at index with the trimmed value. Whitespace-only
// values are ignored; an invalid index is an error.
func (d Dataset) Update(category string, index int, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	if err := d.checkIndex(category, index); err != nil {
		return false, err
	}
	d[category][index] = value
	return true, nil
}

// Delete removes the value at index.
func (d Dataset) Delete(category string, index int) error {
	if err := d.checkIndex(category, index); err != nil {
		return err
	}
	values := d[category]
	d[category] = append(values[:index:index], values[index+1:]...)
	return nil
}

func (d Dataset) checkIndex(category string, index int) error {
	if n := len(d[category]); index < 0 || index >= n {
		return fmt.Errorf("%w: %q has %d values, got index %d", ErrIndexOutOfRange, category, n, index)
	}
	return nil
}
