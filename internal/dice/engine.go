package dice

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Roller picks an index in [0, n). *rand.Rand satisfies it.
type Roller interface {
	IntN(n int) int
}

type globalRoller struct{}

func (globalRoller) IntN(n int) int { return rand.IntN(n) }

// DefaultRoller draws from the process-wide math/rand/v2 source.
var DefaultRoller Roller = globalRoller{}

// MissingValuesPlaceholder is what a slot shows when its category has no
// candidates.
func MissingValuesPlaceholder(category string) string {
	return fmt.Sprintf("[No values for %s]", category)
}

// Sanitize strips apostrophes from a rolled value.
func Sanitize(value string) string {
	return strings.ReplaceAll(value, "'", "")
}

// Pick rolls one value for category. ok is false when the dataset has no
// candidates for it.
func Pick(ds Dataset, category string, r Roller) (value string, ok bool) {
	values := ds[category]
	if len(values) == 0 {
		return "", false
	}
	if r == nil {
		r = DefaultRoller
	}
	return Sanitize(values[r.IntN(len(values))]), true
}

// Resolve returns a new segment sequence with every dynamic slot rolled
// against ds. Slots whose category is empty or absent get the missing-values
// placeholder and IsError set. The input is not modified.
func Resolve(segments []Segment, ds Dataset, r Roller) []Segment {
	out := slices.Clone(segments)
	for i, seg := range out {
		if !seg.IsDynamic() {
			continue
		}
		out[i].Resolved = true
		if value, ok := Pick(ds, seg.Category, r); ok {
			out[i].Value = value
			out[i].IsError = false
		} else {
			out[i].Value = MissingValuesPlaceholder(seg.Category)
			out[i].IsError = true
		}
	}
	return out
}
