package dice

import (
	"slices"
	"sort"
)

// DefaultTemplate is the prompt template rolled by both the session and the
// standalone generate endpoint.
const DefaultTemplate = "A young woman, **descriptive adjective**, with **hair color** hair in a **hairstyle**, **build**, wearing **outfit** with **accessories** while **activity**."

// Dataset maps a category name to its ordered candidate values.
type Dataset map[string][]string

// defaultOrder is the display order of the built-in categories.
var defaultOrder = []string{
	"descriptive adjective",
	"hair color",
	"hairstyle",
	"build",
	"outfit",
	"accessories",
	"activity",
}

var defaultValues = map[string][]string{
	"descriptive adjective": {"ethereal", "fierce", "shy", "gregarious", "stoic", "quirky", "elegant"},
	"hair color":            {"auburn", "jet-black", "platinum blonde", "electric blue", "emerald green", "sun-kissed brown"},
	"hairstyle":             {"messy bun", "sharp bob", "long braids", "undercut", "flowing waves", "tight cornrows"},
	"build":                 {"athletic", "slender", "curvy", "petite", "towering", "stocky"},
	"outfit":                {"a worn leather jacket and jeans", "a flowing silk gown", "tactical gear", "a vibrant sundress", "a tailored business suit"},
	"accessories":           {"a mysterious amulet", "cybernetic eye-wear", "a garland of flowers", "a collection of silver rings", "a well-used satchel"},
	"activity":              {"reading an ancient tome", "calibrating a futuristic rifle", "tending to a rooftop garden", "haggling at a street market", "leading a board meeting"},
}

// DefaultDataset returns a fresh copy of the built-in dataset.
// Callers may mutate the result freely.
func DefaultDataset() Dataset {
	return Dataset(defaultValues).Clone()
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for k, v := range d {
		out[k] = slices.Clone(v)
	}
	return out
}

// Categories returns the category names in display order: built-in
// categories first in their authored order, then any others sorted.
func (d Dataset) Categories() []string {
	names := make([]string, 0, len(d))
	for _, name := range defaultOrder {
		if _, ok := d[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range d {
		if !slices.Contains(defaultOrder, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
