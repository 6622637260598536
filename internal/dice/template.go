// Package dice holds the prompt template model: the built-in dataset, the
// template parser, the roll engine and the category mutations.
package dice

import (
	"regexp"
	"strings"
)

// markerPattern matches a **category** slot. The match is non-greedy so
// adjacent markers stay separate.
var markerPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// MarkerDelimiter is the literal that opens and closes a slot marker.
const MarkerDelimiter = "**"

// SegmentKind distinguishes literal template text from a category slot.
type SegmentKind string

const (
	KindStatic  SegmentKind = "static"
	KindDynamic SegmentKind = "dynamic"
)

// Segment is one piece of a parsed template.
type Segment struct {
	Kind SegmentKind `json:"type"`
	// Value is the literal text for static segments and the current fill for
	// dynamic ones. Before the first roll it equals Category.
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
	IsError  bool   `json:"isError,omitempty"`
	// Resolved is set once a dynamic slot has been rolled or edited. An
	// unresolved slot renders as its **category** marker.
	Resolved bool `json:"resolved,omitempty"`
}

// IsDynamic reports whether the segment is a category slot.
func (s Segment) IsDynamic() bool {
	return s.Kind == KindDynamic
}

// Parse splits template into static text and dynamic slots. Marker content
// is used verbatim as the category name. A template without markers yields a
// single static segment.
func Parse(template string) []Segment {
	var segments []Segment
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(template, -1) {
		if m[0] > last {
			segments = append(segments, Segment{Kind: KindStatic, Value: template[last:m[0]]})
		}
		category := template[m[2]:m[3]]
		segments = append(segments, Segment{Kind: KindDynamic, Value: category, Category: category})
		last = m[1]
	}
	if last < len(template) {
		segments = append(segments, Segment{Kind: KindStatic, Value: template[last:]})
	}
	return segments
}

// Render joins the segment values and trims surrounding whitespace.
func Render(segments []Segment) string {
	return strings.TrimSpace(Join(segments))
}

// Join concatenates segment values without trimming. Unresolved slots are
// written back as markers, so Join(Parse(t)) == t.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.IsDynamic() && !s.Resolved {
			b.WriteString(MarkerDelimiter + s.Category + MarkerDelimiter)
			continue
		}
		b.WriteString(s.Value)
	}
	return b.String()
}
