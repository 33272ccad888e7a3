package detail

import (
	"fmt"
	"strings"
)

// Layout names a known arrangement of the unit parameter list.
type Layout string

const (
	// WithSection pages show a section code right after the floor.
	WithSection Layout = "with_section"
	// WithoutSection pages carry one more parameter before floor and section.
	WithoutSection Layout = "without_section"
)

// FieldMap holds positions within the parameter list.
type FieldMap struct {
	Section int
	Floor   int
	Price   int
}

// sectionProbe is the position sniffed for a section code.
const sectionProbe = 5

var layouts = map[Layout]FieldMap{
	WithSection:    {Section: 5, Floor: 4, Price: 6},
	WithoutSection: {Section: 6, Floor: 5, Price: 7},
}

// Fields returns the positions for l.
func (l Layout) Fields() FieldMap {
	return layouts[l]
}

// DetectLayout looks at the parameter at sectionProbe: a known section code
// there means WithSection, anything else WithoutSection.
func DetectLayout(values []string, sectionCodes []string) Layout {
	if len(values) <= sectionProbe {
		return WithoutSection
	}
	probe := strings.ToLower(strings.TrimSpace(values[sectionProbe]))
	for _, code := range sectionCodes {
		if probe == strings.ToLower(strings.TrimSpace(code)) {
			return WithSection
		}
	}
	return WithoutSection
}

// Resolve detects the layout and checks the parameter list is long enough for it.
func Resolve(values []string, sectionCodes []string) (Layout, FieldMap, error) {
	if len(values) <= sectionProbe {
		return "", FieldMap{}, fmt.Errorf("%w: %d parameters, need more than %d", ErrMissingField, len(values), sectionProbe)
	}
	layout := DetectLayout(values, sectionCodes)
	fm := layout.Fields()
	if fm.Price >= len(values) {
		return "", FieldMap{}, fmt.Errorf("%w: %s layout needs %d parameters, got %d", ErrMissingField, layout, fm.Price+1, len(values))
	}
	return layout, fm, nil
}
