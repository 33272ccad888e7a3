package detail

import (
	"errors"
	"testing"
)

var codes = []string{"а", "б"}

func params(probe string) []string {
	return []string{"42 м²", "Студия", "Без отделки", "2024", "12", probe, "x", "y"}
}

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name  string
		probe string
		want  Layout
		fm    FieldMap
	}{
		{"lower а", "а", WithSection, FieldMap{Section: 5, Floor: 4, Price: 6}},
		{"lower б", "б", WithSection, FieldMap{Section: 5, Floor: 4, Price: 6}},
		{"upper А", "А", WithSection, FieldMap{Section: 5, Floor: 4, Price: 6}},
		{"padded Б", "  Б \n", WithSection, FieldMap{Section: 5, Floor: 4, Price: 6}},
		{"floor number", "14", WithoutSection, FieldMap{Section: 6, Floor: 5, Price: 7}},
		{"latin a", "a", WithoutSection, FieldMap{Section: 6, Floor: 5, Price: 7}},
		{"other letter", "в", WithoutSection, FieldMap{Section: 6, Floor: 5, Price: 7}},
		{"empty", "", WithoutSection, FieldMap{Section: 6, Floor: 5, Price: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLayout(params(tt.probe), codes)
			if got != tt.want {
				t.Errorf("DetectLayout() = %s, want %s", got, tt.want)
			}
			if got.Fields() != tt.fm {
				t.Errorf("Fields() = %+v, want %+v", got.Fields(), tt.fm)
			}
		})
	}
}

func TestResolveChecksLength(t *testing.T) {
	// Seven parameters are enough for WithSection (price at 6) but not WithoutSection.
	short := params("а")[:7]
	if _, _, err := Resolve(short, codes); err != nil {
		t.Errorf("with_section on 7 params: unexpected error %v", err)
	}

	short = params("14")[:7]
	if _, _, err := Resolve(short, codes); !errors.Is(err, ErrMissingField) {
		t.Errorf("without_section on 7 params: got %v, want ErrMissingField", err)
	}

	if _, _, err := Resolve([]string{"a", "b"}, codes); !errors.Is(err, ErrMissingField) {
		t.Errorf("2 params: got %v, want ErrMissingField", err)
	}
}
