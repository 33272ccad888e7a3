package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Site holds the calibration constants tied to one listing site's markup.
type Site struct {
	ButtonSelector  string `yaml:"button_selector"`
	PreviewSelector string `yaml:"preview_selector"`
	FieldSelector   string `yaml:"field_selector"`
	TitleSelector   string `yaml:"title_selector"`

	// ButtonOffset skips the non-pagination buttons sharing the button class.
	ButtonOffset int `yaml:"button_offset"`
	// ButtonStride is how many buttons each "load more" click appends.
	ButtonStride int `yaml:"button_stride"`

	SectionCodes []string `yaml:"section_codes"`

	Complex  string `yaml:"complex"`
	Building int    `yaml:"building"`
}

// DefaultSite returns the calibration for afitower.ru.
func DefaultSite() Site {
	return Site{
		ButtonSelector:  ".button_inline",
		PreviewSelector: ".room-preview",
		FieldSelector:   ".room-params__value",
		TitleSelector:   ".room__title",
		ButtonOffset:    14,
		ButtonStride:    7,
		SectionCodes:    []string{"а", "б"},
		Complex:         "Afi Tower",
		Building:        1,
	}
}

// LoadSite overlays the YAML file at path onto site. Keys absent from the
// file keep their current values.
func LoadSite(path string, site *Site) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read site file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, site); err != nil {
		return fmt.Errorf("config: parse site file %q: %w", path, err)
	}
	if site.ButtonStride <= 0 {
		return fmt.Errorf("config: site file %q: button_stride must be positive, got %d", path, site.ButtonStride)
	}
	if site.ButtonOffset < 0 {
		return fmt.Errorf("config: site file %q: button_offset must not be negative, got %d", path, site.ButtonOffset)
	}
	return nil
}
