package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"afitower-scraper/models"
	"afitower-scraper/utils"
)

// ErrBadPrice is returned when a price cell holds no parseable integer.
var ErrBadPrice = errors.New("unparseable price")

var (
	// roomsRegexp captures the room count in "2-комнатная квартира"
	roomsRegexp = regexp.MustCompile(`(\d+)\s*-?\s*комнатная`)
	// areaUnitRegexp matches the square-metre suffix
	areaUnitRegexp = regexp.MustCompile(`\s*м(²|2)\s*$`)
)

const studioToken = "Студия"

// Cleaner transforms RawUnits into normalized Units.
type Cleaner struct {
	logger   *utils.Logger
	complex  string
	building int
}

// NewCleaner creates a Cleaner stamping every unit with the given complex and building.
func NewCleaner(logger *utils.Logger, complex string, building int) *Cleaner {
	return &Cleaner{logger: logger, complex: complex, building: building}
}

// Clean converts one raw unit. A missing or malformed price is an error;
// an unrecognised room description is not.
func (c *Cleaner) Clean(r *models.RawUnit) (*models.Unit, error) {
	price, err := ParsePrice(r.PriceText)
	if err != nil {
		return nil, fmt.Errorf("cleaner: %s: price: %w", r.Source, err)
	}

	unit := &models.Unit{
		Complex:   c.complex,
		Building:  c.building,
		Section:   normaliseText(r.Section),
		Floor:     normaliseText(r.Floor),
		Number:    normaliseText(r.Number),
		Area:      ParseArea(r.AreaText),
		Price:     price,
		Furnished: normaliseText(r.Furnished),
		Source:    r.Source,
	}

	if rooms, ok := ParseRooms(r.RoomsText); ok {
		unit.Rooms = sql.NullString{String: rooms, Valid: true}
	} else {
		c.logger.Debug("[cleaner] No room count in %q (%s)", r.RoomsText, r.Source)
	}

	if r.HasSale {
		sale, err := ParsePrice(r.SalePriceText)
		if err != nil {
			return nil, fmt.Errorf("cleaner: %s: sale price: %w", r.Source, err)
		}
		unit.PriceSale = sql.NullInt64{Int64: sale, Valid: true}
	}

	return unit, nil
}

// ParseRooms returns StudioRooms for studios, the digit group of an
// "N-комнатная" description, or false when neither is present.
func ParseRooms(text string) (string, bool) {
	if strings.Contains(text, studioToken) {
		return models.StudioRooms, true
	}
	m := roomsRegexp.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// ParsePrice strips whitespace (the thousands separator) and the rouble sign.
// A decimal comma makes the price invalid.
//
//	"12 345 678 ₽" → 12345678
func ParsePrice(raw string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '₽' {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSuffix(strings.TrimSuffix(cleaned, "руб."), "р.")

	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadPrice)
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, raw)
	}
	return n, nil
}

// ParseArea drops the "м²" unit and uses a dot as decimal separator.
func ParseArea(raw string) string {
	s := areaUnitRegexp.ReplaceAllString(normaliseText(raw), "")
	return strings.ReplaceAll(s, ",", ".")
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
