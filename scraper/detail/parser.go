package detail

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"afitower-scraper/config"
	"afitower-scraper/models"
)

// ErrMissingField is returned when a detail page lacks an expected element.
var ErrMissingField = errors.New("missing field")

// Parameter list positions that do not depend on the layout.
const (
	areaField      = 0
	roomsField     = 1
	furnishedField = 2
)

// Parser turns a detail page into a RawUnit.
type Parser struct {
	site config.Site
}

// NewParser creates a Parser for the given site calibration.
func NewParser(site config.Site) *Parser {
	return &Parser{site: site}
}

// Parse reads one detail page. link is recorded as the unit's source.
func (p *Parser) Parse(r io.Reader, link string) (*models.RawUnit, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: parse HTML: %w", link, err)
	}

	fields := doc.Find(p.site.FieldSelector)
	values := fields.Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})

	layout, fm, err := Resolve(values, p.site.SectionCodes)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", link, err)
	}

	title := doc.Find(p.site.TitleSelector).First()
	if title.Length() == 0 {
		return nil, fmt.Errorf("parser: %s: %w: %s", link, ErrMissingField, p.site.TitleSelector)
	}

	price, sale, hasSale, err := extractPrices(fields.Eq(fm.Price))
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", link, err)
	}

	return &models.RawUnit{
		Section:       strings.TrimSpace(values[fm.Section]),
		Floor:         strings.TrimSpace(values[fm.Floor]),
		Number:        strings.TrimSpace(title.Text()),
		RoomsText:     values[roomsField],
		AreaText:      values[areaField],
		PriceText:     price,
		SalePriceText: sale,
		HasSale:       hasSale,
		Furnished:     strings.TrimSpace(values[furnishedField]),
		Source:        link,
		Layout:        string(layout),
	}, nil
}

// extractPrices reads the price parameter. A nested div holds the discounted
// price, and the full price then sits in a sibling span (struck through on the
// page). Without the div the parameter's own text is the only price.
func extractPrices(field *goquery.Selection) (price, sale string, hasSale bool, err error) {
	nested := field.Find("div").First()
	if nested.Length() == 0 {
		return strings.TrimSpace(field.Text()), "", false, nil
	}

	full := nested.SiblingsFiltered("span").First()
	if full.Length() == 0 {
		full = field.ChildrenFiltered("span").First()
	}
	if full.Length() == 0 {
		return "", "", false, fmt.Errorf("%w: full price next to discount", ErrMissingField)
	}
	return strings.TrimSpace(full.Text()), strings.TrimSpace(nested.Text()), true, nil
}
