package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"afitower-scraper/models"
	"afitower-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(units []*models.Unit) *models.InsightReport {
	report := &models.InsightReport{
		UnitsByRooms: make(map[string]int),
	}

	if len(units) == 0 {
		return report
	}

	report.TotalUnits = len(units)
	report.MinPrice = units[0].Price
	report.MaxPrice = units[0].Price
	report.Cheapest = units[0]

	var total float64
	for _, u := range units {
		total += float64(u.Price)
		if u.Price < report.MinPrice {
			report.MinPrice = u.Price
			report.Cheapest = u
		}
		if u.Price > report.MaxPrice {
			report.MaxPrice = u.Price
		}
		if u.PriceSale.Valid {
			report.DiscountedUnits++
		}

		rooms := "unknown"
		if u.Rooms.Valid {
			rooms = u.Rooms.String
		}
		report.UnitsByRooms[rooms]++
	}
	report.AveragePrice = round2(total / float64(len(units)))

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  UNIT SCRAPE SUMMARY\n")
	fmt.Fprintf(w, "%s\n\n", sep)

	fmt.Fprintf(w, "  Total units      : %d\n", r.TotalUnits)
	fmt.Fprintf(w, "  With discount    : %d\n", r.DiscountedUnits)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Prices\n  %s\n", thin)
	if r.TotalUnits > 0 {
		fmt.Fprintf(w, "  Average : %.2f ₽\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum : %d ₽\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum : %d ₽\n", r.MaxPrice)
		if r.Cheapest != nil {
			fmt.Fprintf(w, "  Cheapest: %s (%s)\n", r.Cheapest.Number, r.Cheapest.Source)
		}
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Units by rooms\n  %s\n", thin)
	keys := make([]string, 0, len(r.UnitsByRooms))
	for k := range r.UnitsByRooms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %s (%d)\n", k, strings.Repeat("█", r.UnitsByRooms[k]), r.UnitsByRooms[k])
	}

	fmt.Fprintf(w, "\n%s\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
