package models

import "database/sql"

// Columns is the output schema, in declaration order of Unit.
var Columns = []string{
	"complex", "faza", "building", "section", "floor", "floor_number", "number",
	"rooms", "area", "area_living", "area_kitchen", "price", "price_sale",
	"furnished", "is_furniture", "type", "plan", "source", "deadline",
}

// StudioRooms is the room count recorded for studio layouts.
const StudioRooms = "1c"

// RawUnit holds the unparsed strings scraped from one detail page.
type RawUnit struct {
	Section       string
	Floor         string
	Number        string
	RoomsText     string
	AreaText      string
	PriceText     string
	SalePriceText string
	HasSale       bool
	Furnished     string
	Source        string
	Layout        string
}

// Unit is one normalized row of the result table.
// Faza, FloorNumber, AreaLiving, AreaKitchen, IsFurniture, Type, Plan and
// Deadline are reserved columns and are never populated.
type Unit struct {
	Complex     string
	Faza        sql.NullString
	Building    int
	Section     string
	Floor       string
	FloorNumber sql.NullString
	Number      string
	Rooms       sql.NullString
	Area        string
	AreaLiving  sql.NullString
	AreaKitchen sql.NullString
	Price       int64
	PriceSale   sql.NullInt64
	Furnished   string
	IsFurniture sql.NullString
	Type        sql.NullString
	Plan        sql.NullString
	Source      string
	Deadline    sql.NullString
}

// Row returns the unit's cell values in Columns order. Null values are nil.
func (u *Unit) Row() []any {
	return []any{
		u.Complex,
		nullString(u.Faza),
		u.Building,
		u.Section,
		u.Floor,
		nullString(u.FloorNumber),
		u.Number,
		nullString(u.Rooms),
		u.Area,
		nullString(u.AreaLiving),
		nullString(u.AreaKitchen),
		u.Price,
		nullInt(u.PriceSale),
		u.Furnished,
		nullString(u.IsFurniture),
		nullString(u.Type),
		nullString(u.Plan),
		u.Source,
		nullString(u.Deadline),
	}
}

func nullString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func nullInt(v sql.NullInt64) any {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

// InsightReport holds summary figures over the result table.
type InsightReport struct {
	TotalUnits      int
	DiscountedUnits int
	AveragePrice    float64
	MinPrice        int64
	MaxPrice        int64
	Cheapest        *Unit
	UnitsByRooms    map[string]int
}
