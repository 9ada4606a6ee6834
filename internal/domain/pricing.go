package domain

import "github.com/shopspring/decimal"

type Season string

const (
	SeasonPeak    Season = "peak"
	SeasonHigh    Season = "high"
	SeasonRegular Season = "regular"
	SeasonLow     Season = "low"
)

type DiscountType string

const (
	DiscountEarlyBird    DiscountType = "early_bird"
	DiscountLastMinute   DiscountType = "last_minute"
	DiscountExtendedStay DiscountType = "extended_stay"
	DiscountNone         DiscountType = "none"
)

func (d DiscountType) Valid() bool {
	switch d {
	case DiscountEarlyBird, DiscountLastMinute, DiscountExtendedStay, DiscountNone:
		return true
	}
	return false
}

// OccupancySnapshot is the committed-room count for a (hotel, room type,
// date range) at quote time. Derived, never stored.
type OccupancySnapshot struct {
	BookedRooms int
	LockedRooms int
	TotalRooms  int
	Rate        decimal.Decimal
}

// PriceBreakdown records every stage of the quote computation.
// Per-night values after each stage keep full precision; only
// PricePerNight, TaxAmount and the totals derived from them are rounded
// to the currency's minor unit.
type PriceBreakdown struct {
	BasePrice           decimal.Decimal
	Nights              int
	Quantity            int
	Season              Season
	SeasonMultiplier    decimal.Decimal
	OccupancyRate       decimal.Decimal
	OccupancyMultiplier decimal.Decimal
	DiscountType        DiscountType
	DiscountMultiplier  decimal.Decimal
	PriceAfterSeason    decimal.Decimal
	PriceAfterOccupancy decimal.Decimal
	PriceAfterDiscount  decimal.Decimal
	PricePerNight       decimal.Decimal
	Subtotal            decimal.Decimal
	TaxRate             decimal.Decimal
	TaxAmount           decimal.Decimal
	TotalPrice          decimal.Decimal
}
