package pricing

import (
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/shopspring/decimal"
)

// seasonWindow is a recurring month/day interval, inclusive on both ends.
// Windows may wrap the year boundary (Dec 20 - Jan 5).
type seasonWindow struct {
	startMonth, startDay int
	endMonth, endDay     int
}

type occupancyTier struct {
	Threshold  decimal.Decimal
	Multiplier decimal.Decimal
}

// Rules holds the pricing tables: season calendar, occupancy surge tiers
// and discount definitions. Multipliers are decimals end to end so two
// identical quotes are bit-identical.
type Rules struct {
	seasonWindows     map[domain.Season][]seasonWindow
	seasonMultipliers map[domain.Season]decimal.Decimal
	// occupancyTiers are ordered by descending threshold; the first tier
	// at or below the rate wins, so higher occupancy never prices lower.
	occupancyTiers []occupancyTier
	discounts      map[domain.DiscountType]decimal.Decimal
	TaxRate        decimal.Decimal
}

const (
	earlyBirdLeadDays  = 30
	lastMinuteLeadDays = 3
	extendedStayNights = 7
)

func DefaultRules() Rules {
	return Rules{
		seasonWindows: map[domain.Season][]seasonWindow{
			domain.SeasonPeak: {
				{12, 20, 1, 5},   // winter holidays
				{7, 1, 7, 15},    // early July
				{11, 22, 11, 28}, // Thanksgiving week
			},
			domain.SeasonHigh: {
				{6, 1, 8, 31}, // summer
				{3, 1, 4, 15}, // spring break
			},
			domain.SeasonLow: {
				{1, 15, 2, 28}, // post-holiday winter
				{9, 1, 10, 31}, // fall shoulder
			},
		},
		seasonMultipliers: map[domain.Season]decimal.Decimal{
			domain.SeasonPeak:    decimal.RequireFromString("1.5"),
			domain.SeasonHigh:    decimal.RequireFromString("1.25"),
			domain.SeasonRegular: decimal.RequireFromString("1.0"),
			domain.SeasonLow:     decimal.RequireFromString("0.85"),
		},
		occupancyTiers: []occupancyTier{
			{decimal.RequireFromString("0.90"), decimal.RequireFromString("1.4")},
			{decimal.RequireFromString("0.80"), decimal.RequireFromString("1.3")},
			{decimal.RequireFromString("0.70"), decimal.RequireFromString("1.2")},
			{decimal.RequireFromString("0.60"), decimal.RequireFromString("1.15")},
			{decimal.RequireFromString("0.50"), decimal.RequireFromString("1.1")},
			{decimal.Zero, decimal.RequireFromString("1.0")},
		},
		discounts: map[domain.DiscountType]decimal.Decimal{
			domain.DiscountEarlyBird:    decimal.RequireFromString("0.90"),
			domain.DiscountLastMinute:   decimal.RequireFromString("0.85"),
			domain.DiscountExtendedStay: decimal.RequireFromString("0.88"),
			domain.DiscountNone:         decimal.RequireFromString("1.0"),
		},
		TaxRate: decimal.RequireFromString("0.10"),
	}
}

// SeasonFor classifies a date by the check-in calendar. Peak wins over
// high, high over low; anything unmatched is regular.
func (r Rules) SeasonFor(date time.Time) domain.Season {
	month, day := int(date.Month()), date.Day()
	for _, season := range []domain.Season{domain.SeasonPeak, domain.SeasonHigh, domain.SeasonLow} {
		for _, w := range r.seasonWindows[season] {
			if w.contains(month, day) {
				return season
			}
		}
	}
	return domain.SeasonRegular
}

func (r Rules) SeasonMultiplier(season domain.Season) decimal.Decimal {
	if m, ok := r.seasonMultipliers[season]; ok {
		return m
	}
	return decimal.RequireFromString("1.0")
}

func (r Rules) OccupancyMultiplier(rate decimal.Decimal) decimal.Decimal {
	for _, tier := range r.occupancyTiers {
		if rate.GreaterThanOrEqual(tier.Threshold) {
			return tier.Multiplier
		}
	}
	return decimal.RequireFromString("1.0")
}

// DiscountMultiplier validates the caller-selected discount against the
// actual lead time and stay length; an ineligible selector is rejected
// rather than silently priced at full rate.
func (r Rules) DiscountMultiplier(dt domain.DiscountType, leadDays, nights int) (decimal.Decimal, error) {
	mult, ok := r.discounts[dt]
	if !ok {
		return decimal.Decimal{}, domain.ErrInvalidDiscount
	}

	switch dt {
	case domain.DiscountEarlyBird:
		if leadDays < earlyBirdLeadDays {
			return decimal.Decimal{}, domain.ErrDiscountNotEligible
		}
	case domain.DiscountLastMinute:
		if leadDays > lastMinuteLeadDays {
			return decimal.Decimal{}, domain.ErrDiscountNotEligible
		}
	case domain.DiscountExtendedStay:
		if nights < extendedStayNights {
			return decimal.Decimal{}, domain.ErrDiscountNotEligible
		}
	}
	return mult, nil
}

func (w seasonWindow) contains(month, day int) bool {
	if w.startMonth <= w.endMonth {
		if month < w.startMonth || month > w.endMonth {
			return false
		}
	} else {
		// wraps the year boundary
		if month > w.endMonth && month < w.startMonth {
			return false
		}
	}
	if month == w.startMonth && day < w.startDay {
		return false
	}
	if month == w.endMonth && day > w.endDay {
		return false
	}
	return true
}
