package pricing

import (
	"context"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/clock"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/shopspring/decimal"
)

type PricingUseCase interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

// OccupancyReader supplies the committed-room snapshot. The lock manager
// implements it; the engine itself holds no state.
type OccupancyReader interface {
	Occupancy(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (domain.OccupancySnapshot, error)
}

type PricingService struct {
	rooms       repository.RoomRepository
	occupancy   OccupancyReader
	clock       clock.Clock
	rules       Rules
	maxQuantity int
}

type QuoteInput struct {
	HotelID      int64
	RoomType     string
	DateRange    domain.DateRange
	Quantity     int
	DiscountType domain.DiscountType
}

// Quote couples the price breakdown with the availability that backed it,
// so a caller never sees a price for rooms it cannot reserve.
type Quote struct {
	HotelID        int64
	RoomType       string
	DateRange      domain.DateRange
	Quantity       int
	AvailableRooms int
	Breakdown      domain.PriceBreakdown
}

type PricingServiceOption func(*PricingService)

func WithMaxQuantity(n int) PricingServiceOption {
	return func(s *PricingService) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

func WithTaxRate(rate decimal.Decimal) PricingServiceOption {
	return func(s *PricingService) {
		s.rules.TaxRate = rate
	}
}

func NewPricingService(rooms repository.RoomRepository, occupancy OccupancyReader, clk clock.Clock, opts ...PricingServiceOption) *PricingService {
	service := &PricingService{
		rooms:       rooms,
		occupancy:   occupancy,
		clock:       clk,
		rules:       DefaultRules(),
		maxQuantity: 10,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Quote computes a deterministic price for the requested stay. Stage
// order is fixed: season, then occupancy surge, then discount; each
// multiplier applies to the previous stage's per-night price.
func (s *PricingService) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.Quantity < 1 || input.Quantity > s.maxQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if err := input.DateRange.Validate(); err != nil {
		return nil, err
	}
	if input.DiscountType == "" {
		input.DiscountType = domain.DiscountNone
	}
	if !input.DiscountType.Valid() {
		return nil, domain.ErrInvalidDiscount
	}

	info, err := s.rooms.GetRoomType(ctx, input.HotelID, input.RoomType)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.occupancy.Occupancy(ctx, input.HotelID, input.RoomType, input.DateRange)
	if err != nil {
		return nil, err
	}

	available := snapshot.TotalRooms - snapshot.BookedRooms - snapshot.LockedRooms
	if available < 0 {
		available = 0
	}
	if input.Quantity > available {
		return nil, domain.ErrInsufficientCapacity
	}

	nights := input.DateRange.Nights()
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	leadDays := int(input.DateRange.CheckIn.Sub(today) / (24 * time.Hour))

	season := s.rules.SeasonFor(input.DateRange.CheckIn)
	seasonMult := s.rules.SeasonMultiplier(season)
	occupancyMult := s.rules.OccupancyMultiplier(snapshot.Rate)
	discountMult, err := s.rules.DiscountMultiplier(input.DiscountType, leadDays, nights)
	if err != nil {
		return nil, err
	}

	basePrice := decimal.New(info.BasePriceCents, -2)
	afterSeason := basePrice.Mul(seasonMult)
	afterOccupancy := afterSeason.Mul(occupancyMult)
	afterDiscount := afterOccupancy.Mul(discountMult)

	// Rounding to the minor unit happens once, at the per-night price;
	// everything after it is exact integer arithmetic on cents.
	perNight := afterDiscount.Round(2)
	subtotal := perNight.Mul(decimal.NewFromInt(int64(nights))).Mul(decimal.NewFromInt(int64(input.Quantity)))
	taxAmount := subtotal.Mul(s.rules.TaxRate).Round(2)
	total := subtotal.Add(taxAmount)

	return &Quote{
		HotelID:        input.HotelID,
		RoomType:       input.RoomType,
		DateRange:      input.DateRange,
		Quantity:       input.Quantity,
		AvailableRooms: available,
		Breakdown: domain.PriceBreakdown{
			BasePrice:           basePrice,
			Nights:              nights,
			Quantity:            input.Quantity,
			Season:              season,
			SeasonMultiplier:    seasonMult,
			OccupancyRate:       snapshot.Rate,
			OccupancyMultiplier: occupancyMult,
			DiscountType:        input.DiscountType,
			DiscountMultiplier:  discountMult,
			PriceAfterSeason:    afterSeason,
			PriceAfterOccupancy: afterOccupancy,
			PriceAfterDiscount:  afterDiscount,
			PricePerNight:       perNight,
			Subtotal:            subtotal,
			TaxRate:             s.rules.TaxRate,
			TaxAmount:           taxAmount,
			TotalPrice:          total,
		},
	}, nil
}

var _ PricingUseCase = (*PricingService)(nil)
