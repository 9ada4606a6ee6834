package api

import (
	"net/http"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/pricing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type QuoteHandler struct {
	service pricing.PricingUseCase
}

type quoteRequest struct {
	HotelID      int64  `json:"hotel_id"`
	RoomType     string `json:"room_type"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	Quantity     int    `json:"quantity"`
	DiscountType string `json:"discount_type"`
}

type quoteResponse struct {
	HotelID        int64          `json:"hotel_id"`
	RoomType       string         `json:"room_type"`
	CheckIn        string         `json:"check_in"`
	CheckOut       string         `json:"check_out"`
	Quantity       int            `json:"quantity"`
	AvailableRooms int            `json:"available_rooms"`
	Breakdown      breakdownBody  `json:"breakdown"`
}

type breakdownBody struct {
	BasePrice           decimal.Decimal `json:"base_price"`
	Nights              int             `json:"nights"`
	Quantity            int             `json:"quantity"`
	Season              string          `json:"season"`
	SeasonMultiplier    decimal.Decimal `json:"season_multiplier"`
	OccupancyRate       decimal.Decimal `json:"occupancy_rate"`
	OccupancyMultiplier decimal.Decimal `json:"occupancy_multiplier"`
	DiscountType        string          `json:"discount_type"`
	DiscountMultiplier  decimal.Decimal `json:"discount_multiplier"`
	PriceAfterSeason    decimal.Decimal `json:"price_after_season"`
	PriceAfterOccupancy decimal.Decimal `json:"price_after_occupancy"`
	PriceAfterDiscount  decimal.Decimal `json:"price_after_discount"`
	PricePerNight       decimal.Decimal `json:"price_per_night"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	TotalPrice          decimal.Decimal `json:"total_price"`
}

func NewQuoteHandler(service pricing.PricingUseCase) *QuoteHandler {
	return &QuoteHandler{service: service}
}

func (h *QuoteHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.quote)
}

func (h *QuoteHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dr, err := domain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), pricing.QuoteInput{
		HotelID:      req.HotelID,
		RoomType:     req.RoomType,
		DateRange:    dr,
		Quantity:     req.Quantity,
		DiscountType: domain.DiscountType(req.DiscountType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	b := quote.Breakdown
	c.JSON(http.StatusOK, quoteResponse{
		HotelID:        quote.HotelID,
		RoomType:       quote.RoomType,
		CheckIn:        quote.DateRange.CheckIn.Format(domain.DateLayout),
		CheckOut:       quote.DateRange.CheckOut.Format(domain.DateLayout),
		Quantity:       quote.Quantity,
		AvailableRooms: quote.AvailableRooms,
		Breakdown: breakdownBody{
			BasePrice:           b.BasePrice,
			Nights:              b.Nights,
			Quantity:            b.Quantity,
			Season:              string(b.Season),
			SeasonMultiplier:    b.SeasonMultiplier,
			OccupancyRate:       b.OccupancyRate,
			OccupancyMultiplier: b.OccupancyMultiplier,
			DiscountType:        string(b.DiscountType),
			DiscountMultiplier:  b.DiscountMultiplier,
			PriceAfterSeason:    b.PriceAfterSeason,
			PriceAfterOccupancy: b.PriceAfterOccupancy,
			PriceAfterDiscount:  b.PriceAfterDiscount,
			PricePerNight:       b.PricePerNight,
			Subtotal:            b.Subtotal,
			TaxRate:             b.TaxRate,
			TaxAmount:           b.TaxAmount,
			TotalPrice:          b.TotalPrice,
		},
	})
}
