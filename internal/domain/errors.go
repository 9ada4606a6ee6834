package domain

import "errors"

var (
	ErrHotelNotFound        = errors.New("hotel not found")
	ErrRoomTypeNotFound     = errors.New("room type not found")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidDiscount      = errors.New("invalid discount type")
	ErrDiscountNotEligible  = errors.New("discount not eligible for the requested dates")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrHoldNotFound         = errors.New("hold not found")
	ErrHoldMismatch         = errors.New("hold does not match the requested reservation")
	ErrHoldLifetimeExceeded = errors.New("hold lifetime limit reached")
	// ErrStoreUnavailable marks infrastructure faults callers may retry
	// with backoff, as opposed to the non-retryable errors above.
	ErrStoreUnavailable = errors.New("lock store unavailable")
)
