package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// errorStatus maps the domain error taxonomy onto HTTP statuses. Capacity
// and mismatch conflicts are 409 so clients can tell "retry with other
// parameters" apart from plain bad input; store faults are 503 so they
// can retry with backoff.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrHoldNotFound),
		errors.Is(err, domain.ErrHotelNotFound),
		errors.Is(err, domain.ErrRoomTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientCapacity),
		errors.Is(err, domain.ErrHoldMismatch),
		errors.Is(err, domain.ErrHoldLifetimeExceeded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
