package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/locks"
	"github.com/gin-gonic/gin"
)

type LockHandler struct {
	service locks.LockUseCase
}

type createLockRequest struct {
	HotelID    int64  `json:"hotel_id"`
	RoomType   string `json:"room_type"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Quantity   int    `json:"quantity"`
	GuestEmail string `json:"guest_email"`
}

type consumeLockRequest struct {
	HotelID  int64  `json:"hotel_id"`
	RoomType string `json:"room_type"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type lockResponse struct {
	LockID    string `json:"lock_id"`
	HotelID   int64  `json:"hotel_id"`
	RoomType  string `json:"room_type"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

func NewLockHandler(service locks.LockUseCase) *LockHandler {
	return &LockHandler{service: service}
}

func (h *LockHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.status)
	router.POST("/:id/extend", h.extend)
	router.POST("/:id/release", h.release)
	router.POST("/:id/consume", h.consume)
}

func (h *LockHandler) create(c *gin.Context) {
	var req createLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dr, err := domain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	hold, err := h.service.CreateLock(c.Request.Context(), locks.CreateLockInput{
		HotelID:    req.HotelID,
		RoomType:   req.RoomType,
		DateRange:  dr,
		Quantity:   req.Quantity,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLockResponse(hold))
}

func (h *LockHandler) status(c *gin.Context) {
	hold, err := h.service.GetLockStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(hold))
}

func (h *LockHandler) extend(c *gin.Context) {
	hold, err := h.service.ExtendLock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLockResponse(hold))
}

// release always reports success for unknown tokens: cleanup callers
// cannot know whether the lock already expired.
func (h *LockHandler) release(c *gin.Context) {
	if err := h.service.ReleaseLock(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

func (h *LockHandler) consume(c *gin.Context) {
	var req consumeLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dr, err := domain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.service.ConsumeLock(c.Request.Context(), locks.ConsumeLockInput{
		Token:     c.Param("id"),
		HotelID:   req.HotelID,
		RoomType:  req.RoomType,
		DateRange: dr,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consumed": true})
}

func toLockResponse(hold *domain.ReservationHold) lockResponse {
	return lockResponse{
		LockID:    hold.Token,
		HotelID:   hold.HotelID,
		RoomType:  hold.RoomType,
		CheckIn:   hold.DateRange.CheckIn.Format(domain.DateLayout),
		CheckOut:  hold.DateRange.CheckOut.Format(domain.DateLayout),
		Quantity:  hold.Quantity,
		Status:    string(hold.Status),
		CreatedAt: hold.CreatedAt.Format(time.RFC3339),
		ExpiresAt: hold.ExpiresAt.Format(time.RFC3339),
	}
}
