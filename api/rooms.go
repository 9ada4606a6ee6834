package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

type RoomTypeHandler struct {
	service rooms.RoomUseCase
}

func NewRoomTypeHandler(service rooms.RoomUseCase) *RoomTypeHandler {
	return &RoomTypeHandler{service: service}
}

func (h *RoomTypeHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/room-types", h.list)
}

func (h *RoomTypeHandler) list(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	types, err := h.service.ListRoomTypes(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}
