package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRoomUseCase struct {
	mock.Mock
}

func (m *MockRoomUseCase) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomTypeInfo), args.Error(1)
}

func (m *MockRoomUseCase) GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error) {
	args := m.Called(ctx, hotelID, roomType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomTypeInfo), args.Error(1)
}

func newRoomRouter(service rooms.RoomUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewRoomTypeHandler(service).Register(router.Group("/api/v1/hotels"))
	return router
}

func TestRoomTypeHandler_List(t *testing.T) {
	service := &MockRoomUseCase{}
	router := newRoomRouter(service)

	service.On("ListRoomTypes", mock.Anything, int64(7)).Return([]domain.RoomTypeInfo{
		{HotelID: 7, RoomType: "double", BasePriceCents: 15000, TotalRooms: 20},
		{HotelID: 7, RoomType: "suite", BasePriceCents: 50000, TotalRooms: 5},
	}, nil).Once()

	w := performJSON(t, router, http.MethodGet, "/api/v1/hotels/7/room-types", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []domain.RoomTypeInfo
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "double", resp[0].RoomType)

	service.AssertExpectations(t)
}

func TestRoomTypeHandler_List_BadHotelID(t *testing.T) {
	service := &MockRoomUseCase{}
	router := newRoomRouter(service)

	w := performJSON(t, router, http.MethodGet, "/api/v1/hotels/abc/room-types", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "ListRoomTypes", mock.Anything, mock.Anything)
}

func TestRoomTypeHandler_List_UnknownHotel(t *testing.T) {
	service := &MockRoomUseCase{}
	router := newRoomRouter(service)

	service.On("ListRoomTypes", mock.Anything, int64(404)).Return(nil, domain.ErrHotelNotFound).Once()

	w := performJSON(t, router, http.MethodGet, "/api/v1/hotels/404/room-types", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
