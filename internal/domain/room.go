package domain

import "time"

// RoomTypeInfo is immutable reference data for one (hotel, room type) pair.
type RoomTypeInfo struct {
	HotelID        int64
	RoomType       string
	BasePriceCents int64
	TotalRooms     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
