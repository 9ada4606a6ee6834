package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "ACTIVE"
	HoldStatusExtended HoldStatus = "EXTENDED"
	HoldStatusReleased HoldStatus = "RELEASED"
	HoldStatusExpired  HoldStatus = "EXPIRED"
	HoldStatusConsumed HoldStatus = "CONSUMED"
)

// ReservationHold is a time-boxed claim on N rooms of one room type.
// The store's TTL is the expiry mechanism; a hold that outlives its TTL
// simply disappears and is reported as not found.
type ReservationHold struct {
	Token      string
	HotelID    int64
	RoomType   string
	DateRange  DateRange
	Quantity   int
	GuestEmail string
	Status     HoldStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Live reports whether the hold still counts against capacity.
func (s HoldStatus) Live() bool {
	return s == HoldStatusActive || s == HoldStatusExtended
}
