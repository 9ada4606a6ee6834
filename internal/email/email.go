package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/hotelbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send prints the funnel notification. Events without a guest email are
// skipped silently; not every hold carries one.
func (s *Sender) Send(ctx context.Context, event kafka.LockEvent) error {
	if event.GuestEmail == "" {
		return nil
	}
	fmt.Printf("send email to %s about %s for hotel %d %s x%d (%s to %s)\n",
		event.GuestEmail, event.Type, event.HotelID, event.RoomType, event.Quantity, event.CheckIn, event.CheckOut)
	return nil
}
