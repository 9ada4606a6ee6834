package locks

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/clock"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LockUseCase interface {
	CreateLock(ctx context.Context, input CreateLockInput) (*domain.ReservationHold, error)
	GetLockStatus(ctx context.Context, token string) (*domain.ReservationHold, error)
	ExtendLock(ctx context.Context, token string) (*domain.ReservationHold, error)
	ReleaseLock(ctx context.Context, token string) error
	ConsumeLock(ctx context.Context, input ConsumeLockInput) error
	Occupancy(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (domain.OccupancySnapshot, error)
	SweepExpiredLocks(ctx context.Context) ([]string, error)
}

// LockStore is the inventory lock store contract. Implementations must
// make CreateHold's capacity check and increment a single atomic step.
type LockStore interface {
	CreateHold(ctx context.Context, hold domain.ReservationHold, available int, ttl time.Duration) error
	GetHold(ctx context.Context, token string) (*domain.ReservationHold, error)
	ExtendHold(ctx context.Context, token string, ttl, maxLifetime time.Duration, now time.Time) (*domain.ReservationHold, error)
	ReleaseHold(ctx context.Context, token string) (*domain.ReservationHold, error)
	ConsumeHold(ctx context.Context, token string, hotelID int64, roomType string, dr domain.DateRange) (*domain.ReservationHold, error)
	LockedQuantity(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error)
	SweepExpired(ctx context.Context) ([]string, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type LockService struct {
	store              LockStore
	rooms              repository.RoomRepository
	producer           Producer
	clock              clock.Clock
	lockEventsTopic    string
	notificationsTopic string
	ttl                time.Duration
	maxLifetime        time.Duration
	maxQuantity        int
	maxNights          int
}

type CreateLockInput struct {
	HotelID    int64            `json:"hotel_id"`
	RoomType   string           `json:"room_type"`
	DateRange  domain.DateRange `json:"-"`
	Quantity   int              `json:"quantity"`
	GuestEmail string           `json:"guest_email"`
}

type ConsumeLockInput struct {
	Token     string
	HotelID   int64
	RoomType  string
	DateRange domain.DateRange
}

type LockServiceOption func(*LockService)

func WithNotificationsTopic(topic string) LockServiceOption {
	return func(s *LockService) {
		s.notificationsTopic = topic
	}
}

// WithMaxLifetime caps the total age a hold can reach through extensions.
// Zero disables the cap.
func WithMaxLifetime(d time.Duration) LockServiceOption {
	return func(s *LockService) {
		s.maxLifetime = d
	}
}

func WithMaxQuantity(n int) LockServiceOption {
	return func(s *LockService) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

func WithMaxNights(n int) LockServiceOption {
	return func(s *LockService) {
		if n > 0 {
			s.maxNights = n
		}
	}
}

const (
	defaultMaxLifetime = 30 * time.Minute
	defaultMaxQuantity = 10
	defaultMaxNights   = 30

	sweepPublishRetries = 3
)

func NewLockService(
	store LockStore,
	rooms repository.RoomRepository,
	producer Producer,
	clk clock.Clock,
	lockEventsTopic string,
	ttl time.Duration,
	opts ...LockServiceOption,
) *LockService {
	service := &LockService{
		store:           store,
		rooms:           rooms,
		producer:        producer,
		clock:           clk,
		lockEventsTopic: lockEventsTopic,
		ttl:             ttl,
		maxLifetime:     defaultMaxLifetime,
		maxQuantity:     defaultMaxQuantity,
		maxNights:       defaultMaxNights,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateLock grants a time-boxed hold on the requested rooms, or fails
// with ErrInsufficientCapacity when any night in the range cannot take
// the quantity. Contention between concurrent callers is resolved by the
// store's atomic script; InsufficientCapacity is an expected outcome, not
// a fault.
func (s *LockService) CreateLock(ctx context.Context, input CreateLockInput) (*domain.ReservationHold, error) {
	if input.Quantity < 1 || input.Quantity > s.maxQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if err := input.DateRange.Validate(); err != nil {
		return nil, err
	}
	if input.DateRange.Nights() > s.maxNights {
		return nil, domain.ErrInvalidDateRange
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if input.DateRange.CheckIn.Before(today) {
		return nil, domain.ErrInvalidDateRange
	}

	info, err := s.rooms.GetRoomType(ctx, input.HotelID, input.RoomType)
	if err != nil {
		return nil, err
	}

	booked, err := s.rooms.CountBookedRooms(ctx, input.HotelID, input.RoomType, input.DateRange)
	if err != nil {
		return nil, err
	}
	available := info.TotalRooms - booked

	hold := domain.ReservationHold{
		Token:      newLockToken(),
		HotelID:    input.HotelID,
		RoomType:   input.RoomType,
		DateRange:  input.DateRange,
		Quantity:   input.Quantity,
		GuestEmail: input.GuestEmail,
		Status:     domain.HoldStatusActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	if err := s.store.CreateHold(ctx, hold, available, s.ttl); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "lock_created", &hold); err != nil {
		log.Printf("WARNING: failed to publish lock_created event for %s: %v", hold.Token, err)
	}
	return &hold, nil
}

func (s *LockService) GetLockStatus(ctx context.Context, token string) (*domain.ReservationHold, error) {
	return s.store.GetHold(ctx, token)
}

// ExtendLock resets the TTL to the full duration without touching
// quantity or counters.
func (s *LockService) ExtendLock(ctx context.Context, token string) (*domain.ReservationHold, error) {
	hold, err := s.store.ExtendHold(ctx, token, s.ttl, s.maxLifetime, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "lock_extended", hold); err != nil {
		log.Printf("WARNING: failed to publish lock_extended event for %s: %v", hold.Token, err)
	}
	return hold, nil
}

// ReleaseLock is idempotent: releasing an unknown or expired token is a
// successful no-op, because cleanup paths cannot know what state the lock
// is in when they run.
func (s *LockService) ReleaseLock(ctx context.Context, token string) error {
	hold, err := s.store.ReleaseHold(ctx, token)
	if err != nil {
		return err
	}
	if hold == nil {
		return nil
	}

	if err := s.publish(ctx, "lock_released", hold); err != nil {
		log.Printf("WARNING: failed to publish lock_released event for %s: %v", hold.Token, err)
	}
	return nil
}

// ConsumeLock is the Booking Finalizer's entry: it validates the token
// against the reservation being committed and retires the hold. A
// mismatched identity is a hard error with no counter movement.
func (s *LockService) ConsumeLock(ctx context.Context, input ConsumeLockInput) error {
	if err := input.DateRange.Validate(); err != nil {
		return err
	}

	hold, err := s.store.ConsumeHold(ctx, input.Token, input.HotelID, input.RoomType, input.DateRange)
	if err != nil {
		return err
	}

	if err := s.publish(ctx, "lock_consumed", hold); err != nil {
		log.Printf("WARNING: failed to publish lock_consumed event for %s: %v", hold.Token, err)
	}
	return nil
}

// Occupancy recomputes the committed-room snapshot for a quote request.
// Never cached; the pricing engine calls it per request.
func (s *LockService) Occupancy(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (domain.OccupancySnapshot, error) {
	info, err := s.rooms.GetRoomType(ctx, hotelID, roomType)
	if err != nil {
		return domain.OccupancySnapshot{}, err
	}

	booked, err := s.rooms.CountBookedRooms(ctx, hotelID, roomType, dr)
	if err != nil {
		return domain.OccupancySnapshot{}, err
	}

	locked, err := s.store.LockedQuantity(ctx, hotelID, roomType, dr)
	if err != nil {
		return domain.OccupancySnapshot{}, err
	}

	rate := decimal.Zero
	if info.TotalRooms > 0 {
		rate = decimal.NewFromInt(int64(booked + locked)).Div(decimal.NewFromInt(int64(info.TotalRooms)))
		if rate.GreaterThan(decimal.NewFromInt(1)) {
			rate = decimal.NewFromInt(1)
		}
	}

	return domain.OccupancySnapshot{
		BookedRooms: booked,
		LockedRooms: locked,
		TotalRooms:  info.TotalRooms,
		Rate:        rate,
	}, nil
}

// SweepExpiredLocks reclaims index entries for holds the TTL already
// removed. TTL expiry alone keeps capacity correct; this only keeps the
// index tidy and emits lock_expired events.
func (s *LockService) SweepExpiredLocks(ctx context.Context) ([]string, error) {
	tokens, err := s.store.SweepExpired(ctx)
	if err != nil {
		return nil, err
	}

	for _, token := range tokens {
		event := kafka.LockEvent{Type: "lock_expired", Token: token, Status: string(domain.HoldStatusExpired)}
		if err := s.publishEventWithRetry(ctx, token, event); err != nil {
			log.Printf("WARNING: failed to publish lock_expired event for %s: %v", token, err)
		}
	}
	return tokens, nil
}

func (s *LockService) publish(ctx context.Context, eventType string, hold *domain.ReservationHold) error {
	event := kafka.LockEvent{
		Type:       eventType,
		Token:      hold.Token,
		HotelID:    hold.HotelID,
		RoomType:   hold.RoomType,
		CheckIn:    hold.DateRange.CheckIn.Format(domain.DateLayout),
		CheckOut:   hold.DateRange.CheckOut.Format(domain.DateLayout),
		Quantity:   hold.Quantity,
		GuestEmail: hold.GuestEmail,
		Status:     string(hold.Status),
		ExpiresAt:  hold.ExpiresAt,
	}
	return s.publishEvent(ctx, hold.Token, event)
}

func (s *LockService) publishEvent(ctx context.Context, key string, event kafka.LockEvent) error {
	if s.producer == nil || s.lockEventsTopic == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, s.lockEventsTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

// publishEventWithRetry runs off the request path, so blocking on the
// broker between attempts is acceptable.
func (s *LockService) publishEventWithRetry(ctx context.Context, key string, event kafka.LockEvent) error {
	if s.producer == nil || s.lockEventsTopic == "" {
		return nil
	}
	if err := s.producer.PublishWithRetry(ctx, s.lockEventsTopic, key, event, sweepPublishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, key, event, sweepPublishRetries)
	}
	return nil
}

func newLockToken() string {
	return "lock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

var _ LockUseCase = (*LockService)(nil)
