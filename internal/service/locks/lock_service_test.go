package locks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/clock"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLockStore struct {
	mock.Mock
}

func (m *MockLockStore) CreateHold(ctx context.Context, hold domain.ReservationHold, available int, ttl time.Duration) error {
	args := m.Called(ctx, hold, available, ttl)
	return args.Error(0)
}

func (m *MockLockStore) GetHold(ctx context.Context, token string) (*domain.ReservationHold, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationHold), args.Error(1)
}

func (m *MockLockStore) ExtendHold(ctx context.Context, token string, ttl, maxLifetime time.Duration, now time.Time) (*domain.ReservationHold, error) {
	args := m.Called(ctx, token, ttl, maxLifetime, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationHold), args.Error(1)
}

func (m *MockLockStore) ReleaseHold(ctx context.Context, token string) (*domain.ReservationHold, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationHold), args.Error(1)
}

func (m *MockLockStore) ConsumeHold(ctx context.Context, token string, hotelID int64, roomType string, dr domain.DateRange) (*domain.ReservationHold, error) {
	args := m.Called(ctx, token, hotelID, roomType, dr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationHold), args.Error(1)
}

func (m *MockLockStore) LockedQuantity(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error) {
	args := m.Called(ctx, hotelID, roomType, dr)
	return args.Int(0), args.Error(1)
}

func (m *MockLockStore) SweepExpired(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error) {
	args := m.Called(ctx, hotelID, roomType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomTypeInfo), args.Error(1)
}

func (m *MockRoomRepository) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error) {
	args := m.Called(ctx, hotelID)
	return args.Get(0).([]domain.RoomTypeInfo), args.Error(1)
}

func (m *MockRoomRepository) CountBookedRooms(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error) {
	args := m.Called(ctx, hotelID, roomType, dr)
	return args.Int(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *MockProducer) PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error {
	args := m.Called(ctx, topic, key, value, maxRetries)
	return args.Error(0)
}

var testNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func testRange(t *testing.T, checkIn, checkOut string) domain.DateRange {
	t.Helper()
	dr, err := domain.ParseDateRange(checkIn, checkOut)
	assert.NoError(t, err)
	return dr
}

func newTestService(store *MockLockStore, repo *MockRoomRepository, producer *MockProducer) *LockService {
	return NewLockService(
		store,
		repo,
		producer,
		clock.NewFixed(testNow),
		"lock_events",
		2*time.Minute,
		WithNotificationsTopic("lock_notifications"),
		WithMaxLifetime(30*time.Minute),
		WithMaxQuantity(10),
		WithMaxNights(30),
	)
}

func TestLockService_CreateLock_Success(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	producer := &MockProducer{}
	service := newTestService(store, repo, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")
	input := CreateLockInput{
		HotelID:    7,
		RoomType:   "double",
		DateRange:  dr,
		Quantity:   2,
		GuestEmail: "guest@example.com",
	}

	repo.On("GetRoomType", ctx, int64(7), "double").Return(&domain.RoomTypeInfo{
		HotelID: 7, RoomType: "double", BasePriceCents: 15000, TotalRooms: 20,
	}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(7), "double", dr).Return(5, nil).Once()
	store.On("CreateHold", ctx, mock.AnythingOfType("domain.ReservationHold"), 15, 2*time.Minute).Return(nil).Once()
	producer.On("Publish", ctx, "lock_events", mock.Anything, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "lock_notifications", mock.Anything, mock.Anything).Return(nil).Once()

	hold, err := service.CreateLock(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, hold)
	assert.True(t, strings.HasPrefix(hold.Token, "lock_"))
	assert.Equal(t, domain.HoldStatusActive, hold.Status)
	assert.Equal(t, 2, hold.Quantity)
	assert.Equal(t, testNow, hold.CreatedAt)
	assert.Equal(t, testNow.Add(2*time.Minute), hold.ExpiresAt)
	assert.Equal(t, "guest@example.com", hold.GuestEmail)

	store.AssertExpectations(t)
	repo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestLockService_CreateLock_InvalidQuantity(t *testing.T) {
	service := newTestService(&MockLockStore{}, &MockRoomRepository{}, &MockProducer{})
	dr := testRange(t, "2026-02-10", "2026-02-12")

	_, err := service.CreateLock(context.Background(), CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = service.CreateLock(context.Background(), CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 11})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestLockService_CreateLock_InvalidDateRange(t *testing.T) {
	service := newTestService(&MockLockStore{}, &MockRoomRepository{}, &MockProducer{})

	_, err := service.CreateLock(context.Background(), CreateLockInput{
		HotelID:   1,
		RoomType:  "double",
		DateRange: testRange(t, "2026-02-12", "2026-02-12"),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestLockService_CreateLock_CheckInInPast(t *testing.T) {
	service := newTestService(&MockLockStore{}, &MockRoomRepository{}, &MockProducer{})

	_, err := service.CreateLock(context.Background(), CreateLockInput{
		HotelID:   1,
		RoomType:  "double",
		DateRange: testRange(t, "2026-01-10", "2026-01-12"),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestLockService_CreateLock_CheckInToday(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	producer := &MockProducer{}
	service := newTestService(store, repo, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-01-15", "2026-01-16")

	repo.On("GetRoomType", ctx, int64(1), "double").Return(&domain.RoomTypeInfo{TotalRooms: 5}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(1), "double", dr).Return(0, nil).Once()
	store.On("CreateHold", ctx, mock.AnythingOfType("domain.ReservationHold"), 5, 2*time.Minute).Return(nil).Once()
	producer.On("Publish", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := service.CreateLock(ctx, CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 1})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestLockService_CreateLock_TooManyNights(t *testing.T) {
	service := newTestService(&MockLockStore{}, &MockRoomRepository{}, &MockProducer{})

	_, err := service.CreateLock(context.Background(), CreateLockInput{
		HotelID:   1,
		RoomType:  "double",
		DateRange: testRange(t, "2026-02-01", "2026-03-10"),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestLockService_CreateLock_UnknownRoomType(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	service := newTestService(store, repo, &MockProducer{})

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	repo.On("GetRoomType", ctx, int64(1), "penthouse").Return(nil, domain.ErrRoomTypeNotFound).Once()

	_, err := service.CreateLock(ctx, CreateLockInput{HotelID: 1, RoomType: "penthouse", DateRange: dr, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrRoomTypeNotFound)
	store.AssertNotCalled(t, "CreateHold", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLockService_CreateLock_InsufficientCapacity(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	producer := &MockProducer{}
	service := newTestService(store, repo, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	repo.On("GetRoomType", ctx, int64(1), "double").Return(&domain.RoomTypeInfo{TotalRooms: 5}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(1), "double", dr).Return(3, nil).Once()
	store.On("CreateHold", ctx, mock.AnythingOfType("domain.ReservationHold"), 2, 2*time.Minute).Return(domain.ErrInsufficientCapacity).Once()

	_, err := service.CreateLock(ctx, CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)

	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestLockService_CreateLock_StoreUnavailable(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	service := newTestService(store, repo, &MockProducer{})

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")
	storeErr := domain.ErrStoreUnavailable

	repo.On("GetRoomType", ctx, int64(1), "double").Return(&domain.RoomTypeInfo{TotalRooms: 5}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(1), "double", dr).Return(0, nil).Once()
	store.On("CreateHold", ctx, mock.Anything, 5, 2*time.Minute).Return(storeErr).Once()

	_, err := service.CreateLock(ctx, CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLockService_CreateLock_PublishFailureDoesNotFail(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	producer := &MockProducer{}
	service := newTestService(store, repo, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	repo.On("GetRoomType", ctx, int64(1), "double").Return(&domain.RoomTypeInfo{TotalRooms: 5}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(1), "double", dr).Return(0, nil).Once()
	store.On("CreateHold", ctx, mock.Anything, 5, 2*time.Minute).Return(nil).Once()
	producer.On("Publish", ctx, "lock_events", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

	hold, err := service.CreateLock(ctx, CreateLockInput{HotelID: 1, RoomType: "double", DateRange: dr, Quantity: 1})
	assert.NoError(t, err)
	assert.NotNil(t, hold)
}

func TestLockService_GetLockStatus(t *testing.T) {
	store := &MockLockStore{}
	service := newTestService(store, &MockRoomRepository{}, &MockProducer{})

	ctx := context.Background()
	expected := &domain.ReservationHold{Token: "lock_abc", Status: domain.HoldStatusActive}
	store.On("GetHold", ctx, "lock_abc").Return(expected, nil).Once()

	hold, err := service.GetLockStatus(ctx, "lock_abc")
	assert.NoError(t, err)
	assert.Equal(t, expected, hold)
}

func TestLockService_GetLockStatus_NotFound(t *testing.T) {
	store := &MockLockStore{}
	service := newTestService(store, &MockRoomRepository{}, &MockProducer{})

	ctx := context.Background()
	store.On("GetHold", ctx, "lock_gone").Return(nil, domain.ErrHoldNotFound).Once()

	_, err := service.GetLockStatus(ctx, "lock_gone")
	assert.ErrorIs(t, err, domain.ErrHoldNotFound)
}

func TestLockService_ExtendLock_Success(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	extended := &domain.ReservationHold{
		Token:     "lock_abc",
		Status:    domain.HoldStatusExtended,
		DateRange: testRange(t, "2026-02-10", "2026-02-12"),
		ExpiresAt: testNow.Add(2 * time.Minute),
	}

	store.On("ExtendHold", ctx, "lock_abc", 2*time.Minute, 30*time.Minute, testNow).Return(extended, nil).Once()
	producer.On("Publish", ctx, "lock_events", "lock_abc", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "lock_notifications", "lock_abc", mock.Anything).Return(nil).Once()

	hold, err := service.ExtendLock(ctx, "lock_abc")
	assert.NoError(t, err)
	assert.Equal(t, domain.HoldStatusExtended, hold.Status)

	store.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestLockService_ExtendLock_NotFound(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	store.On("ExtendHold", ctx, "lock_gone", 2*time.Minute, 30*time.Minute, testNow).Return(nil, domain.ErrHoldNotFound).Once()

	_, err := service.ExtendLock(ctx, "lock_gone")
	assert.ErrorIs(t, err, domain.ErrHoldNotFound)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLockService_ExtendLock_LifetimeExceeded(t *testing.T) {
	store := &MockLockStore{}
	service := newTestService(store, &MockRoomRepository{}, &MockProducer{})

	ctx := context.Background()
	store.On("ExtendHold", ctx, "lock_old", 2*time.Minute, 30*time.Minute, testNow).Return(nil, domain.ErrHoldLifetimeExceeded).Once()

	_, err := service.ExtendLock(ctx, "lock_old")
	assert.ErrorIs(t, err, domain.ErrHoldLifetimeExceeded)
}

func TestLockService_ReleaseLock_Success(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	released := &domain.ReservationHold{
		Token:     "lock_abc",
		Status:    domain.HoldStatusReleased,
		DateRange: testRange(t, "2026-02-10", "2026-02-12"),
	}

	store.On("ReleaseHold", ctx, "lock_abc").Return(released, nil).Once()
	producer.On("Publish", ctx, "lock_events", "lock_abc", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "lock_notifications", "lock_abc", mock.Anything).Return(nil).Once()

	err := service.ReleaseLock(ctx, "lock_abc")
	assert.NoError(t, err)

	store.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestLockService_ReleaseLock_MissingIsSuccess(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	store.On("ReleaseHold", ctx, "lock_gone").Return(nil, nil).Once()

	err := service.ReleaseLock(ctx, "lock_gone")
	assert.NoError(t, err)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLockService_ConsumeLock_Success(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")
	consumed := &domain.ReservationHold{
		Token:     "lock_abc",
		HotelID:   7,
		RoomType:  "double",
		DateRange: dr,
		Quantity:  2,
		Status:    domain.HoldStatusConsumed,
	}

	store.On("ConsumeHold", ctx, "lock_abc", int64(7), "double", dr).Return(consumed, nil).Once()
	producer.On("Publish", ctx, "lock_events", "lock_abc", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "lock_notifications", "lock_abc", mock.Anything).Return(nil).Once()

	err := service.ConsumeLock(ctx, ConsumeLockInput{Token: "lock_abc", HotelID: 7, RoomType: "double", DateRange: dr})
	assert.NoError(t, err)

	store.AssertExpectations(t)
}

func TestLockService_ConsumeLock_Mismatch(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	store.On("ConsumeHold", ctx, "lock_abc", int64(8), "double", dr).Return(nil, domain.ErrHoldMismatch).Once()

	err := service.ConsumeLock(ctx, ConsumeLockInput{Token: "lock_abc", HotelID: 8, RoomType: "double", DateRange: dr})
	assert.ErrorIs(t, err, domain.ErrHoldMismatch)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLockService_Occupancy(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	service := newTestService(store, repo, &MockProducer{})

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	repo.On("GetRoomType", ctx, int64(7), "double").Return(&domain.RoomTypeInfo{TotalRooms: 20}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(7), "double", dr).Return(10, nil).Once()
	store.On("LockedQuantity", ctx, int64(7), "double", dr).Return(4, nil).Once()

	snapshot, err := service.Occupancy(ctx, 7, "double", dr)
	assert.NoError(t, err)
	assert.Equal(t, 10, snapshot.BookedRooms)
	assert.Equal(t, 4, snapshot.LockedRooms)
	assert.Equal(t, 20, snapshot.TotalRooms)
	assert.True(t, snapshot.Rate.Equal(decimal.RequireFromString("0.7")))
}

func TestLockService_Occupancy_RateCappedAtOne(t *testing.T) {
	store := &MockLockStore{}
	repo := &MockRoomRepository{}
	service := newTestService(store, repo, &MockProducer{})

	ctx := context.Background()
	dr := testRange(t, "2026-02-10", "2026-02-12")

	repo.On("GetRoomType", ctx, int64(7), "double").Return(&domain.RoomTypeInfo{TotalRooms: 10}, nil).Once()
	repo.On("CountBookedRooms", ctx, int64(7), "double", dr).Return(8, nil).Once()
	store.On("LockedQuantity", ctx, int64(7), "double", dr).Return(5, nil).Once()

	snapshot, err := service.Occupancy(ctx, 7, "double", dr)
	assert.NoError(t, err)
	assert.True(t, snapshot.Rate.Equal(decimal.NewFromInt(1)))
}

func TestLockService_SweepExpiredLocks(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	store.On("SweepExpired", ctx).Return([]string{"lock_a", "lock_b"}, nil).Once()
	producer.On("PublishWithRetry", ctx, "lock_events", "lock_a", mock.Anything, 3).Return(nil).Once()
	producer.On("PublishWithRetry", ctx, "lock_notifications", "lock_a", mock.Anything, 3).Return(nil).Once()
	producer.On("PublishWithRetry", ctx, "lock_events", "lock_b", mock.Anything, 3).Return(nil).Once()
	producer.On("PublishWithRetry", ctx, "lock_notifications", "lock_b", mock.Anything, 3).Return(nil).Once()

	expired, err := service.SweepExpiredLocks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"lock_a", "lock_b"}, expired)

	producer.AssertExpectations(t)
}

func TestLockService_SweepExpiredLocks_PublishFailureStillReturnsTokens(t *testing.T) {
	store := &MockLockStore{}
	producer := &MockProducer{}
	service := newTestService(store, &MockRoomRepository{}, producer)

	ctx := context.Background()
	store.On("SweepExpired", ctx).Return([]string{"lock_a"}, nil).Once()
	producer.On("PublishWithRetry", ctx, "lock_events", "lock_a", mock.Anything, 3).Return(errors.New("kafka down")).Once()

	expired, err := service.SweepExpiredLocks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"lock_a"}, expired)
}
