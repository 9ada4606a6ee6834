package rooms

import (
	"context"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/repository"
)

type RoomUseCase interface {
	ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error)
	GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error)
}

type Cache interface {
	GetRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error)
	SetRoomTypes(ctx context.Context, hotelID int64, types []domain.RoomTypeInfo) error
}

type RoomService struct {
	repo  repository.RoomRepository
	cache Cache
}

func NewRoomService(repo repository.RoomRepository, cache Cache) *RoomService {
	return &RoomService{repo: repo, cache: cache}
}

func (s *RoomService) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRoomTypes(ctx, hotelID); err == nil && cached != nil {
			return cached, nil
		}
	}

	types, err := s.repo.ListRoomTypes(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetRoomTypes(ctx, hotelID, types)
	}
	return types, nil
}

func (s *RoomService) GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error) {
	return s.repo.GetRoomType(ctx, hotelID, roomType)
}

var _ RoomUseCase = (*RoomService)(nil)
