package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository interface {
	GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error)
	ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error)
	CountBookedRooms(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error)
}

type PGRoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) RoomRepository {
	return &PGRoomRepository{db: db}
}

func (r *PGRoomRepository) GetRoomType(ctx context.Context, hotelID int64, roomType string) (*domain.RoomTypeInfo, error) {
	row := r.db.QueryRow(ctx, `SELECT hotel_id, room_type, base_price_cents, total_rooms, created_at, updated_at FROM room_types WHERE hotel_id=$1 AND room_type=$2`, hotelID, roomType)
	var info domain.RoomTypeInfo
	if err := row.Scan(&info.HotelID, &info.RoomType, &info.BasePriceCents, &info.TotalRooms, &info.CreatedAt, &info.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissing(ctx, hotelID)
		}
		return nil, err
	}
	return &info, nil
}

func (r *PGRoomRepository) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT hotel_id, room_type, base_price_cents, total_rooms, created_at, updated_at FROM room_types WHERE hotel_id=$1 ORDER BY room_type`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]domain.RoomTypeInfo, 0)
	for rows.Next() {
		var info domain.RoomTypeInfo
		if err := rows.Scan(&info.HotelID, &info.RoomType, &info.BasePriceCents, &info.TotalRooms, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, info)
	}
	return types, rows.Err()
}

// CountBookedRooms sums the rooms of confirmed bookings overlapping the
// range. Bookings live in the finalizer's store; this is the read-only
// collaborator interface the availability check and occupancy snapshot use.
func (r *PGRoomRepository) CountBookedRooms(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error) {
	row := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM bookings WHERE hotel_id=$1 AND room_type=$2 AND status IN ('CONFIRMED', 'CHECKED_IN') AND check_in_date < $3 AND check_out_date > $4`, hotelID, roomType, dr.CheckOut, dr.CheckIn)
	var booked int
	if err := row.Scan(&booked); err != nil {
		return 0, err
	}
	return booked, nil
}

// classifyMissing tells an unknown hotel apart from an unknown room type.
func (r *PGRoomRepository) classifyMissing(ctx context.Context, hotelID int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hotels WHERE id=$1)`, hotelID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrHotelNotFound
	}
	return domain.ErrRoomTypeNotFound
}

var _ RoomRepository = (*PGRoomRepository)(nil)
