package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client       *redis.Client
	roomTypesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, roomTypesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		roomTypesTTL: roomTypesTTL,
	}
}

func (c *RedisCache) GetRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeInfo, error) {
	data, err := c.client.Get(ctx, roomTypesKey(hotelID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var types []domain.RoomTypeInfo
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *RedisCache) SetRoomTypes(ctx context.Context, hotelID int64, types []domain.RoomTypeInfo) error {
	payload, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomTypesKey(hotelID), payload, c.roomTypesTTL).Err()
}

func roomTypesKey(hotelID int64) string {
	return fmt.Sprintf("cache:roomtypes:%d", hotelID)
}
