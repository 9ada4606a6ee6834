package lockstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore owns hold records and per-night locked-quantity counters.
// Every capacity mutation runs inside a server-side script so that the
// check and the increment land as one atomic step; application code never
// does read-modify-write on a counter.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

const indexKey = "hold:index"

func holdKey(token string) string {
	return "hold:" + token
}

func nightKey(hotelID int64, roomType string, night time.Time) string {
	return fmt.Sprintf("lock:qty:%d:%s:%s", hotelID, roomType, night.Format(domain.DateLayout))
}

func nightKeys(hotelID int64, roomType string, dr domain.DateRange) []string {
	nights := dr.NightDates()
	keys := make([]string, 0, len(nights))
	for _, n := range nights {
		keys = append(keys, nightKey(hotelID, roomType, n))
	}
	return keys
}

// createScript checks every night counter in the range against the
// available count before incrementing any of them. KEYS: night counters,
// then hold key, then index key. ARGV: available, quantity, ttl_ms,
// hold JSON, token. Returns 1 on success, 0 when any night is full.
var createScript = redis.NewScript(`
local avail = tonumber(ARGV[1])
local qty = tonumber(ARGV[2])
local n = #KEYS - 2
for i = 1, n do
	local locked = tonumber(redis.call('GET', KEYS[i]) or '0')
	if locked + qty > avail then
		return 0
	end
end
for i = 1, n do
	redis.call('INCRBY', KEYS[i], qty)
	redis.call('PEXPIRE', KEYS[i], ARGV[3])
end
redis.call('SET', KEYS[n+1], ARGV[4], 'PX', ARGV[3])
redis.call('SADD', KEYS[n+2], ARGV[5])
return 1
`)

// extendScript resets the hold and counter TTLs in place. KEYS: hold key,
// then night counters. ARGV: now_ms, ttl_ms, max_lifetime_ms.
// Returns 1 on success, 0 when the hold is gone, -1 when the extension
// would push the hold past its lifetime limit.
var extendScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return 0
end
local hold = cjson.decode(raw)
local now = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
if max > 0 and (now + ttl - hold.created_at_ms) > max then
	return -1
end
hold.status = 'EXTENDED'
hold.expires_at_ms = now + ttl
redis.call('SET', KEYS[1], cjson.encode(hold), 'PX', ttl)
for i = 2, #KEYS do
	redis.call('PEXPIRE', KEYS[i], ttl)
end
return 1
`)

// releaseScript decrements the night counters and deletes the hold, but
// only if the hold record still exists, so a double release decrements
// exactly once. KEYS: hold key, index key, then night counters.
// ARGV: quantity, token. Returns 1 when a hold was removed, 0 otherwise.
var releaseScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local qty = tonumber(ARGV[1])
for i = 3, #KEYS do
	local left = redis.call('DECRBY', KEYS[i], qty)
	if left <= 0 then
		redis.call('DEL', KEYS[i])
	end
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], ARGV[2])
return 1
`)

// consumeScript is releaseScript plus an exact-identity check against the
// stored hold; on mismatch nothing is mutated. KEYS: hold key, index key,
// then night counters. ARGV: hotel_id, room_type, check_in, check_out,
// token. Returns 1 on success, 0 when the hold is gone, -1 on mismatch.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return 0
end
local hold = cjson.decode(raw)
if tostring(hold.hotel_id) ~= ARGV[1] or hold.room_type ~= ARGV[2] or hold.check_in ~= ARGV[3] or hold.check_out ~= ARGV[4] then
	return -1
end
local qty = tonumber(hold.quantity)
for i = 3, #KEYS do
	local left = redis.call('DECRBY', KEYS[i], qty)
	if left <= 0 then
		redis.call('DEL', KEYS[i])
	end
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], ARGV[5])
return 1
`)

// storedHold is the wire form of a hold inside Redis. Timestamps are unix
// milliseconds so the extend script can compare them without parsing.
type storedHold struct {
	Token       string `json:"token"`
	HotelID     int64  `json:"hotel_id"`
	RoomType    string `json:"room_type"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Quantity    int    `json:"quantity"`
	GuestEmail  string `json:"guest_email,omitempty"`
	Status      string `json:"status"`
	CreatedAtMs int64  `json:"created_at_ms"`
	ExpiresAtMs int64  `json:"expires_at_ms"`
}

func encodeHold(h domain.ReservationHold) ([]byte, error) {
	return json.Marshal(storedHold{
		Token:       h.Token,
		HotelID:     h.HotelID,
		RoomType:    h.RoomType,
		CheckIn:     h.DateRange.CheckIn.Format(domain.DateLayout),
		CheckOut:    h.DateRange.CheckOut.Format(domain.DateLayout),
		Quantity:    h.Quantity,
		GuestEmail:  h.GuestEmail,
		Status:      string(h.Status),
		CreatedAtMs: h.CreatedAt.UnixMilli(),
		ExpiresAtMs: h.ExpiresAt.UnixMilli(),
	})
}

func decodeHold(data []byte) (*domain.ReservationHold, error) {
	var s storedHold
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode hold: %w", err)
	}
	dr, err := domain.ParseDateRange(s.CheckIn, s.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("decode hold dates: %w", err)
	}
	return &domain.ReservationHold{
		Token:      s.Token,
		HotelID:    s.HotelID,
		RoomType:   s.RoomType,
		DateRange:  dr,
		Quantity:   s.Quantity,
		GuestEmail: s.GuestEmail,
		Status:     domain.HoldStatus(s.Status),
		CreatedAt:  time.UnixMilli(s.CreatedAtMs).UTC(),
		ExpiresAt:  time.UnixMilli(s.ExpiresAtMs).UTC(),
	}, nil
}

// CreateHold atomically claims hold.Quantity rooms on every night of the
// range. available is total capacity minus permanently booked rooms; the
// script compares each night's locked counter against it.
func (s *RedisStore) CreateHold(ctx context.Context, hold domain.ReservationHold, available int, ttl time.Duration) error {
	payload, err := encodeHold(hold)
	if err != nil {
		return err
	}

	keys := nightKeys(hold.HotelID, hold.RoomType, hold.DateRange)
	keys = append(keys, holdKey(hold.Token), indexKey)

	res, err := createScript.Run(ctx, s.client, keys,
		available, hold.Quantity, ttl.Milliseconds(), payload, hold.Token).Int()
	if err != nil {
		return storeErr(err)
	}
	if res == 0 {
		return domain.ErrInsufficientCapacity
	}
	return nil
}

func (s *RedisStore) GetHold(ctx context.Context, token string) (*domain.ReservationHold, error) {
	data, err := s.client.Get(ctx, holdKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrHoldNotFound
		}
		return nil, storeErr(err)
	}
	return decodeHold(data)
}

// ExtendHold resets the TTL to the full duration. A maxLifetime of zero
// disables the lifetime cap.
func (s *RedisStore) ExtendHold(ctx context.Context, token string, ttl, maxLifetime time.Duration, now time.Time) (*domain.ReservationHold, error) {
	hold, err := s.GetHold(ctx, token)
	if err != nil {
		return nil, err
	}

	keys := append([]string{holdKey(token)}, nightKeys(hold.HotelID, hold.RoomType, hold.DateRange)...)
	res, err := extendScript.Run(ctx, s.client, keys,
		now.UnixMilli(), ttl.Milliseconds(), maxLifetime.Milliseconds()).Int()
	if err != nil {
		return nil, storeErr(err)
	}
	switch res {
	case 0:
		return nil, domain.ErrHoldNotFound
	case -1:
		return nil, domain.ErrHoldLifetimeExceeded
	}

	hold.Status = domain.HoldStatusExtended
	hold.ExpiresAt = now.Add(ttl).UTC()
	return hold, nil
}

// ReleaseHold removes the hold and undoes its counter increments.
// Releasing a missing or expired hold is a no-op that returns (nil, nil);
// the hold is returned only when a live one was actually removed.
func (s *RedisStore) ReleaseHold(ctx context.Context, token string) (*domain.ReservationHold, error) {
	hold, err := s.GetHold(ctx, token)
	if err != nil {
		if err == domain.ErrHoldNotFound {
			return nil, nil
		}
		return nil, err
	}

	keys := append([]string{holdKey(token), indexKey}, nightKeys(hold.HotelID, hold.RoomType, hold.DateRange)...)
	res, err := releaseScript.Run(ctx, s.client, keys, hold.Quantity, token).Int()
	if err != nil {
		return nil, storeErr(err)
	}
	if res == 0 {
		return nil, nil
	}
	hold.Status = domain.HoldStatusReleased
	return hold, nil
}

// ConsumeHold converts a hold into a permanent booking's inventory
// decrement. The identity presented by the finalizer must match the hold
// exactly; on mismatch no counter moves.
func (s *RedisStore) ConsumeHold(ctx context.Context, token string, hotelID int64, roomType string, dr domain.DateRange) (*domain.ReservationHold, error) {
	hold, err := s.GetHold(ctx, token)
	if err != nil {
		return nil, err
	}

	keys := append([]string{holdKey(token), indexKey}, nightKeys(hold.HotelID, hold.RoomType, hold.DateRange)...)
	res, err := consumeScript.Run(ctx, s.client, keys,
		strconv.FormatInt(hotelID, 10),
		roomType,
		dr.CheckIn.Format(domain.DateLayout),
		dr.CheckOut.Format(domain.DateLayout),
		token).Int()
	if err != nil {
		return nil, storeErr(err)
	}
	switch res {
	case 0:
		return nil, domain.ErrHoldNotFound
	case -1:
		return nil, domain.ErrHoldMismatch
	}
	hold.Status = domain.HoldStatusConsumed
	return hold, nil
}

// LockedQuantity returns the highest night counter in the range: the
// binding night for availability.
func (s *RedisStore) LockedQuantity(ctx context.Context, hotelID int64, roomType string, dr domain.DateRange) (int, error) {
	keys := nightKeys(hotelID, roomType, dr)
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, storeErr(err)
	}

	max := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// SweepExpired drops index entries whose hold record the TTL already
// reclaimed and returns their tokens. Correctness never depends on this;
// it exists for store hygiene and lock_expired events.
func (s *RedisStore) SweepExpired(ctx context.Context) ([]string, error) {
	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	var expired []string
	for _, token := range tokens {
		exists, err := s.client.Exists(ctx, holdKey(token)).Result()
		if err != nil {
			return expired, storeErr(err)
		}
		if exists == 0 {
			if err := s.client.SRem(ctx, indexKey, token).Err(); err != nil {
				return expired, storeErr(err)
			}
			expired = append(expired, token)
		}
	}
	return expired, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
