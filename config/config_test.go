package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  address: ":8080"
database:
  host: localhost
  port: 5432
  user: booking
  password: secret
  name: hotels
  ssl_mode: disable
redis:
  addr: localhost:6379
  db: 0
kafka:
  brokers:
    - localhost:9092
  lock_events_topic: lock_events
  notifications_topic: lock_notifications
  group_id: hotelbooking-worker
lock:
  ttl_seconds: 120
  max_lifetime_minutes: 30
  max_quantity: 10
  max_nights: 30
pricing:
  tax_rate: "0.10"
  room_type_cache_ttl_seconds: 300
worker:
  expiration_sweep_seconds: 60
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 120, cfg.Lock.TTLSeconds)
	assert.Equal(t, 30, cfg.Lock.MaxLifetimeMinutes)
	assert.Equal(t, "0.10", cfg.Pricing.TaxRate)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "lock_events", cfg.Kafka.LockEventsTopic)
	assert.Equal(t, 60, cfg.Worker.ExpirationSweepSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dsn := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "booking",
		Password: "secret", Name: "hotels", SSLMode: "disable",
	}.DSN()
	assert.Equal(t, "host=localhost port=5432 user=booking password=secret dbname=hotels sslmode=disable", dsn)
}
