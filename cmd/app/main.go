package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/bootstrap"
	"github.com/Domenick1991/hotelbooking/internal/cache"
	"github.com/Domenick1991/hotelbooking/internal/clock"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/lockstore"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/locks"
	"github.com/Domenick1991/hotelbooking/internal/service/pricing"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	store := lockstore.NewRedisStore(cfg.Redis)
	defer store.Close()

	roomTypesCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Pricing.RoomTypeCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	roomRepo := repository.NewRoomRepository(pool)
	clk := clock.NewSystem()

	lockService := locks.NewLockService(
		store,
		roomRepo,
		producer,
		clk,
		cfg.Kafka.LockEventsTopic,
		time.Duration(cfg.Lock.TTLSeconds)*time.Second,
		locks.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		locks.WithMaxLifetime(time.Duration(cfg.Lock.MaxLifetimeMinutes)*time.Minute),
		locks.WithMaxQuantity(cfg.Lock.MaxQuantity),
		locks.WithMaxNights(cfg.Lock.MaxNights),
	)

	pricingOpts := []pricing.PricingServiceOption{pricing.WithMaxQuantity(cfg.Lock.MaxQuantity)}
	if cfg.Pricing.TaxRate != "" {
		taxRate, err := decimal.NewFromString(cfg.Pricing.TaxRate)
		if err != nil {
			log.Fatalf("parse tax rate: %v", err)
		}
		pricingOpts = append(pricingOpts, pricing.WithTaxRate(taxRate))
	}
	pricingService := pricing.NewPricingService(roomRepo, lockService, clk, pricingOpts...)

	roomService := rooms.NewRoomService(roomRepo, roomTypesCache)

	if err := bootstrap.Run(ctx, cfg, lockService, pricingService, roomService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
