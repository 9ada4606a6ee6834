package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/hotelbooking/api"
	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/service/locks"
	"github.com/Domenick1991/hotelbooking/internal/service/pricing"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, lockSvc locks.LockUseCase, pricingSvc pricing.PricingUseCase, roomSvc rooms.RoomUseCase) error {
	router := NewRouter(lockSvc, pricingSvc, roomSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(lockSvc locks.LockUseCase, pricingSvc pricing.PricingUseCase, roomSvc rooms.RoomUseCase) *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	api.NewLockHandler(lockSvc).Register(v1.Group("/locks"))
	api.NewQuoteHandler(pricingSvc).Register(v1.Group("/quotes"))
	api.NewRoomTypeHandler(roomSvc).Register(v1.Group("/hotels"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
