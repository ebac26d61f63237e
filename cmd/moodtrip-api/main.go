// README: Entry point; loads config, wires the itinerary pipeline, stores and guards, and serves HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"moodtrip/internal/config"
	httptransport "moodtrip/internal/http"
	"moodtrip/internal/infra"
	"moodtrip/internal/modules/itinerary"
	"moodtrip/internal/modules/usage"
	"moodtrip/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	gateway, closeGateway, err := service.NewGateway(ctx, cfg)
	if err != nil {
		log.Fatalf("gateway init: %v", err)
	}
	defer closeGateway()

	deps := httptransport.ServerDeps{
		Planner:        itinerary.NewService(gateway, logger),
		Store:          itinerary.NewStore(dbPool),
		Usage:          usage.NewGuard(usage.NewStore(redisClient), cfg.Usage.MonthlyQuota, cfg.Usage.InFlightTTL),
		Verifier:       verifier,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateRPS:        cfg.HTTP.RateRPS,
		RateBurst:      cfg.HTTP.RateBurst,
	}
	linker, err := service.NewLinkFiller(cfg, logger)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}
	if linker != nil {
		deps.Linker = linker
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; map link filling disabled")
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// Generation can take most of the gateway timeout.
		WriteTimeout: cfg.Gateway.Timeout + 15*time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Error("http shutdown", "err", err)
		}
	}()

	logger.Info("moodtrip api listening", "addr", cfg.HTTP.Addr, "provider", cfg.Gateway.Provider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
