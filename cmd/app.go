package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qrave1/RoomMeet/internal/application/config"
	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/application/metric"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/memory"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomMeet/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomMeet/internal/infra/ports/http/server"
	"github.com/qrave1/RoomMeet/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)
}

// runApp serves until ctx is done or a server fails.
func runApp(ctx context.Context, inMemory bool) error {
	setupLogger(false)

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setupLogger(cfg.Debug)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.Bool("in_memory", inMemory))

	var (
		userRepo repository.UserRepository
		callRepo repository.CallRepository
	)

	if inMemory {
		userRepo = memory.NewUserStore()
		callRepo = memory.NewCallStore(userRepo)
	} else {
		dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer dbConn.Close()

		userRepo = repository.NewUserRepo(dbConn)
		callRepo = repository.NewCallRepo(dbConn)
	}

	wsConnRepo := memory.NewWSConnectionRepository()
	activeMemberRepo := memory.NewActiveMemberRepository()

	userUsecase := usecase.NewUserUsecase([]byte(cfg.JWTSecret), userRepo)
	sessionUsecase := usecase.NewSessionUsecase(callRepo, wsConnRepo, activeMemberRepo)
	callUsecase := usecase.NewCallUsecase(callRepo, sessionUsecase)

	authHandler := handlers.NewAuthHandler(cfg, userUsecase)
	callHandler := handlers.NewCallHandler(callUsecase)
	iceHandler := handlers.NewIceHandler(cfg)
	wsHandler := handlers.NewWebSocketHandler(cfg, wsConnRepo, sessionUsecase)

	echoSrv := server.New(cfg, authHandler, callHandler, iceHandler, wsHandler)
	metricsSrv := metric.NewServer()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := echoSrv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := metricsSrv.Start(":" + cfg.MetricPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}

		return nil
	})

	// Graceful shutdown по сигналу или при падении одного из серверов
	g.Go(func() error {
		<-gCtx.Done()

		slog.Info("Shutting down servers")

		timeoutCtx, timeoutCancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer timeoutCancel()

		if err := echoSrv.Shutdown(timeoutCtx); err != nil {
			slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
		}

		if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
			slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
		}

		return nil
	})

	return g.Wait()
}
