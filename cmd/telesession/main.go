package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	appSession "github.com/caretech-io/telesession/pkg/app/session"
	"github.com/caretech-io/telesession/pkg/config"
	handlers "github.com/caretech-io/telesession/pkg/handlers/http"
	wsHandlers "github.com/caretech-io/telesession/pkg/handlers/websocket"
	"github.com/caretech-io/telesession/pkg/infra/auth"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/directory"
	"github.com/caretech-io/telesession/pkg/infra/httpx"
	infraLogger "github.com/caretech-io/telesession/pkg/infra/logger"
	metrics "github.com/caretech-io/telesession/pkg/infra/prometheus"
	"github.com/caretech-io/telesession/pkg/infra/registry"
	"github.com/caretech-io/telesession/pkg/infra/rooms"
	"github.com/caretech-io/telesession/pkg/server"
	"github.com/caretech-io/telesession/pkg/version"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx := context.Background()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()
	logger.WithFields(logrus.Fields{
		"version":    version.Version,
		"go_version": version.GetInfo().GoVersion,
	}).Info("starting telesession")

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	cfg := config.GetConfig()

	metrics.Initialize()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}

	eventBus := bus.NewRedisBus(logger, redisClient)

	httpClient := httpx.NewFastHTTPClient(httpx.FastHTTPClientConfig{
		Timeout:   cfg.Registry.Timeout,
		UserAgent: cfg.Service.Name,
	})

	registryClient := registry.NewHTTPClient(
		logger,
		httpClient,
		httpx.NewCircuitBreaker("registry", cfg.Registry.Timeout, cfg.Registry.MaxFailures),
		registry.Config{
			BaseURL:    cfg.Registry.BaseURL,
			Token:      cfg.Registry.Token,
			ServiceKey: cfg.Service.Key,
		},
	)

	directoryClient := directory.NewHTTPClient(
		logger,
		httpClient,
		httpx.NewCircuitBreaker("directory", cfg.Registry.Timeout, cfg.Registry.MaxFailures),
		directory.Config{
			BaseURL: cfg.Registry.BaseURL,
			Token:   cfg.Registry.Token,
		},
	)

	roomManager := rooms.NewProcessManager(logger, rooms.Config{
		Executable:    cfg.Rooms.Executable,
		PublicBaseURL: cfg.Rooms.PublicBaseURL,
		PortRangeMin:  cfg.Rooms.PortRangeMin,
		PortRangeMax:  cfg.Rooms.PortRangeMax,
		RedisAddr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
	})

	store := appSession.NewStore()
	orchestrator := appSession.NewOrchestrator(
		logger,
		store,
		registryClient,
		roomManager,
		eventBus,
		directoryClient,
		appSession.ServiceConfig{
			ID:          cfg.Service.ID,
			UUID:        cfg.Service.UUID,
			Key:         cfg.Service.Key,
			JoinMessage: cfg.Service.JoinMessage,
		},
	)

	router := appSession.NewRouter(logger, eventBus, orchestrator)
	if err := router.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to subscribe to connectivity events")
	}

	commandListener := appSession.NewCommandListener(logger, eventBus, orchestrator, cfg.Service.Key)
	if err := commandListener.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to subscribe to bus commands")
	}

	srv := server.NewServiceServer(server.ServiceServerDI{
		HandlerTransport: handlers.HandlerTransport{
			SessionManageHandler:   handlers.NewSessionManageHandler(logger, orchestrator),
			ParticipantInfoHandler: handlers.NewParticipantInfoHandler(logger, directoryClient),
		},
		EventsHandler: wsHandlers.NewEventsHandler(logger, eventBus, auth.NewHMACTokenValidator(cfg.Auth.TokenSecret)),
		Config:        cfg,
		Logger:        logger,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(srv.Run)

	group.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig.String()).Info("shutting down")
		case <-groupCtx.Done():
		}

		if err := router.Close(); err != nil {
			logger.WithError(err).Warn("failed to close connectivity subscription")
		}
		if err := commandListener.Close(); err != nil {
			logger.WithError(err).Warn("failed to close bus command subscription")
		}
		return srv.Shutdown()
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Fatal("service terminated")
	}
}
