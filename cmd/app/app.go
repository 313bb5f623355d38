package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/api"
	"github.com/tablewise/restaurant-api/internal/config"
	"github.com/tablewise/restaurant-api/internal/db"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/logger"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
	"github.com/tablewise/restaurant-api/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.LoadAndWatch("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	gormDB, err := db.Open(conf, os.Getenv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if conf.Database.AutoMigrate {
		if err = dao.InitTables(gormDB); err != nil {
			return fmt.Errorf("failed to migrate database -> %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	go hub.Run(ctx)

	publishers := events.Fanout{hub}
	if conf.Kafka.Enabled() {
		kafka := events.NewKafkaPublisher(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer kafka.Close()
		publishers = append(publishers, kafka)
		zap.L().Info("publishing events to kafka",
			zap.Strings("brokers", conf.Kafka.Brokers),
			zap.String("topic", conf.Kafka.Topic),
		)
	}

	s, err := api.NewServer(conf, gormDB, publishers, hub, metrics.New())
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	if conf.Seed.MenuFile != "" {
		menu, err := seed.LoadMenu(conf.Seed.MenuFile)
		if err != nil {
			return fmt.Errorf("failed to load menu seed -> %w", err)
		}
		if _, err = seed.Apply(ctx, menu, s.MenuService, s.InventoryService); err != nil {
			return fmt.Errorf("failed to seed menu -> %w", err)
		}
	}

	srv := &http.Server{
		Addr:    ":" + conf.API.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}
