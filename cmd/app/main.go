package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fleet/cmd"
	"fleet/internal/adapters/out/kafka"
	"fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/redis"
	"fleet/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := logger.New("fleet", configs.LogLevel, configs.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	if err = postgres.Migrate(configs.DatabaseURL()); err != nil {
		return err
	}

	gormDB, err := gorm.Open(postgresdriver.Open(configs.DatabaseURL()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	var opts []cmd.Option

	if brokers := kafka.ParseBrokers(configs.KafkaBrokers); len(brokers) > 0 {
		publisher := kafka.NewPublisher(brokers, kafka.Topics{
			DeliveryEvents: configs.KafkaDeliveryEventsTopic,
			Tracking:       configs.KafkaTrackingTopic,
		})
		defer func() {
			if err := publisher.Close(); err != nil {
				l.Warn("kafka publisher close failed", logger.Error(err))
			}
		}()

		background := kafka.NewBackgroundPublisher(publisher, configs.KafkaPublishQueueSize, configs.KafkaPublishTimeout, l)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
			defer cancel()
			if err := background.Close(drainCtx); err != nil {
				l.Warn("kafka queue not drained", logger.Error(err))
			}
		}()
		opts = append(opts, cmd.WithEventPublisher(background))
		l.Info("kafka publishing enabled", logger.Any("brokers", brokers))
	}

	if configs.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
			DB:       configs.RedisDB,
		})
		defer func() { _ = client.Close() }()

		if err = redis.Ping(ctx, client); err != nil {
			// Reads fall back to the database while redis is down.
			l.Warn("redis unreachable at startup", logger.Error(err))
		}
		opts = append(opts, cmd.WithLatestPositionCache(redis.NewLatestPositionCache(client, configs.LatestPositionTTL)))
	}

	app := cmd.NewCompositionRoot(configs, gormDB, l, opts...)

	e, err := app.Router(ctx)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	e.Logger.SetLevel(log.OFF)

	jobManager := app.JobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		l.Info("http server listening", logger.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by http.Server.
		app.Hub().Close()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
