package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/vogiaan1904/ticketbottle-servicequeue/config"
	delivHttp "github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/delivery/ws"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/infra/redis"
	repo "github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/service"
	pkgKafka "github.com/vogiaan1904/ticketbottle-servicequeue/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	defer l.Sync()

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	qRepo := repo.NewQueueRepository(redisCli, l)

	qSvc, err := service.NewQueueService(ctx, qRepo, cfg.Queue, cfg.JWT, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize queue service: %v", err)
	}

	refresher := service.NewWaitRefresher(qSvc, cfg.Queue.RefreshInterval, cfg.Queue.ShutdownTimeout, l)
	if err := refresher.Start(ctx); err != nil {
		l.Fatalf(ctx, "Failed to start wait refresher: %v", err)
	}

	// Kafka bridge to the rest of the event platform
	var (
		relay *producer.Relay
		cons  *consumer.Consumer
	)
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     cfg.Kafka.ClientID,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}

		prod := producer.NewProducer(kafkaSyncProd, l)
		defer prod.Close()

		relay = producer.NewRelay(qSvc, prod, l)
		relay.Start(ctx)

		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers:  cfg.Kafka.Brokers,
			GroupID:  cfg.Kafka.ConsumerGroupID,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		cons = consumer.NewConsumer(kafkaConsGr, qSvc, l)
		cons.Start(ctx)
	}

	hub := ws.NewHub(qSvc, l)

	h := delivHttp.NewHTTPHandler(qSvc, refresher, l)
	router := delivHttp.NewRouter(h, ws.ServeWS(hub), l)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shCtx, shCancel := context.WithTimeout(context.Background(), cfg.Queue.ShutdownTimeout)
		defer shCancel()
		return srv.Shutdown(shCtx)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	cancel()
	if err := g.Wait(); err != nil {
		l.Errorf(context.Background(), "Shutdown error: %v", err)
	}

	if relay != nil {
		relay.Stop()
	}
	if cons != nil {
		if err := cons.Close(); err != nil {
			l.Errorf(context.Background(), "Failed to close Kafka consumer: %v", err)
		}
	}
	if err := refresher.Stop(); err != nil {
		l.Errorf(context.Background(), "Failed to stop wait refresher: %v", err)
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.Queue.ShutdownTimeout)
	defer shCancel()
	if err := qSvc.Shutdown(shCtx); err != nil {
		l.Errorf(shCtx, "Queue service shutdown error: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}
