package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keywinf/relay-stack/common/logging"
	"github.com/keywinf/relay-stack/common/messaging/nats"
	"github.com/keywinf/relay-stack/relay/internal/config"
	"github.com/keywinf/relay-stack/relay/internal/gate"
	"github.com/keywinf/relay-stack/relay/internal/handlers"
	"github.com/keywinf/relay-stack/relay/internal/processor"
	"github.com/keywinf/relay-stack/relay/internal/projection"
	"github.com/keywinf/relay-stack/relay/internal/readmodel"
	"github.com/keywinf/relay-stack/relay/internal/recipient"
	"github.com/keywinf/relay-stack/relay/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	broker, err := nats.NewJetStreamClient(nats.Config{
		URL:           cfg.NATS.URL,
		Name:          "relay",
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWaitDuration(),
	})
	if err != nil {
		log.Fatalf("connect to NATS: %v", err)
	}
	defer broker.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	gateway := readmodel.NewClient(cfg.ReadModel.URL).WithTimeout(cfg.ReadModel.Timeout())
	roles := readmodel.NewCachedRoleResolver(
		readmodel.NewRoleClient(cfg.ReadModel.URL),
		redisClient,
		cfg.Redis.RoleTTL(),
		logger.Logger,
	)

	resolver := recipient.NewResolver(gateway, roles, logger.Logger)
	waiter := projection.NewWaiter(cfg.Relay.WaitAttempts, cfg.Relay.WaitInterval())
	projector := projection.NewProjector(gateway, waiter, logger)
	admission := gate.New(cfg.Relay.MaxAge())

	proc := processor.New(
		resolver,
		projector,
		admission,
		processor.JetStreamPublisher{Client: broker},
		logger,
		cfg.Relay.ProcessTimeout(),
	)
	consumer := processor.NewConsumer(broker, proc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.EnsureTopology(ctx); err != nil {
		log.Fatalf("ensure broker topology: %v", err)
	}
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("start consumer: %v", err)
	}
	defer consumer.Stop()

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(handlers.NewHealthHandler(broker)),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	go func() {
		log.Printf("relay service listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if err := broker.Drain(); err != nil {
		log.Printf("drain broker connection failed: %v", err)
	}
}
