// Command notifyd is a minimal example wiring of the notification fabric:
// it loads configuration, builds an in-process transport plus a log-store
// transport backed by Redis Streams, and starts the fabric until
// interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/chris-alexander-pop/notifyfabric/internal/config"
	"github.com/chris-alexander-pop/notifyfabric/pkg/emitter/logpipeline"
	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	redisadapter "github.com/chris-alexander-pop/notifyfabric/pkg/logstore/adapters/redis"
	"github.com/chris-alexander-pop/notifyfabric/pkg/notify"
	"github.com/chris-alexander-pop/notifyfabric/pkg/receiver/logconsumer"
	"github.com/chris-alexander-pop/notifyfabric/pkg/transport/inprocess"
)

func main() {
	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logger)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCfg := redisadapter.Config{
		Addr:     cfg.LogStoreAddr,
		Password: cfg.LogStorePassword,
		DB:       cfg.LogStoreDB,
	}
	client, err := redisadapter.New(redisCfg, cfg.GroupReadBlock)
	if err != nil {
		log.Error("failed to connect to log store", "error", err)
		os.Exit(1)
	}

	resolver := envelope.NewResolver()

	pipelineCfg := logpipeline.DefaultConfig()
	pipelineCfg.QueueCapacity = cfg.QueueCapacity
	pipelineCfg.MessageTTL = cfg.MessageTTL
	pipelineCfg.StreamTTL = cfg.StreamTTL
	pipelineCfg.MaxStreamLength = cfg.MaxStreamLen
	pipelineCfg.DefaultStream = cfg.Stream

	logEmitter := logpipeline.New(client, pipelineCfg)

	consumerCfg := logconsumer.DefaultConfig(cfg.Stream)
	consumerCfg.Group = cfg.ConsumerGroup
	consumerCfg.BlockDuration = cfg.GroupReadBlock
	logReceiver := logconsumer.New(client, resolver, consumerCfg)

	conduit := inprocess.NewConduit()
	inEmitter := inprocess.NewEmitter(conduit)
	inReceiver := inprocess.NewReceiver(conduit)

	opts := notify.DefaultOptions()
	opts.Dedup.TTL = cfg.DedupTTL
	opts.Dedup.MaxEntries = cfg.DedupMaxEntries
	opts.LogStoreConnString = cfg.LogStoreAddr

	registry := notify.NewRegistry(opts)
	registry.RegisterEmitter(inEmitter)
	registry.RegisterReceiver(inReceiver)
	registry.RegisterLogStoreTransport(logEmitter, client, logReceiver)

	fabric, err := registry.Build()
	if err != nil {
		log.Error("invalid notification fabric configuration", "error", err)
		os.Exit(1)
	}

	if err := fabric.Emitter.Start(ctx); err != nil {
		log.Error("failed to start emitters", "error", err)
		os.Exit(1)
	}

	events, err := fabric.Receiver.Receive(ctx)
	if err != nil {
		log.Error("failed to start receiving", "error", err)
		os.Exit(1)
	}

	go func() {
		for env := range events {
			log.InfoContext(ctx, "notification received",
				"notification_id", env.ID(), "type", env.Type(), "severity", env.Severity())
		}
	}()

	log.InfoContext(ctx, "notifyd started", "stream", cfg.Stream, "group", cfg.ConsumerGroup, "log_store_healthy", fabric.Healthy(ctx))

	<-ctx.Done()
	log.Info("shutting down")
	_ = fabric.Emitter.Dispose(context.Background())
}
