// worker consumes console session events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, SESSION_EVENTS_TOPIC, KAFKA_GROUP_ID and LOKI_URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"event-admin-console/internal/config"
	"event-admin-console/internal/logging"
	"event-admin-console/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("component", "worker")

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}
	pusher, err := loki.New(cfg.LokiURL, nil)
	if err != nil {
		logger.Error("LOKI_URL", "error", err)
		os.Exit(1)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.SessionEventsTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down...")
		cancel()
	}()

	logger.Info("consuming", "topic", cfg.SessionEventsTopic, "group", cfg.KafkaGroupID, "loki", cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("stopped")
				return
			}
			logger.Warn("kafka read error", "error", err)
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
			logger.Warn("loki push failed", "error", err, "offset", msg.Offset)
		}
		pushCancel()
	}
}
