package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/clyqfeed/cmd/server"
	"example.com/clyqfeed/cmd/worker"
	appkafka "example.com/clyqfeed/internal/broker"
	config "example.com/clyqfeed/internal/init"
	"example.com/clyqfeed/internal/logger"
	"example.com/clyqfeed/internal/metrics"
	"example.com/clyqfeed/internal/store"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()
	logger.SetLevel(cfg.LogLevel)

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configure Kafka client parameters
	kafkaCfg := appkafka.KafkaConfig{
		Brokers:      []string{cfg.KafkaBroker},
		Topic:        cfg.KafkaTopic,
		Partition:    cfg.KafkaPartition,
		GroupID:      cfg.KafkaGroupID,
		WriteTimeout: cfg.KafkaWriteTO,
		ReadTimeout:  cfg.KafkaReadTO,
	}

	// Run application depending on selected mode
	switch cfg.Mode {
	case "server":
		runServer(ctx, cfg, kafkaCfg)
	case "worker":
		runWorker(ctx, cfg, kafkaCfg)
	case "archive":
		runReport(ctx, cfg)
	default:
		log.Fatalf("unknown mode: %s", cfg.Mode)
	}

	log.Println("Shutdown completed")
}

// runServer serves the feed. Feed state lives only as long as this process.
func runServer(ctx context.Context, cfg *config.Config, kafkaCfg appkafka.KafkaConfig) {
	var publisher appkafka.PostPublisher = appkafka.NopPublisher{}
	if cfg.KafkaEnabled {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.KafkaWriteTO)
		writer, err := appkafka.NewKafkaWriter(dialCtx, kafkaCfg)
		cancel()
		if err != nil {
			log.Fatalf("Kafka writer init failed: %v", err)
		}
		publisher = appkafka.NewKafkaPublisher(writer)
	}
	defer publisher.Close()

	st := store.NewMemory(store.DefaultSeed(time.Now()), nil)
	srv := server.New(st, publisher, metrics.New(), server.Config{
		Addr:              cfg.ServerAddr,
		CertFile:          cfg.TLSCertFile,
		KeyFile:           cfg.TLSKeyFile,
		JWTSecret:         []byte(cfg.JWTSecret),
		PlaceholderAuthor: cfg.PlaceholderAuthor,
	})

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// runWorker archives post events from Kafka into Cassandra.
func runWorker(ctx context.Context, cfg *config.Config, kafkaCfg appkafka.KafkaConfig) {
	archive, err := store.NewCassandraArchive(cfg)
	if err != nil {
		log.Fatalf("Cassandra connection failed: %v", err)
	}

	// Initialize Kafka reader for worker mode
	reader := appkafka.NewKafkaReader(kafkaCfg)

	w := worker.New(archive, reader, metrics.New(), cfg.WorkerCount, cfg.WorkerQueueSize)
	w.Run(ctx)
	if err := w.Close(); err != nil {
		log.Printf("worker close: %v", err)
	}
}

// runReport prints the newest archived posts and exits.
func runReport(ctx context.Context, cfg *config.Config) {
	archive, err := store.NewCassandraArchive(cfg)
	if err != nil {
		log.Fatalf("Cassandra connection failed: %v", err)
	}
	defer archive.Close()

	if err := worker.Report(ctx, archive, cfg.ArchiveAuthor, cfg.ArchiveLimit, os.Stdout); err != nil {
		log.Fatalf("archive report failed: %v", err)
	}
}
