package main

import (
	"context"
	"errors"
	"os"

	"financetracker/internal/amqp"
	"financetracker/internal/cli"
	"financetracker/internal/log"
	"financetracker/internal/sheets/memory"
	"financetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Worker cannot start", errors.New("AMQP_URL is required"))
	}

	logger.Info("Starting ft-worker")

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	journal, err := cli.InitJournal(ctx, cfg, logger.WithComponent(log.ComponentSheets))
	if err != nil {
		cli.Fatal(logger, "Failed to initialize journal", err)
	}

	var welcome worker.WelcomeSender
	mailer, err := cli.InitMailer(cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize mailer", err)
	}
	if mailer != nil {
		welcome = mailer
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	events := worker.NewEventWorker(welcome, journal, logger.WithComponent(log.ComponentWorker))

	logger.Info("Consuming events", "queue", cfg.AMQPQueue)
	if err := client.Consume(ctx, events.Handle); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Message consumption failed", err)
	}
	if mem, ok := journal.(*memory.Journal); ok {
		logger.Info("In-memory journal discarded", "entries", len(mem.Entries()))
	}
	logger.Info("Worker stopped gracefully")
}
