package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"financetracker/internal/amqp"
	"financetracker/internal/auth"
	"financetracker/internal/cache"
	"financetracker/internal/cli"
	"financetracker/internal/core"
	apphttp "financetracker/internal/http"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	repo, err := cli.InitSQLite(logger.WithComponent(log.ComponentStorage), cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	// Events are optional: without a broker the API works and the welcome
	// mail is sent in-process.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var welcome services.WelcomeSender
	if publisher == nil {
		mailer, err := cli.InitMailer(cfg, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize mailer", err)
		}
		if mailer != nil {
			welcome = mailer
		}
	}

	accounts := services.NewAccountService(repo, publisher, welcome, logger.WithComponent(log.ComponentAuth))
	transactions := services.NewTransactionService(repo, publisher, logger.WithComponent(log.ComponentTransaction))
	budgets := services.NewBudgetService(repo, logger.WithComponent(log.ComponentBudget))
	summary := services.NewSummaryService(repo, repo)
	transactions.NotifyChanges(summary)
	budgets.NotifyChanges(summary)

	if cfg.SummaryCacheTTL > 0 {
		summaryCache := cache.NewLRUCache[core.Summary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
		summary.EnableCache(summaryCache)
		caches := cache.NewManager(logger.WithComponent(log.ComponentSummary))
		caches.Register(summaryCache)
		caches.StartCleanup(cfg.SummaryCacheTTL)
		defer caches.Stop()
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	}, apphttp.Deps{
		Accounts:     accounts,
		Transactions: transactions,
		Budgets:      budgets,
		Summary:      summary,
		Sessions:     auth.NewSessions(auth.NewTokenManager(cfg.JWTSecret), cfg.CookieSecure),
		DB:           repo,
		Logger:       logger.WithComponent(log.ComponentHTTP),
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financetracker server", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		accounts.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
