package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Spok95/shopdesk/internal/auth"
	"github.com/Spok95/shopdesk/internal/config"
	"github.com/Spok95/shopdesk/internal/dialog"
	"github.com/Spok95/shopdesk/internal/domain/customers"
	"github.com/Spok95/shopdesk/internal/domain/inventory"
	"github.com/Spok95/shopdesk/internal/domain/products"
	"github.com/Spok95/shopdesk/internal/domain/profiles"
	"github.com/Spok95/shopdesk/internal/domain/restock"
	"github.com/Spok95/shopdesk/internal/domain/sales"
	"github.com/Spok95/shopdesk/internal/infra/db"
	httpx "github.com/Spok95/shopdesk/internal/infra/http"
	"github.com/Spok95/shopdesk/internal/infra/logger"
	"github.com/Spok95/shopdesk/internal/infra/metrics"
	"github.com/Spok95/shopdesk/internal/infra/notify"
	"github.com/Spok95/shopdesk/internal/recorder"
	"github.com/Spok95/shopdesk/internal/store/memstore"
	"github.com/Spok95/shopdesk/internal/web"
	"github.com/Spok95/shopdesk/migrations"
)

func runMigrations(dsn string) error {
	goose.SetBaseFS(migrations.FS)
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, ".")
}

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	if err := run(cfg, log); err != nil {
		log.Error("shopdesk stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := web.Deps{Location: loc, Log: log}
	switch cfg.Storage.Driver {
	case "memory":
		mem := memstore.New(cfg.Inventory.AllowNegativeStock)
		deps.Products = mem.Products()
		deps.Customers = mem.Customers()
		deps.Sales = mem.Sales()
		deps.Restocks = mem.Restocks()
		deps.Stock = mem.StockTransactions()
		deps.Profiles = mem.Profiles()
		deps.Drafts = mem.Drafts()
		log.Warn("using in-memory storage, data is lost on restart")
	default:
		if err := runMigrations(cfg.Postgres.DSN); err != nil {
			return err
		}
		log.Info("migrations applied")

		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info("db connected")

		deps.Products = products.NewRepo(pool)
		deps.Customers = customers.NewRepo(pool)
		deps.Sales = sales.NewRepo(pool, cfg.Inventory.AllowNegativeStock)
		deps.Restocks = restock.NewRepo(pool)
		deps.Stock = inventory.NewRepo(pool)
		deps.Profiles = profiles.NewRepo(pool)
		deps.Drafts = dialog.NewRepo(pool)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			return err
		}
		notifier = tg
	}

	deps.Recorder = recorder.New(deps.Products, deps.Customers, deps.Sales, deps.Restocks, log,
		recorder.WithNotifier(notifier),
		recorder.WithMetrics(metrics.New(reg)),
	)
	deps.Verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	if cfg.Auth.ProviderURL != "" {
		deps.Reset = auth.NewResetClient(cfg.Auth.ProviderURL, cfg.Auth.APIKey, cfg.Auth.ResetRedirect)
	}

	srv := httpx.New(httpx.Options{
		Addr:          cfg.HTTP.Addr,
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		ExposeMetrics: cfg.Metrics.Enabled,
		Gatherer:      reg,
		Log:           log,
		ErrorHandler:  web.ErrorHandler(log),
	})
	web.New(deps).Register(srv.App())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Driver)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("graceful shutdown complete")
	return nil
}
