package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/clock"
	"github.com/veralda/slotbook/internal/config"
	"github.com/veralda/slotbook/internal/event"
	"github.com/veralda/slotbook/internal/metrics"
	"github.com/veralda/slotbook/internal/storage/memory"
	"github.com/veralda/slotbook/internal/storage/postgres"
	transporthttp "github.com/veralda/slotbook/internal/transport/http"
	"github.com/veralda/slotbook/migrations"
)

func main() {
	logger := log.Default()

	if err := godotenv.Load(); err != nil {
		logger.Printf("WARN: no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		registryRepo  app.RegistryRepository
		bookingRepo   app.BookingRepository
		lifecycleRepo app.LifecycleRepository
		counter       metrics.ReservationCounter
		persist       func()
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(startupCtx); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		if err := migrations.Apply(startupCtx, pool); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}

		registry := postgres.NewRegistryRepository(pool)
		ledger := postgres.NewLedgerRepository(pool)
		registryRepo = registry
		bookingRepo = ledger
		lifecycleRepo = ledger
		counter = registry
		logger.Printf("storage: postgres")
	} else {
		store := memory.NewStore()
		if cfg.SnapshotPath != "" {
			if _, err := os.Stat(cfg.SnapshotPath); err == nil {
				if err := store.LoadFile(cfg.SnapshotPath); err != nil {
					log.Fatalf("load snapshot: %v", err)
				}
				logger.Printf("loaded snapshot from %s", cfg.SnapshotPath)
			}
			persist = func() {
				if err := store.SaveFile(cfg.SnapshotPath); err != nil {
					logger.Printf("save snapshot: %v", err)
				}
			}
		}
		registryRepo = store
		bookingRepo = store
		lifecycleRepo = store
		counter = store
		logger.Printf("storage: in-memory")
	}

	var pub event.Publisher = event.Noop{}
	if cfg.AMQPURL != "" {
		rabbit, err := event.NewRabbitPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			log.Fatalf("connect to broker: %v", err)
		}
		defer rabbit.Close()
		pub = rabbit
		logger.Printf("events: rabbitmq exchange %s", cfg.EventExchange)
	}

	clk := clock.NewSystem()
	registrySvc := app.NewRegistryService(registryRepo, clk)
	bookingSvc := app.NewBookingService(bookingRepo, clk, pub, logger)
	lifecycleSvc := app.NewLifecycleService(lifecycleRepo, clk, pub, logger)

	metrics.Register(counter)

	mux := http.NewServeMux()
	route := func(pattern string, h http.Handler) {
		mux.Handle(pattern, metrics.Middleware(pattern, h))
	}
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())
	route("/resources", transporthttp.HandleResources(registrySvc))
	route("/resources/", transporthttp.HandleResourceStatus(registrySvc))
	route("/requesters", transporthttp.HandleRequesters(registrySvc))
	route("/reservations", transporthttp.HandleReservations(bookingSvc, registrySvc))
	route("/reservations/", transporthttp.HandleReservationActions(lifecycleSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(cfg.CORSOrigins)
	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	log.Printf("api listening on %s", cfg.HTTPAddr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	if persist != nil {
		persist()
	}
	log.Printf("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
