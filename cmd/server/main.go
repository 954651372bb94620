package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"qrentry/internal/adapters/httpapi"
	"qrentry/internal/application"
	"qrentry/internal/config"
	"qrentry/internal/infrastructure/database"
	"qrentry/internal/infrastructure/i18n"
	"qrentry/internal/infrastructure/memory"
	"qrentry/internal/infrastructure/pdf"
	"qrentry/internal/infrastructure/telemetry"
	"qrentry/internal/ports/output"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.NewTracing(ctx, cfg.OTLPEndpoint, "qrentry")
	if err != nil {
		log.Fatalf("❌ Erreur lors de l'initialisation des traces: %v", err)
	}
	tracing.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Erreur lors de l'initialisation de la base de données: %v", err)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := httpapi.NewHandler(httpapi.Deps{
		Registration: application.NewRegistrationService(repo),
		Query:        application.NewAttendeeQueryService(repo),
		Issuance:     application.NewIssuanceService(repo, pdf.NewRenderer()),
		Entry:        application.NewEntryService(repo),
		I18n:         i18n.NewTranslator(cfg.DefaultLocale),
		Health:       repo,
		Defaults:     httpapi.Defaults{Event: cfg.DefaultEvent, Venue: cfg.DefaultVenue},
		Registry:     registry,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("🚀 Serveur en écoute sur %s (store=%s, event=%q, venue=%q)",
			cfg.HTTPAddr, cfg.StoreDriver, cfg.DefaultEvent, cfg.DefaultVenue)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Erreur du serveur HTTP: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("⚠️ Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Arrêt du serveur incomplet: %v", err)
		return
	}
	log.Println("✅ Serveur arrêté.")
}

// openStore returns the attendee store selected by cfg.StoreDriver and a
// function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (output.AttendeeRepository, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Println("⚠️ Stockage en mémoire: les données seront perdues à l'arrêt.")
		return memory.NewAttendeeRepository(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL, "up"); err != nil {
			return nil, nil, err
		}
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database.NewAttendeeRepository(pool), pool.Close, nil
}
