package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/api/handler"
	"github.com/km0-cafe/restaurant-service/internal/assets"
	"github.com/km0-cafe/restaurant-service/internal/config"
	"github.com/km0-cafe/restaurant-service/internal/db"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/logging"
	"github.com/km0-cafe/restaurant-service/internal/mailer"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/router"
	"github.com/km0-cafe/restaurant-service/internal/service"
	"github.com/km0-cafe/restaurant-service/internal/websockets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log, err := logging.New(cfg)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	loc, err := cfg.Server.Location()
	if err != nil {
		log.Fatal("invalid server timezone", zap.Error(err))
	}

	database, err := db.NewPostgres(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	store, err := assets.NewDiskStore(cfg.Assets.Dir, cfg.Assets.BaseURL)
	if err != nil {
		log.Fatal("failed to initialise asset store", zap.Error(err))
	}

	repos := repository.NewRepositories(database)
	mail := mailer.New(cfg.SMTP, log)

	authService := service.NewAuthService(repos.User, cfg.JWT)
	reservationService := service.NewReservationService(
		repos.Reservation, mail, loc, cfg.Reservations.AllowTerminalDelete, log)
	deliveryService := service.NewDeliveryService(repos.Delivery, mail, log)
	menuService := service.NewCatalog[models.MenuItem, models.MenuItemRequest](repos.Menu, "menu")
	patisserieService := service.NewCatalog[models.PatisserieItem, models.PatisserieItemRequest](repos.Patisserie, "patisserie")
	eventService := service.NewCatalog[models.CatalogEvent, models.CatalogEventRequest](repos.Event, "event")

	hub := websockets.NewHub(log)
	go hub.Run()

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Reservation:  handler.NewReservationHandler(reservationService, hub, log),
		Verification: handler.NewVerificationHandler(reservationService, hub, log),
		Menu:         handler.NewCatalogHandler(menuService, log),
		Patisserie:   handler.NewCatalogHandler(patisserieService, log),
		Event:        handler.NewCatalogHandler(eventService, log),
		Delivery:     handler.NewDeliveryHandler(deliveryService, log),
		Upload:       handler.NewUploadHandler(store, log),
		Health:       handler.NewHealthHandler(database),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Retries QR issuance and confirmation emails that failed at
	// creation time.
	if cfg.Reservations.ReconcileInterval > 0 {
		interval := time.Duration(cfg.Reservations.ReconcileInterval) * time.Minute
		go reservationService.RunReconciler(ctx, interval)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.New(handlers, authService, hub, store.Dir(), log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}
