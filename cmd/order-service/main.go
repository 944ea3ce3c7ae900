package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/internal/auth"
	"github.com/geromendez199/AlfajorApp/internal/broadcast"
	"github.com/geromendez199/AlfajorApp/internal/config"
	"github.com/geromendez199/AlfajorApp/internal/events"
	"github.com/geromendez199/AlfajorApp/internal/menu"
	"github.com/geromendez199/AlfajorApp/internal/orders"
	"github.com/geromendez199/AlfajorApp/internal/store"
	"github.com/geromendez199/AlfajorApp/pkg/models"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := config.Load(logger)

	var (
		orderStore store.Store
		catalog    menu.Catalog
		users      auth.Users
	)

	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("Using in-memory storage, nothing will survive a restart")
		orderStore = store.NewMemory()
		memCatalog := menu.NewMemory()
		menu.SeedHouseMenu(memCatalog)
		catalog = memCatalog
		memUsers := auth.NewMemoryUsers()
		if _, err := memUsers.Add("Admin", cfg.AdminPIN, models.RoleAdmin); err != nil {
			logger.WithError(err).Fatal("Failed to seed admin user")
		}
		users = memUsers

	default:
		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		// Wait for database to be ready
		for i := 0; i < 30; i++ {
			if err := db.Ping(); err == nil {
				logger.Info("Database connection established")
				break
			}
			logger.Info("Waiting for database...")
			time.Sleep(2 * time.Second)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pgStore := store.NewPostgres(db, logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to create order tables")
		}
		orderStore = pgStore

		pgCatalog := menu.NewPostgres(db, logger)
		if err := pgCatalog.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to create menu tables")
		}
		if err := pgCatalog.Seed(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to seed menu")
		}
		catalog = pgCatalog

		pgUsers := auth.NewPostgresUsers(db, logger)
		if err := pgUsers.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to create users table")
		}
		if err := pgUsers.SeedAdmin(ctx, cfg.AdminPIN); err != nil {
			logger.WithError(err).Fatal("Failed to seed admin user")
		}
		users = pgUsers
	}

	hub := broadcast.NewHub(logger)

	var mirror orders.EventMirror
	if cfg.KafkaBrokers != "" {
		producer, err := events.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		mirror = producer
		logger.WithField("brokers", cfg.KafkaBrokers).Info("Order event mirror enabled")
	}

	service := orders.NewService(orderStore, catalog, hub, mirror, logger)
	handler := orders.NewHandler(service, logger)
	menuHandler := menu.NewHandler(catalog, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authn := auth.NewMiddleware(tokens, logger)
	login := auth.NewLoginHandler(users, tokens, logger)
	wsHandler := broadcast.NewWSHandler(hub, logger)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/login", login).Methods("POST")

	api := router.PathPrefix("/").Subrouter()
	api.Use(authn.Authenticate)
	api.Handle("/orders",
		auth.RequireRoles(models.RoleCashier, models.RoleManager, models.RoleAdmin)(
			http.HandlerFunc(handler.CreateOrder))).Methods("POST")
	api.Handle("/orders/{id}/status",
		auth.RequireRoles(models.RoleKitchen, models.RoleManager, models.RoleAdmin)(
			http.HandlerFunc(handler.UpdateStatus))).Methods("PATCH")
	api.HandleFunc("/orders", handler.ListOrders).Methods("GET")
	api.HandleFunc("/orders/{id}", handler.GetOrder).Methods("GET")
	api.HandleFunc("/menu/products", menuHandler.ListProducts).Methods("GET")
	api.HandleFunc("/menu/extras", menuHandler.ListExtras).Methods("GET")
	api.Handle("/ws", wsHandler).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting order service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("Request processed")
		})
	}
}
