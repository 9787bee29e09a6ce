package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventos-api/internal/auth"
	"eventos-api/internal/config"
	"eventos-api/internal/database/migrations"
	events_db "eventos-api/internal/events/db"
	"eventos-api/internal/events/event_api"
	events "eventos-api/internal/events/service"
	"eventos-api/internal/logger"
	"eventos-api/internal/monitoring"
	users_db "eventos-api/internal/users/db"
	users "eventos-api/internal/users/service"
	"eventos-api/internal/users/user_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	dsn := cfg.Database.DSN()

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	// Prices serialize as JSON numbers, matching the frontend.
	decimal.MarshalJSONWithoutQuotes = true

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.MigrateUp(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	if version, _, err := runner.Version(); err == nil {
		log.Info("DATABASE", fmt.Sprintf("Schema version: %d", version))
	}

	codec := auth.NewCodec(cfg.Auth.SecretKey)

	eventService := events.NewEventService(&events_db.DB{Bun: bunDB})
	userService := users.NewUserService(&users_db.DB{Bun: bunDB}, codec, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	eventHandler := event_api.NewHandler(eventService, log)
	userHandler := user_api.NewHandler(userService, cfg.Auth, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(monitoring.Middleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","app":"eventos-api"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/event", func(r chi.Router) {
		eventHandler.RegisterRoutes(r)
	})
	log.Info("ROUTER", "Event routes registered under /event")

	r.Route("/user", func(r chi.Router) {
		userHandler.RegisterRoutes(r)
	})
	log.Info("ROUTER", "User routes registered under /user")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 eventos-api running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "✅ eventos-api shutdown complete")
	}
}
