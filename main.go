// Package main is the entry point of the Rate Stuff Online server.
//
// It wires every layer together:
//
//  1. Config
//  2. Logger
//  3. Database and migrations
//  4. Repositories
//  5. Redis (optional)
//  6. Notification hub and relay
//  7. Services and rate limiters
//  8. Handlers
//  9. Routes and CORS
//  10. Panic reporting (optional)
//  11. HTTP server with graceful shutdown
//
// No package level state: everything is built here and passed down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/config"
	"github.com/photosunthesis/rate-stuff.online-sub001/database"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg/logger"
	"github.com/photosunthesis/rate-stuff.online-sub001/ws"
)

func main() {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ─── 2. Logger ───
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	log.Info("server starting", zap.Int("port", cfg.Server.Port))

	// ─── 3. Database ───
	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// ─── 4. Repositories ───
	repos := initRepositories(db.Conn)

	// ─── 5. Redis ───
	rdb, err := initRedis(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── 6. Notification Hub ───
	//
	// Services only see ws.Notifier. With Redis the relay fans signals out
	// to every process, each of which delivers to its own hub.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(log.Named("hub"))
	registerHubCallbacks(hub, log.Named("presence"))
	go hub.Run()

	var notifier ws.Notifier = hub
	if rdb != nil {
		relay := ws.NewRelay(rdb, hub, log.Named("relay"))
		go relay.Run(ctx)
		notifier = relay
	}

	// ─── 7. Services ───
	svcs, limiters := initServices(db.Conn, repos, notifier, rdb, cfg, log)

	// ─── 8. Handlers ───
	h := initHandlers(svcs, limiters, hub, db.Conn, cfg, log)

	// ─── 9. Routes ───
	mux := http.NewServeMux()
	userCache := initRoutes(mux, h, svcs.Auth, limiters, log)
	defer userCache.Close()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. Sentry ───
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Fatal("failed to initialize sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)

		// Repanic hands the panic back to net/http after it is reported
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(handler)
		log.Info("sentry enabled", zap.String("environment", cfg.Sentry.Environment))
	}

	// ─── 11. HTTP Server ───
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: it would cut long lived /ws connections
		IdleTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	log.Info("shutting down")

	// Close notification channels first so clients start their reconnect
	// backoff, then drain in-flight requests.
	hub.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped gracefully")
}
