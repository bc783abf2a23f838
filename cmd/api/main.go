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

	"booking_reconciliation/internal/adapter/http/routes"
	"booking_reconciliation/internal/bootstrap"
	"booking_reconciliation/internal/config"
	"booking_reconciliation/internal/infrastructure/obs"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Booking Reconciliation API
// @version         1.0
// @description     Converts completed Mercado Pago payments into exactly one booking and payment pair.

// @host localhost:8080

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err)
	}

	router := routes.NewRouter(routes.Dependencies{
		UseCase:            app.UseCase,
		Store:              app,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[api] listening on %s store=%s", srv.Addr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to startup the application: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[api] http shutdown err=%v", err)
	}
	if err := app.Close(); err != nil {
		log.Printf("[api] close err=%v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("[api] tracer shutdown err=%v", err)
	}
	log.Println("[api] stopped")
}
