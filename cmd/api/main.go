package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/config"
	"slicehub.org/internal/fulfillment"
	"slicehub.org/internal/httpapi"
	"slicehub.org/internal/obs"
	"slicehub.org/internal/ordering"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg := config.Load()

	if cfg.AuthSecret == "" {
		log.Fatal("SLICEHUB_AUTH_SECRET is required")
	}

	// DB is optional: without a DSN the service runs on in-memory stores,
	// which is what local development and the smoke tests use.
	var db *sql.DB
	if cfg.PGDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	var (
		authStore auth.Store
		orderRepo ordering.Repository
	)
	if db != nil {
		authStore = auth.NewPGStore(db)
		orderRepo = ordering.NewPGRepository(db)
	} else {
		log.Println("no SLICEHUB_PG_DSN set, using in-memory stores")
		authStore = auth.NewInMemory()
		orderRepo = ordering.NewInMemory()
	}

	issuer, err := auth.NewIssuer(cfg.AuthSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("issuer: %v", err)
	}

	authSvc := auth.NewService(authStore, issuer)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if cfg.AdminEmail != "" && cfg.AdminSecret != "" {
		if err := authSvc.EnsureAdmin(bootstrapCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminSecret); err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
	}
	cancelBootstrap()

	factory := fulfillment.NewHTTPClient(cfg.FactoryURL, cfg.FactoryKey)
	orderSvc := ordering.NewService(orderRepo, factory, issuer)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, orderSvc)
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting slicehub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
