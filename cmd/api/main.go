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

	"github.com/joho/godotenv"

	"github.com/collegebuddy/backend/internal/config"
	"github.com/collegebuddy/backend/internal/handler"
	"github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/service/realtime"
	"github.com/collegebuddy/backend/internal/service/uploads"
	"github.com/collegebuddy/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Auth.Secret == "college-buddy-secret" {
		log.Println("warning: JWT_SECRET not set, using the default development secret")
	}

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	uploadSvc, err := uploads.NewService(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
	if err != nil {
		log.Fatalf("failed to initialize uploads: %v", err)
	}

	authSvc := auth.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	registry := realtime.NewRegistry()

	router := handler.NewRouter(st, authSvc, registry, uploadSvc, cfg.Chat.DedupWindow)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("College Buddy backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
