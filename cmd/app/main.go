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

	"simmarket/config"
	"simmarket/handlers"
	"simmarket/repository"
	"simmarket/service"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()

	db := config.InitDB(ctx, cfg)
	defer func() { _ = db.Close() }()

	repoImpl := repository.NewPostgresRepository(db, cfg.TxTimeout)
	if err := repoImpl.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := service.NewService(repoImpl, cfg.JWTSecret, cfg.JWTTTL, cfg.SignupCredits)

	h := handlers.NewHandler(svc, !cfg.IsProduction())

	srv := http.Server{
		Handler:      handlers.NewRouter(h),
		Addr:         ":" + cfg.ServerPort,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Printf("marketplace API listening on port %s (%s)", cfg.ServerPort, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("server stopped")
}
