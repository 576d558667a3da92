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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vtzdude/Music-library/internal/config"
	"github.com/vtzdude/Music-library/internal/httpserver"
	"github.com/vtzdude/Music-library/internal/logging"
	authmw "github.com/vtzdude/Music-library/internal/middleware/auth"
	loggingmw "github.com/vtzdude/Music-library/internal/middleware/logging"
	"github.com/vtzdude/Music-library/internal/mykafka"
	"github.com/vtzdude/Music-library/internal/repo"
	"github.com/vtzdude/Music-library/internal/service"
	"github.com/vtzdude/Music-library/internal/session"
	"github.com/vtzdude/Music-library/internal/tokens"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if cfg.KafkaAddress != "" {
		prod = mykafka.NewProducer([]string{cfg.KafkaAddress}, mykafka.TopicUserEvents)
	}

	gormRepo := &repo.GormRepo{DB: db}
	tokenSvc := &tokens.TokenService{Secret: cfg.JWTSecret, Expiry: cfg.JWTExpiry}
	sessionSvc := &session.Service{Repo: gormRepo, Cap: cfg.AllowedSessions}

	userSvc := &service.UserService{
		Repo:     gormRepo,
		Tokens:   tokenSvc,
		Sessions: sessionSvc,
		Producer: prod,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		UserHandler: &httpserver.UserHTTP{Svc: userSvc},
		Gate:        authmw.NewGate(tokenSvc, sessionSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
