package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"
	"github.com/cwrk-planet/relay-service/config"
	"github.com/cwrk-planet/relay-service/internal/notify"
	"github.com/cwrk-planet/relay-service/internal/postgres"
	"github.com/cwrk-planet/relay-service/internal/relay"
	"github.com/cwrk-planet/relay-service/internal/security"
	"github.com/cwrk-planet/relay-service/internal/service"
	httpx "github.com/cwrk-planet/relay-service/internal/transport/http"
	"github.com/cwrk-planet/relay-service/internal/transport/ws"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting relay-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- credential verifier ---
	pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("load jwt public key: %v", err)
	}
	verifier := security.NewJWTVerifier(pub, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.ClockSkew)

	// --- notification sink (optional) ---
	var sink relay.NotificationSink
	if cfg.NATS.URL != "" {
		s, err := notify.New(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer s.Close()
		sink = s
	} else {
		slog.Warn("notification sink disabled: nats.url is empty")
	}

	// --- repos ---
	userRepo := postgres.NewUserRepository(db.Pool)
	convRepo := postgres.NewConversationRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)
	callRepo := postgres.NewCallRepository(db.Pool)

	// --- services ---
	userSvc := service.NewUserService(userRepo, verifier)
	messageSvc := service.NewMessageService(messageRepo, convRepo)
	callSvc := service.NewCallService(callRepo)

	// --- relay router & WS gateway ---
	router := relay.NewRouter(userSvc, messageSvc, callSvc, sink, cfg.Relay.TypingDebounce)
	wsServer := ws.NewServer(router, userSvc)

	// --- HTTP ---
	handler := httpx.NewHandler(router, messageSvc)
	mux := httpx.NewRouter(handler, userSvc, wsServer)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
