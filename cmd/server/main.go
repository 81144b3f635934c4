package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/devifer12/TableGenie/internal/audit"
	jwttoken "github.com/devifer12/TableGenie/internal/jwt_token"
	"github.com/devifer12/TableGenie/internal/platform/config"
	"github.com/devifer12/TableGenie/internal/platform/httpserver"
	"github.com/devifer12/TableGenie/internal/platform/logger"
	"github.com/devifer12/TableGenie/internal/platform/metrics"
	platformredis "github.com/devifer12/TableGenie/internal/platform/redis"
	"github.com/devifer12/TableGenie/internal/registration/handler"
	"github.com/devifer12/TableGenie/internal/registration/mailer"
	"github.com/devifer12/TableGenie/internal/registration/service"
	restaurantstore "github.com/devifer12/TableGenie/internal/registration/store/restaurant"
	tokenstore "github.com/devifer12/TableGenie/internal/registration/store/token"
	userstore "github.com/devifer12/TableGenie/internal/registration/store/user"
	"github.com/devifer12/TableGenie/internal/registration/verifier"
)

// main wires the registration service and keeps the process lifecycle small.
// Business logic lives in internal packages; everything here is composition.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Backends degrade gracefully: without DATABASE_URL or REDIS_URL the
	// in-memory stores serve, which is what local development runs on.
	var (
		restaurants service.RestaurantStore
		users       service.UserStore
		tokens      service.TokenStore
		auditStore  audit.Store
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		restaurants = restaurantstore.NewPostgresStore(db)
		users = userstore.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory restaurant and user stores")
		restaurants = restaurantstore.NewInMemoryStore()
		users = userstore.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		tokens = tokenstore.NewRedisStore(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, using in-memory token store")
		tokens = tokenstore.NewInMemoryStore()
	}

	var codeVerifier verifier.Verifier
	if cfg.FixedVerificationCode != "" {
		log.Warn("verification running with a fixed code, do not use in production")
		codeVerifier = verifier.NewFixed(cfg.FixedVerificationCode)
	} else {
		var sender verifier.Sender
		if cfg.SMTP.Host != "" {
			sender = mailer.NewGuardedSender(mailer.NewSMTPSender(cfg.SMTP), log)
		} else {
			log.Warn("SMTP_HOST not set, verification codes will be logged")
			sender = mailer.NewLogSender(log)
		}
		codeVerifier = verifier.New(sender, cfg.TokenTTL)
	}

	auditInbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	publisher := audit.NewPublisher(auditInbox, log)

	registration := service.New(service.Params{
		Tokens:      tokens,
		Restaurants: restaurants,
		Users:       users,
		Verifier:    codeVerifier,
		Sessions:    jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer),
		Logger:      log,
		Metrics:     m,
		Audit:       publisher,
		TokenTTL:    cfg.TokenTTL,
		SessionTTL:  cfg.SessionTTL,
	})
	sweeper := service.NewSweeper(tokens, cfg.SweepInterval, log, m, publisher)

	router := chi.NewRouter()
	handler.New(registration, log, m).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting tablegenie server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sweeper.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
