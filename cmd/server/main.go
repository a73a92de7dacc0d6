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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"provet/internal/audit"
	granthandler "provet/internal/grant/handler"
	grantservice "provet/internal/grant/service"
	"provet/internal/grant/store/object"
	intakehandler "provet/internal/intake/handler"
	intakeservice "provet/internal/intake/service"
	"provet/internal/intake/store/application"
	"provet/internal/platform/config"
	"provet/internal/platform/httpserver"
	"provet/internal/platform/logger"
	"provet/internal/platform/metrics"
	"provet/internal/session/adapters"
	sessionhandler "provet/internal/session/handler"
	"provet/internal/session/notify"
	sessionservice "provet/internal/session/service"
	"provet/internal/session/store/session"
	"provet/internal/session/token"
	httptransport "provet/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit sink: Kafka when brokers are configured, in-process otherwise.
	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("audit sink: %w", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events publishing to kafka", "topic", cfg.AuditTopic)
	} else {
		sink = audit.NewMemorySink()
		log.Info("audit events kept in process, no kafka brokers configured")
	}
	auditor := audit.NewPublisher(sink, audit.WithLogger(log), audit.WithAsyncBuffer(256))
	defer auditor.Close()

	// Session store: Redis when configured, in-memory otherwise.
	var sessions sessionservice.SessionStore
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		redisStore := session.NewRedis(client)
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		sessions = redisStore
		log.Info("sessions backed by redis")
	} else {
		sessions = session.NewMemory()
		log.Info("sessions kept in memory")
	}

	// Application store: Postgres when configured, in-memory otherwise.
	var applications intakeservice.ApplicationStore
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
		applications = application.NewPostgres(pool)
		log.Info("applications backed by postgres")
	} else {
		applications = application.NewMemory()
		log.Info("applications kept in memory")
	}

	objects, err := object.NewDisk(cfg.StorageRoot)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}

	grantSvc, err := grantservice.New(objects, grantservice.Config{
		Secret:         []byte(cfg.GrantSecret),
		GrantTTL:       cfg.GrantTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	},
		grantservice.WithLogger(log),
		grantservice.WithMetrics(m),
		grantservice.WithAuditPublisher(auditor),
	)
	if err != nil {
		return fmt.Errorf("grant service: %w", err)
	}

	intakeSvc, err := intakeservice.New(applications,
		intakeservice.WithLogger(log),
		intakeservice.WithMetrics(m),
		intakeservice.WithAuditPublisher(auditor),
	)
	if err != nil {
		return fmt.Errorf("intake service: %w", err)
	}

	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	sessionSvc, err := sessionservice.New(
		adapters.NewCredentialAdapter(applications),
		sessions,
		tokens,
		sessionservice.Config{SessionTTL: cfg.SessionTTL, TokenTTL: cfg.TokenTTL},
		sessionservice.WithLogger(log),
		sessionservice.WithMetrics(m),
		sessionservice.WithAuditPublisher(auditor),
		sessionservice.WithCodeSender(notify.NewLogSender(log)),
	)
	if err != nil {
		return fmt.Errorf("session service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Grant:        granthandler.New(grantSvc, cfg.MaxUploadBytes, log),
		Session:      sessionhandler.New(sessionSvc, log),
		Intake:       intakehandler.New(intakeSvc, log),
		JWTValidator: token.NewServiceAdapter(tokens),
		Logger:       log,
		Metrics:      m,
	})

	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
