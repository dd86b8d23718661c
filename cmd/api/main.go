package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"buzzi-console/internal/config"
	"buzzi-console/internal/database"
	"buzzi-console/internal/events"
	"buzzi-console/internal/guard"
	"buzzi-console/internal/invoice"
	"buzzi-console/internal/models"
	"buzzi-console/internal/remotesession"
	"buzzi-console/internal/repository"
	"buzzi-console/internal/repository/postgres"
	"buzzi-console/internal/repository/remote"
	"buzzi-console/internal/router"
	"buzzi-console/internal/service"
	"buzzi-console/internal/state"
	"buzzi-console/internal/telemetry"
	"buzzi-console/internal/utils"
	"buzzi-console/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	issueToken := pflag.String("issue-token", "", "print an admin session token for this user id and exit")
	tokenTTL := pflag.Duration("token-ttl", 12*time.Hour, "lifetime of tokens printed by --issue-token")
	pflag.Parse()

	// config + logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	l := logger.New(cfg.Env)

	if *issueToken != "" {
		tok, err := utils.SignJWT(cfg.SessionSecret, *issueToken, string(models.RoleAdmin), *tokenTTL)
		if err != nil {
			l.Fatal().Err(err).Msg("sign token")
		}
		fmt.Println(tok)
		return
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Service:     "buzzi-console",
		Version:     version,
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.OTLPSampleRatio,
	}, l)
	if err != nil {
		l.Error().Err(err).Msg("tracing disabled")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// backend
	backend, closeBackend, err := openBackend(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Str("backend", cfg.Backend).Msg("backend setup failed")
	}
	defer closeBackend()

	// in-flight guard
	var g guard.Guard = guard.NewLocal()
	if cfg.RedisURL != "" {
		rc, err := guard.Connect(cfg.RedisURL)
		if err != nil {
			l.Fatal().Err(err).Msg("redis setup failed")
		}
		defer rc.Close()
		g = guard.NewRedis(rc, 30*time.Second, l)
		l.Info().Msg("using redis in-flight guard")
	}

	// events
	pub, err := openEvents(cfg)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.EventsDriver).Msg("events setup failed")
	}
	defer pub.Close()

	st := state.New()
	var sessionRejected atomic.Bool
	ops := service.NewOperations(service.Deps{
		Backend:  backend,
		State:    st,
		Guard:    g,
		Events:   pub,
		Invoices: invoice.NewHTMLRenderer(cfg.InvoiceDir, cfg.CompanyName),
		Sessions: remotesession.New(remotesession.ClientHandoff{}, remotesession.ClientHandoff{}, remotesession.ClientHandoff{}, cfg.RemoteGrace),
		Log:      l,
		OnUnauthorized: func() {
			// the console's backend session is gone: hide every revealed code
			sessionRejected.Store(true)
			st.Vault.Reset()
			l.Error().Msg("backend rejected the console token; revealed codes cleared")
		},
	})

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := ops.Refresh(loadCtx); err != nil {
		l.Error().Err(err).Msg("initial load failed; serving empty caches until /api/refresh")
	}
	cancel()

	health := func(context.Context) error {
		if sessionRejected.Load() {
			return errors.New("backend session rejected")
		}
		return nil
	}

	// http
	r := router.New(l, ops, cfg, health)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}

func openBackend(ctx context.Context, cfg config.Config, l zerolog.Logger) (repository.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		l.Info().Msg("postgres backend ready")
		return postgres.NewStore(pool), pool.Close, nil
	default:
		c, err := remote.New(cfg.BackendURL, cfg.BackendToken, nil)
		if err != nil {
			return nil, nil, err
		}
		if cfg.BackendToken == "" {
			l.Warn().Msg("BACKEND_TOKEN is empty; backend calls will be unauthenticated")
		}
		return c, func() {}, nil
	}
}

func openEvents(cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsNATS:
		p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.EventsPrefix)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.EventsKafka:
		p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsPrefix)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return events.Noop{}, nil
	}
}
