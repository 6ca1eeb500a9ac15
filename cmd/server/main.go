package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/device"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/otp"
	"github.com/belgacembalti/trustgate/internal/platform/config"
	"github.com/belgacembalti/trustgate/internal/platform/httpserver"
	"github.com/belgacembalti/trustgate/internal/platform/logger"
	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	platformredis "github.com/belgacembalti/trustgate/internal/platform/redis"
	"github.com/belgacembalti/trustgate/internal/session"
	"github.com/belgacembalti/trustgate/internal/token"
	httptransport "github.com/belgacembalti/trustgate/internal/transport/http"
	"github.com/belgacembalti/trustgate/internal/trust"
)

// main wires dependencies and owns process lifecycle. Business logic lives
// in the internal services; everything here is construction and shutdown.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	var (
		idStore     identity.Store
		bioStore    identity.BiometricStore
		deviceStore device.Store
		alertStore  alert.Store
		logStore    accesslog.Store
		otpStore    otp.Store
		trl         token.RevocationList
	)

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}

		idStore = identity.NewPostgresStore(db)
		bioStore = identity.NewPostgresBiometricStore(db)
		deviceStore = device.NewPostgresStore(db)
		alertStore = alert.NewPostgresStore(db)
		logStore = accesslog.NewPostgresStore(db)
		trl = token.NewPostgresTRL(db)
		log.Info("using postgres stores")
	} else {
		idStore = identity.NewMemoryStore()
		bioStore = identity.NewMemoryBiometricStore()
		deviceStore = device.NewMemoryStore()
		alertStore = alert.NewMemoryStore()
		logStore = accesslog.NewMemoryStore()
		trl = token.NewMemoryTRL()
		log.Warn("no postgres DSN configured, state is in-memory only")
	}

	otpStore = otp.NewMemoryStore()
	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		otpStore = otp.NewRedisStore(rdb.Client)
		trl = token.NewRedisTRL(rdb.Client)
		log.Info("using redis for OTP challenges and token revocations")
	}

	sinkOpts := []alert.SinkOption{alert.WithLogger(log), alert.WithMetrics(m)}
	var (
		kafkaClient *kgo.Client
		publisher   *alert.KafkaPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err = kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaClient.Close()

		publisher = alert.NewKafkaPublisher(kafkaClient, cfg.KafkaAlertTopic,
			alert.WithPublisherLogger(log))
		sinkOpts = append(sinkOpts, alert.WithPublisher(publisher))
		log.Info("publishing security alerts", "topic", cfg.KafkaAlertTopic)
	}
	sink := alert.NewSink(alertStore, sinkOpts...)

	engine := trust.NewEngine(idStore, trust.Config{
		StepUpFloor:       cfg.StepUpFloor,
		AlertThreshold:    cfg.AlertThreshold,
		FailureWindow:     cfg.FailureWindow,
		FailuresPerWindow: cfg.FailuresPerWindow,
	}, trust.WithLogger(log), trust.WithMetrics(m))

	registry := device.NewRegistry(deviceStore, device.WithLogger(log), device.WithMetrics(m))
	challenges := otp.NewService(otpStore,
		otp.WithLogger(log), otp.WithMetrics(m), otp.WithTTL(cfg.OTPTTL))
	attempts := accesslog.NewRecorder(logStore, accesslog.WithLogger(log))
	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL, trl)
	idService := identity.NewService(idStore, bioStore, identity.WithLogger(log))

	issuer := session.NewIssuer(idStore, engine, registry, challenges, tokens, sink, attempts,
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithBiometrics(bioStore, identity.NewTemplateMatcher()))

	handler := httptransport.NewHandler(issuer, idService, idStore, tokens,
		token.NewAccessValidator(tokens), registry, sink, attempts)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	if publisher != nil {
		group.Go(func() error {
			if err := publisher.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
