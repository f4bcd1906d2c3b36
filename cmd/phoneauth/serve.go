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

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/MrEthical07/phoneAuth/httpapi"
	"github.com/MrEthical07/phoneAuth/internal/config"
	"github.com/MrEthical07/phoneAuth/logging"
	"github.com/MrEthical07/phoneAuth/metrics/export/prometheus"
	"github.com/MrEthical07/phoneAuth/notify"
	"github.com/MrEthical07/phoneAuth/userstore"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	envFile      string
	addr         string
	counterStore string
	sweepSpec    string
	healthSpec   string
	shutdownWait time.Duration
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides HTTP_ADDR")
	cmd.Flags().StringVar(&opts.counterStore, "counter-store", "redis", "counter store backend: redis or memory")
	cmd.Flags().StringVar(&opts.sweepSpec, "sweep", "@every 1m", "cron spec for sweeping the memory counter store")
	cmd.Flags().StringVar(&opts.healthSpec, "health-check", "@every 30s", "cron spec for backend health checks")
	cmd.Flags().DurationVar(&opts.shutdownWait, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests and queued audit events on shutdown")
	return cmd
}

type pinger interface {
	Ping(ctx context.Context) error
}

type userBackend interface {
	phoneAuth.UserProvider
	pinger
}

func openUserStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (userBackend, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			return nil, nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set; accounts are kept in memory")
		return userstore.NewMemory(), func() {}, nil
	}

	pg, err := userstore.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return pg, func() { _ = pg.Close() }, nil
}

func runServe(parent context.Context, opts serveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.HTTPAddr = opts.addr
	}

	logger := logging.New(cfg.LogLevel, cfg.Production(), os.Stdout)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	counters, err := openCounterBackend(ctx, opts.counterStore, cfg, logger)
	if err != nil {
		return err
	}
	defer counters.close()

	users, closeUsers, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeUsers()

	engineCfg := cfg.Engine()
	engineCfg.KeyPrefix = cfg.RedisPrefix
	lint := engineCfg.Lint()
	for _, w := range lint.BySeverity(phoneAuth.LintWarn) {
		logger.WithFields(logrus.Fields{"code": w.Code, "severity": w.Severity.String()}).Warn(w.Message)
	}
	if cfg.Production() {
		if err := lint.AsError(phoneAuth.LintHigh); err != nil {
			return err
		}
	}

	engine, err := phoneAuth.New().
		WithConfig(engineCfg).
		WithCounterStore(counters.store).
		WithUserProvider(users).
		WithCodeSender(notify.NewLogSender(logger)).
		WithAuditSink(phoneAuth.NewLogrusSink(logger.WithField("component", "audit"))).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(opts))
		defer cancel()
		if err := engine.Shutdown(drainCtx); err != nil {
			logger.WithError(err).Warn("audit events lost on shutdown")
		}
	}()

	report := engine.SecurityReport()
	logger.WithFields(logrus.Fields{
		"production":      report.ProductionMode,
		"signing":         report.SigningAlgorithm,
		"atomic_counters": report.AtomicCounters,
		"otp_daily_limit": report.OTPDailyLimit,
	}).Info("engine ready")

	health := func(ctx context.Context) error {
		if err := counters.ping(ctx); err != nil {
			return fmt.Errorf("counter store: %w", err)
		}
		if err := users.Ping(ctx); err != nil {
			return fmt.Errorf("user store: %w", err)
		}
		return nil
	}

	jobs, err := startJobs(opts, counters, health, logger)
	if err != nil {
		return err
	}
	defer func() { <-jobs.Stop().Done() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(engine, httpapi.Options{
		Logger:     logger,
		RateLimit:  cfg.RateLimitLimit,
		RatePeriod: cfg.RateLimitPeriod,
		Metrics:    prometheus.NewExporter(engine).Handler(),
		Health:     health,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(opts))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func shutdownTimeout(opts serveOptions) time.Duration {
	if opts.shutdownWait <= 0 {
		return 10 * time.Second
	}
	return opts.shutdownWait
}

// startJobs schedules the memory store sweep and the backend health check.
func startJobs(opts serveOptions, counters *counterBackend, health func(context.Context) error, logger *logrus.Logger) (*cron.Cron, error) {
	cronLog := cron.PrintfLogger(logger.WithField("component", "cron"))
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))

	if counters.memory != nil {
		mem := counters.memory
		if _, err := c.AddFunc(opts.sweepSpec, func() {
			if n := mem.Sweep(); n > 0 {
				logger.WithField("removed", n).Debug("swept expired counters")
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule sweep %q: %w", opts.sweepSpec, err)
		}
	}

	if _, err := c.AddFunc(opts.healthSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := health(ctx); err != nil {
			logger.WithError(err).Warn("health check failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule health check %q: %w", opts.healthSpec, err)
	}

	c.Start()
	return c, nil
}
