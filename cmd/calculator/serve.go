package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trio-ev/internal/config"
	"github.com/yourusername/trio-ev/internal/evaluator"
	"github.com/yourusername/trio-ev/internal/health"
	"github.com/yourusername/trio-ev/internal/logger"
	"github.com/yourusername/trio-ev/internal/metrics"
	"github.com/yourusername/trio-ev/internal/scheduler"
	"github.com/yourusername/trio-ev/internal/web"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override server.port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web calculator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		appLog.WithFields(logrus.Fields{
			"environment": cfg.App.Environment,
			"log_level":   cfg.App.LogLevel,
			"version":     Version,
			"commit":      GitCommit,
		}).Info("Trio calculator starting")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, appLog)
	},
}

// serve wires the evaluator, cache jobs, health checks and web server, and blocks
// until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) error {
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	var cache *evaluator.EvaluationCache
	if cfg.Cache.Enabled {
		cache = evaluator.NewEvaluationCache(cfg.GetCacheTTL(), cfg.Cache.MaxSize)

		sched, err := newCacheScheduler(cfg, cache, appLog)
		if err != nil {
			return err
		}
		if sched != nil {
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}
	}

	eval := evaluator.New(cfg.Calculator.PayoutRate, cache)

	hs := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
	})

	srv, err := web.NewServer(cfg, eval, hs, appLog)
	if err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"address":     cfg.GetServerAddress(),
		"payout_rate": cfg.Calculator.PayoutRate,
		"cache":       cfg.Cache.Enabled,
		"rate_limit":  cfg.RateLimit.Enabled,
	}).Info("Calculator ready")

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}

	appLog.Info("Trio calculator shut down successfully")
	return nil
}

// newCacheScheduler returns nil when no cache job is configured.
func newCacheScheduler(cfg *config.Config, cache *evaluator.EvaluationCache, appLog *logrus.Logger) (*scheduler.Scheduler, error) {
	if cfg.Cache.StatsIntervalSeconds == 0 && cfg.Cache.FlushSchedule == "" {
		return nil, nil
	}

	sched := scheduler.NewScheduler(cache, logger.NewCalculatorLogger(appLog))
	if cfg.Cache.StatsIntervalSeconds > 0 {
		if err := sched.ScheduleCacheStats(cfg.Cache.StatsIntervalSeconds); err != nil {
			return nil, err
		}
	}
	if cfg.Cache.FlushSchedule != "" {
		if err := sched.ScheduleCacheFlush(cfg.Cache.FlushSchedule); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
