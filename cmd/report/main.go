package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/internal/config"
	"github.com/stitts-dev/ffreport/internal/features"
	"github.com/stitts-dev/ffreport/internal/report"
	"github.com/stitts-dev/ffreport/internal/snapshot"
	"github.com/stitts-dev/ffreport/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("ffreport")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer closeStore()

	r := &runner{cfg: cfg, store: store, sources: guardSources(cfg, cfg.FeatureSources()), out: os.Stdout}

	if cfg.ReportSchedule == "" {
		if err := r.run(ctx); err != nil {
			log.Fatalf("Report failed: %v", err)
		}
		return
	}

	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log)))
	if _, err := c.AddFunc(cfg.ReportSchedule, func() {
		if err := r.run(ctx); err != nil {
			log.WithError(err).Error("Scheduled report failed")
		}
	}); err != nil {
		log.Fatalf("Invalid REPORT_SCHEDULE %q: %v", cfg.ReportSchedule, err)
	}
	c.Start()
	log.WithField("schedule", cfg.ReportSchedule).Info("Report scheduler started")

	<-ctx.Done()
	log.Info("Shutting down report scheduler...")
	<-c.Stop().Done()
	log.Info("Report scheduler exited")
}

func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	if cfg.SnapshotBackend == "redis" {
		store, err := snapshot.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return snapshot.NewFileStore(cfg.DataDir), func() {}, nil
}

// guardSources puts each configured feed behind its own rate limiter
// and circuit breaker.
func guardSources(cfg *config.Config, s report.Sources) report.Sources {
	if s.Arrests != nil {
		s.Arrests = features.NewGuardedSource(cfg.GuardConfig(features.BadBoyFeature)).Arrests(s.Arrests)
	}
	if s.Weights != nil {
		s.Weights = features.NewGuardedSource(cfg.GuardConfig(features.BeefFeature)).Weights(s.Weights)
	}
	if s.Fines != nil {
		s.Fines = features.NewGuardedSource(cfg.GuardConfig(features.HighRollerFeature)).Fines(s.Fines)
	}
	return s
}

type runner struct {
	cfg     *config.Config
	store   snapshot.Store
	sources report.Sources
	out     io.Writer
}

func (r *runner) run(ctx context.Context) error {
	league, err := report.LoadLeague(ctx, r.store, r.cfg.Season, r.cfg.Platform, r.cfg.LeagueID, r.cfg.WeekForReport)
	if err != nil {
		return err
	}
	if r.cfg.StartWeek > 0 {
		league.StartWeek = r.cfg.StartWeek
	}

	builder := report.NewBuilder(league, r.cfg.ReportSettings(), r.store, r.sources)
	data, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if bb := builder.BadBoy(); bb != nil && r.cfg.SaveData {
		if _, err := bb.CrimeCategoriesOutput(""); err != nil {
			logger.WithComponent("report").WithError(err).Warn("Failed to write crime categories")
		}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
