package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

const (
	recalcTimeout = 5 * time.Minute
	digestTimeout = 2 * time.Minute
)

// StockRecalculator recomputes the feed stock of one farm.
type StockRecalculator interface {
	RecalculateStock(ctx context.Context, farmID string) (*models.StockRecalculation, error)
}

// DigestSender delivers the herd digest of one farm.
type DigestSender interface {
	SendDigest(ctx context.Context, farmID, to string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	stock   StockRecalculator
	digest  DigestSender
	cfg     config.SchedulerConfig
	farmIDs []string
	baseCtx context.Context
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance. digest may be nil when
// delivery is not configured; the digest job is then not registered.
func NewScheduler(ctx context.Context, cfg config.SchedulerConfig, farmIDs []string, location *time.Location, stock StockRecalculator, digest DigestSender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if location == nil {
		location = time.UTC
	}

	// Standard five-field expressions, evaluated in the farm's time zone.
	c := cron.New(cron.WithLocation(location))

	return &Scheduler{
		cron:    c,
		stock:   stock,
		digest:  digest,
		cfg:     cfg,
		farmIDs: farmIDs,
		baseCtx: ctx,
		logger:  logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.Strings("farm_ids", s.farmIDs))

	if len(s.farmIDs) == 0 {
		s.logger.Warn("no farms configured; scheduled jobs will not run")
	}

	if _, err := s.cron.AddFunc(s.cfg.StockRecalcCron, s.recalculateStock); err != nil {
		return fmt.Errorf("schedule stock recalculation %q: %w", s.cfg.StockRecalcCron, err)
	}

	if s.digest != nil {
		if _, err := s.cron.AddFunc(s.cfg.DigestCron, s.sendDigests); err != nil {
			return fmt.Errorf("schedule digest %q: %w", s.cfg.DigestCron, err)
		}
	} else {
		s.logger.Info("digest delivery not configured; digest job skipped")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) recalculateStock() {
	for _, farmID := range s.farmIDs {
		s.recalculateFarm(farmID)
	}
}

func (s *Scheduler) recalculateFarm(farmID string) {
	ctx, cancel := context.WithTimeout(s.baseCtx, recalcTimeout)
	defer cancel()

	run, err := s.stock.RecalculateStock(ctx, farmID)
	if err != nil {
		fields := []zap.Field{zap.String("farm_id", farmID), zap.Error(err)}
		if run != nil {
			fields = append(fields, zap.String("run_id", run.RunID), zap.Strings("feeds_failed", run.FeedsFailed))
		}
		s.logger.Error("scheduled stock recalculation failed", fields...)
		return
	}
	s.logger.Info("scheduled stock recalculation done",
		zap.String("farm_id", farmID),
		zap.String("run_id", run.RunID),
		zap.Int("feeds", len(run.Levels)),
	)
}

func (s *Scheduler) sendDigests() {
	for _, farmID := range s.farmIDs {
		s.sendDigest(farmID)
	}
}

func (s *Scheduler) sendDigest(farmID string) {
	s.logger.Info("generating herd digest", zap.String("farm_id", farmID))
	ctx, cancel := context.WithTimeout(s.baseCtx, digestTimeout)
	defer cancel()

	if err := s.digest.SendDigest(ctx, farmID, ""); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("herd digest timed out", zap.String("farm_id", farmID), zap.Duration("timeout", digestTimeout))
			return
		}
		s.logger.Error("failed to send herd digest", zap.String("farm_id", farmID), zap.Error(err))
		return
	}
	s.logger.Info("herd digest sent successfully", zap.String("farm_id", farmID))
}
