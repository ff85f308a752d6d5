// Package accounting loads farm snapshots from the record store, runs the
// cost and growth engine over them and persists recomputed feed stock.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/engine"
	"github.com/mamadbah2/feedlot/internal/repository"
)

var (
	// ErrUnknownFarm is returned when no farm identifier is supplied.
	ErrUnknownFarm = errors.New("farm id is required")
	// ErrPartialStockWrite is returned when some recomputed stock values could
	// not be written. Re-running the recalculation is safe.
	ErrPartialStockWrite = errors.New("stock recalculation partially written")
)

// Service exposes the engine over one record store.
type Service struct {
	store    repository.Store
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
	newRunID func() string
}

// NewService wires a new accounting service. Dates are resolved in location,
// the farm's local time zone.
func NewService(store repository.Store, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		store:    store,
		logger:   logger,
		location: location,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

func (s *Service) today() time.Time {
	return engine.Day(s.now().In(s.location))
}

func (s *Service) snapshot(ctx context.Context, farmID string) (*models.Snapshot, error) {
	if strings.TrimSpace(farmID) == "" {
		return nil, ErrUnknownFarm
	}
	snapshot, err := s.store.LoadSnapshot(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for farm %s: %w", farmID, err)
	}
	if missing := engine.UnknownFeeds(snapshot); len(missing) > 0 {
		s.logger.Debug("rations reference unknown feeds",
			zap.String("farm_id", farmID),
			zap.Strings("feed_ids", missing),
		)
	}
	return snapshot, nil
}

// CostReport computes the cost breakdown of every animal, the per-group
// aggregates and the farm total.
func (s *Service) CostReport(ctx context.Context, farmID string) (*CostReport, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	breakdowns := engine.AllocateCosts(snapshot, today)
	return &CostReport{
		FarmID:  farmID,
		AsOf:    today,
		Animals: breakdowns,
		Groups:  engine.AggregateByGroup(breakdowns),
		Total:   engine.TotalCost(breakdowns),
	}, nil
}

// GrowthReport computes growth metrics for every animal.
func (s *Service) GrowthReport(ctx context.Context, farmID string) (*GrowthReport, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}

	return &GrowthReport{
		FarmID:  farmID,
		AsOf:    s.today(),
		Animals: engine.GrowthAll(snapshot),
	}, nil
}

// Project simulates the active animals forward to the requested target.
func (s *Service) Project(ctx context.Context, farmID string, params engine.ProjectionParams) (*ProjectionReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	breakdowns := engine.AllocateCosts(snapshot, today)
	projections := engine.ProjectHerd(snapshot, breakdowns, params, today)
	return &ProjectionReport{
		FarmID:      farmID,
		AsOf:        today,
		Projections: projections,
		Summary:     engine.SummarizeProjections(projections),
	}, nil
}

// RecalculateStock recomputes the stock of every feed from its full ration
// history and writes it back. Writing continues past individual failures; in
// that case the computed levels are returned with an error wrapping
// ErrPartialStockWrite.
func (s *Service) RecalculateStock(ctx context.Context, farmID string) (*models.StockRecalculation, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	run := &models.StockRecalculation{
		RunID:     s.newRunID(),
		FarmID:    farmID,
		AsOf:      today,
		Levels:    engine.RecalculateStock(snapshot, today),
		CreatedAt: s.now().UTC(),
	}

	var firstErr error
	for _, level := range run.Levels {
		if level.Clamped {
			s.logger.Warn("feed consumption exceeds initial stock",
				zap.String("farm_id", farmID),
				zap.String("feed_id", level.FeedID),
				zap.Float64("initial_kg", level.InitialStockKg),
				zap.Float64("consumed_kg", level.ConsumedKg),
			)
		}
		if err := s.store.UpdateFeedStock(ctx, farmID, level.FeedID, level.CurrentStockKg); err != nil {
			s.logger.Error("failed to write feed stock",
				zap.String("farm_id", farmID),
				zap.String("feed_id", level.FeedID),
				zap.Error(err),
			)
			run.FeedsFailed = append(run.FeedsFailed, level.FeedID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := s.store.SaveStockRecalculation(ctx, *run); err != nil {
		s.logger.Error("failed to record stock recalculation", zap.String("run_id", run.RunID), zap.Error(err))
	}

	s.logger.Info("stock recalculated",
		zap.String("farm_id", farmID),
		zap.String("run_id", run.RunID),
		zap.Int("feeds", len(run.Levels)),
		zap.Int("failed", len(run.FeedsFailed)),
	)

	if firstErr != nil {
		return run, fmt.Errorf("%w: %d of %d feeds failed: %w",
			ErrPartialStockWrite, len(run.FeedsFailed), len(run.Levels), firstErr)
	}
	return run, nil
}

// FeedStockReport reports how long each feed lasts at today's consumption.
func (s *Service) FeedStockReport(ctx context.Context, farmID string) (*FeedStockReport, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	lines := engine.FeedStockReport(snapshot, today)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.StockValue)
	}
	return &FeedStockReport{
		FarmID:     farmID,
		AsOf:       today,
		Feeds:      lines,
		TotalValue: total,
	}, nil
}

// WeighingDay reports the weighings recorded on day against each animal's history.
func (s *Service) WeighingDay(ctx context.Context, farmID string, day time.Time) (*WeighingDayReport, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}

	lines, summary := engine.WeighingDay(snapshot, day)
	return &WeighingDayReport{
		FarmID:  farmID,
		Date:    engine.Day(day),
		Lines:   lines,
		Summary: summary,
	}, nil
}

// VeterinaryDay lists the veterinary procedures performed on day.
func (s *Service) VeterinaryDay(ctx context.Context, farmID string, day time.Time) (*VeterinaryDayReport, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}

	records, total := engine.VeterinaryDay(snapshot.Veterinary, day)
	return &VeterinaryDayReport{
		FarmID:  farmID,
		Date:    engine.Day(day),
		Records: records,
		Total:   total,
	}, nil
}

// AnimalProfile combines the growth, cost and valuation of one animal.
// Returns repository.ErrNotFound for an unknown animal.
func (s *Service) AnimalProfile(ctx context.Context, farmID, animalID string, valuation Valuation) (*models.AnimalProfile, error) {
	snapshot, err := s.snapshot(ctx, farmID)
	if err != nil {
		return nil, err
	}

	animal, ok := snapshot.AnimalByID()[animalID]
	if !ok {
		return nil, fmt.Errorf("animal %s: %w", animalID, repository.ErrNotFound)
	}
	today := s.today()

	var cost models.CostBreakdown
	for _, b := range engine.AllocateCosts(snapshot, today) {
		if b.AnimalID == animalID {
			cost = b
			break
		}
	}

	growth := engine.Growth(animal, snapshot.WeighingsByAnimal()[animalID])
	weight := growth.CurrentWeightKg

	return &models.AnimalProfile{
		Animal:     animal,
		Growth:     growth,
		Cost:       cost,
		Veterinary: engine.AnimalVeterinaryHistory(snapshot.Veterinary, animalID),
		LiveValue: engine.SaleValue(weight, engine.ProjectionParams{
			Valuation:      engine.ValuationLive,
			LivePricePerKg: valuation.LivePricePerKg,
		}),
		CarcassValue: engine.SaleValue(weight, engine.ProjectionParams{
			Valuation:         engine.ValuationCarcass,
			CarcassPricePerKg: valuation.CarcassPricePerKg,
			YieldPercent:      valuation.YieldPercent,
		}),
	}, nil
}
