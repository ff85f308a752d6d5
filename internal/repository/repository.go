// Package repository defines the record store the accounting service reads
// farm snapshots from and writes recomputed feed stock to.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is implemented by every record store backend.
type Store interface {
	// LoadSnapshot reads every collection the engine needs for one farm.
	LoadSnapshot(ctx context.Context, farmID string) (*models.Snapshot, error)
	// UpdateFeedStock overwrites the current stock of one feed.
	UpdateFeedStock(ctx context.Context, farmID, feedID string, stockKg float64) error
	// SaveStockRecalculation records the outcome of a stock recomputation run.
	SaveStockRecalculation(ctx context.Context, run models.StockRecalculation) error
	Close(ctx context.Context) error
}
