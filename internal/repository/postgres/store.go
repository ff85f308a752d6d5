package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository"
)

// Store implements repository.Store using PostgreSQL.
type Store struct {
	pool   *Pool
	logger *zap.Logger
}

// NewStore creates a new Store.
func NewStore(pool *Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// Compile-time interface check.
var _ repository.Store = (*Store)(nil)

// LoadSnapshot reads all records of one farm.
func (s *Store) LoadSnapshot(ctx context.Context, farmID string) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{FarmID: farmID}

	var err error
	if snapshot.Animals, err = s.loadAnimals(ctx, farmID); err != nil {
		return nil, err
	}
	if snapshot.Weighings, err = s.loadWeighings(ctx, farmID); err != nil {
		return nil, err
	}
	if snapshot.Feeds, err = s.loadFeeds(ctx, farmID); err != nil {
		return nil, err
	}
	if snapshot.Rations, err = s.loadRations(ctx, farmID); err != nil {
		return nil, err
	}
	if snapshot.Veterinary, err = s.loadVeterinary(ctx, farmID); err != nil {
		return nil, err
	}
	if snapshot.GeneralExpenses, err = s.loadExpenses(ctx, farmID); err != nil {
		return nil, err
	}

	s.logger.Debug("snapshot loaded",
		zap.String("farm_id", farmID),
		zap.Int("animals", len(snapshot.Animals)),
		zap.Int("rations", len(snapshot.Rations)),
	)
	return snapshot, nil
}

func (s *Store) loadAnimals(ctx context.Context, farmID string) ([]models.Animal, error) {
	query := `
		SELECT id::text, farm_id, tag_number, COALESCE(group_id, ''), birth_date,
		       initial_weight_kg::float8, last_weight_kg::float8, purchase_price::text,
		       status, passive_date
		FROM animals
		WHERE farm_id = $1
		ORDER BY tag_number ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query animals: %w", err)
	}

	animals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Animal, error) {
		var a models.Animal
		var price, status string
		if err := row.Scan(
			&a.ID, &a.FarmID, &a.TagNumber, &a.GroupID, &a.RegistrationDate,
			&a.RegistrationWeight, &a.LastWeight, &price,
			&status, &a.DeactivatedAt,
		); err != nil {
			return a, err
		}
		a.Status = models.AnimalStatus(status)
		a.PurchasePrice = parseMoney(price)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan animals: %w", err)
	}
	return animals, nil
}

func (s *Store) loadWeighings(ctx context.Context, farmID string) ([]models.Weighing, error) {
	query := `
		SELECT id::text, animal_id, weigh_date, weight_kg::float8
		FROM weighings
		WHERE farm_id = $1
		ORDER BY weigh_date ASC, created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query weighings: %w", err)
	}

	weighings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Weighing, error) {
		var w models.Weighing
		err := row.Scan(&w.ID, &w.AnimalID, &w.Date, &w.WeightKg)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan weighings: %w", err)
	}
	return weighings, nil
}

func (s *Store) loadFeeds(ctx context.Context, farmID string) ([]models.Feed, error) {
	query := `
		SELECT id::text, farm_id, name, price_per_kg::text,
		       initial_stock_kg::float8, current_stock_kg::float8, bag_weight_kg::float8
		FROM feeds
		WHERE farm_id = $1
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}

	feeds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Feed, error) {
		var f models.Feed
		var price string
		if err := row.Scan(&f.ID, &f.FarmID, &f.Name, &price,
			&f.InitialStockKg, &f.CurrentStockKg, &f.BagWeightKg); err != nil {
			return f, err
		}
		f.PricePerKg = parseMoney(price)
		return f, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan feeds: %w", err)
	}
	return feeds, nil
}

func (s *Store) loadRations(ctx context.Context, farmID string) ([]models.Ration, error) {
	query := `
		SELECT id::text, farm_id, name, COALESCE(group_id, ''), content, start_date, end_date
		FROM rations
		WHERE farm_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query rations: %w", err)
	}

	rations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Ration, error) {
		var r models.Ration
		var content []rationContentItem
		if err := row.Scan(&r.ID, &r.FarmID, &r.Name, &r.GroupID, &content, &r.StartDate, &r.EndDate); err != nil {
			return r, err
		}
		r.Items = make([]models.RationItem, 0, len(content))
		for _, item := range content {
			r.Items = append(r.Items, models.RationItem{FeedID: string(item.FeedID), AmountKg: float64(item.Amount)})
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan rations: %w", err)
	}
	return rations, nil
}

func (s *Store) loadVeterinary(ctx context.Context, farmID string) ([]models.VeterinaryRecord, error) {
	query := `
		SELECT id::text, animal_id, process_date, procedure_name, cost::text
		FROM veterinary_records
		WHERE farm_id = $1
		ORDER BY process_date ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query veterinary records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VeterinaryRecord, error) {
		var v models.VeterinaryRecord
		var cost string
		if err := row.Scan(&v.ID, &v.AnimalID, &v.Date, &v.Procedure, &cost); err != nil {
			return v, err
		}
		v.Cost = parseMoney(cost)
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan veterinary records: %w", err)
	}
	return records, nil
}

func (s *Store) loadExpenses(ctx context.Context, farmID string) ([]models.GeneralExpense, error) {
	query := `
		SELECT id::text, farm_id, expense_date,
		       COALESCE(NULLIF(description, ''), category), amount::text
		FROM general_expenses
		WHERE farm_id = $1
		ORDER BY expense_date ASC
	`

	rows, err := s.pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("query general expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.GeneralExpense, error) {
		var e models.GeneralExpense
		var amount string
		if err := row.Scan(&e.ID, &e.FarmID, &e.Date, &e.Description, &amount); err != nil {
			return e, err
		}
		e.Amount = parseMoney(amount)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan general expenses: %w", err)
	}
	return expenses, nil
}

// UpdateFeedStock sets current_stock_kg of one feed. Returns ErrNotFound if
// the farm has no such feed.
func (s *Store) UpdateFeedStock(ctx context.Context, farmID, feedID string, stockKg float64) error {
	query := `
		UPDATE feeds
		SET current_stock_kg = $1
		WHERE farm_id = $2 AND id::text = $3
		RETURNING id::text
	`

	var id string
	if err := s.pool.QueryRow(ctx, query, stockKg, farmID, feedID).Scan(&id); err != nil {
		if isNotFoundError(err) {
			return fmt.Errorf("feed %s: %w", feedID, repository.ErrNotFound)
		}
		return fmt.Errorf("update feed stock %s: %w", feedID, err)
	}
	return nil
}

// SaveStockRecalculation inserts the audit record of a recomputation run.
func (s *Store) SaveStockRecalculation(ctx context.Context, run models.StockRecalculation) error {
	query := `
		INSERT INTO stock_recalculations (run_id, farm_id, as_of, levels, feeds_failed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	failed := run.FeedsFailed
	if failed == nil {
		failed = []string{}
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, query, run.RunID, run.FarmID, run.AsOf, run.Levels, failed, createdAt)
	if err != nil {
		return fmt.Errorf("insert stock recalculation: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// parseMoney reads a NUMERIC rendered as text; malformed values read as zero.
func parseMoney(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// rationContentItem is one element of rations.content. Rows written by older
// clients carry numeric feed ids and amounts typed as strings.
type rationContentItem struct {
	FeedID flexString `json:"feed_id"`
	Amount flexFloat  `json:"amount"`
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feed_id: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}
