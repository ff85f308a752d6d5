package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository"
)

const (
	animalsRange    = "Animals!A:J"
	weighingsRange  = "Weighings!A:D"
	feedsRange      = "Feeds!A:G"
	rationsRange    = "Rations!A:G"
	veterinaryRange = "Veterinary!A:E"
	expensesRange   = "Expenses!A:D"
	stockRunsRange  = "StockRuns!A:F"

	feedsSheet          = "Feeds"
	feedCurrentStockCol = 5
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on top of a spreadsheet, one tab per
// collection. Rows that cannot be parsed (including header rows) are skipped.
type Store struct {
	repo   Repository
	logger *zap.Logger
}

// NewStore wraps a spreadsheet repository.
func NewStore(repo Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, logger: logger}
}

// LoadSnapshot reads all tabs and keeps the rows of one farm.
func (s *Store) LoadSnapshot(ctx context.Context, farmID string) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{FarmID: farmID}

	if err := s.eachRow(ctx, animalsRange, farmID, 1, func(row []interface{}, _ int) error {
		a, err := parseAnimal(row)
		if err == nil {
			snapshot.Animals = append(snapshot.Animals, a)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.eachRow(ctx, weighingsRange, farmID, 0, func(row []interface{}, rowNumber int) error {
		w, err := parseWeighing(row, rowNumber)
		if err == nil {
			snapshot.Weighings = append(snapshot.Weighings, w)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.eachRow(ctx, feedsRange, farmID, 1, func(row []interface{}, _ int) error {
		f, err := parseFeed(row)
		if err == nil {
			snapshot.Feeds = append(snapshot.Feeds, f)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.eachRow(ctx, rationsRange, farmID, 1, func(row []interface{}, _ int) error {
		r, err := parseRation(row)
		if err == nil {
			snapshot.Rations = append(snapshot.Rations, r)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.eachRow(ctx, veterinaryRange, farmID, 0, func(row []interface{}, rowNumber int) error {
		v, err := parseVeterinary(row, rowNumber)
		if err == nil {
			snapshot.Veterinary = append(snapshot.Veterinary, v)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.eachRow(ctx, expensesRange, farmID, 0, func(row []interface{}, rowNumber int) error {
		e, err := parseExpense(row, rowNumber)
		if err == nil {
			snapshot.GeneralExpenses = append(snapshot.GeneralExpenses, e)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// eachRow calls fn for every row of sheetRange whose farm column matches.
// fn errors mark the row as malformed; they are logged, not returned.
func (s *Store) eachRow(ctx context.Context, sheetRange, farmID string, farmCol int, fn func(row []interface{}, rowNumber int) error) error {
	rows, err := s.repo.ReadRange(ctx, sheetRange)
	if err != nil {
		return fmt.Errorf("load %s: %w", sheetRange, err)
	}

	for i, row := range rows {
		if cell(row, farmCol) != farmID {
			continue
		}
		if err := fn(row, i+1); err != nil {
			s.logger.Debug("skip malformed row",
				zap.String("range", sheetRange),
				zap.Int("row", i+1),
				zap.Error(err),
			)
		}
	}
	return nil
}

// UpdateFeedStock rewrites the current stock cell of the feed's row.
func (s *Store) UpdateFeedStock(ctx context.Context, farmID, feedID string, stockKg float64) error {
	rows, err := s.repo.ReadRange(ctx, feedsRange)
	if err != nil {
		return fmt.Errorf("load %s: %w", feedsRange, err)
	}

	for i, row := range rows {
		if cell(row, 0) != feedID || cell(row, 1) != farmID {
			continue
		}
		target := fmt.Sprintf("%s!%s%d", feedsSheet, columnLetter(feedCurrentStockCol), i+1)
		if err := s.repo.UpdateCell(ctx, target, stockKg); err != nil {
			return fmt.Errorf("update feed stock %s: %w", feedID, err)
		}
		return nil
	}
	return fmt.Errorf("feed %s: %w", feedID, repository.ErrNotFound)
}

// SaveStockRecalculation appends a summary row to the StockRuns tab.
func (s *Store) SaveStockRecalculation(ctx context.Context, run models.StockRecalculation) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	values := []interface{}{
		run.RunID,
		run.FarmID,
		run.AsOf.Format(dateLayout),
		len(run.Levels) - len(run.FeedsFailed),
		strings.Join(run.FeedsFailed, ","),
		createdAt.Format(time.RFC3339),
	}
	if err := s.repo.WriteRow(ctx, stockRunsRange, values); err != nil {
		return fmt.Errorf("append stock recalculation: %w", err)
	}
	return nil
}

// Close is a no-op; the Sheets client holds no connection.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// Animals: id, farm_id, tag_number, group_id, birth_date, initial_weight_kg,
// last_weight_kg, purchase_price, status, passive_date.
func parseAnimal(row []interface{}) (models.Animal, error) {
	a := models.Animal{
		ID:        cell(row, 0),
		FarmID:    cell(row, 1),
		TagNumber: cell(row, 2),
		GroupID:   cell(row, 3),
		Status:    models.StatusActive,
	}
	if a.ID == "" {
		return a, fmt.Errorf("missing animal id")
	}

	var err error
	if a.RegistrationDate, err = parseDate(cell(row, 4)); err != nil {
		return a, fmt.Errorf("birth_date: %w", err)
	}
	if a.RegistrationWeight, err = parseOptionalFloat(cell(row, 5)); err != nil {
		return a, fmt.Errorf("initial_weight_kg: %w", err)
	}
	if a.LastWeight, err = parseOptionalFloat(cell(row, 6)); err != nil {
		return a, fmt.Errorf("last_weight_kg: %w", err)
	}
	if a.PurchasePrice, err = parseMoney(cell(row, 7)); err != nil {
		return a, fmt.Errorf("purchase_price: %w", err)
	}
	if strings.EqualFold(cell(row, 8), string(models.StatusPassive)) {
		a.Status = models.StatusPassive
	}
	if a.DeactivatedAt, err = parseOptionalDate(cell(row, 9)); err != nil {
		return a, fmt.Errorf("passive_date: %w", err)
	}
	return a, nil
}

// Weighings: farm_id, animal_id, weigh_date, weight_kg.
func parseWeighing(row []interface{}, rowNumber int) (models.Weighing, error) {
	w := models.Weighing{
		ID:       fmt.Sprintf("weighing-%d", rowNumber),
		AnimalID: cell(row, 1),
	}

	var err error
	if w.Date, err = parseDate(cell(row, 2)); err != nil {
		return w, fmt.Errorf("weigh_date: %w", err)
	}
	if w.WeightKg, err = parseFloat(cell(row, 3)); err != nil {
		return w, fmt.Errorf("weight_kg: %w", err)
	}
	return w, nil
}

// Feeds: id, farm_id, name, price_per_kg, initial_stock_kg, current_stock_kg, bag_weight_kg.
func parseFeed(row []interface{}) (models.Feed, error) {
	f := models.Feed{
		ID:     cell(row, 0),
		FarmID: cell(row, 1),
		Name:   cell(row, 2),
	}
	if f.ID == "" {
		return f, fmt.Errorf("missing feed id")
	}

	var err error
	if f.PricePerKg, err = parseMoney(cell(row, 3)); err != nil {
		return f, fmt.Errorf("price_per_kg: %w", err)
	}
	if f.InitialStockKg, err = parseOptionalFloat(cell(row, 4)); err != nil {
		return f, fmt.Errorf("initial_stock_kg: %w", err)
	}
	if f.CurrentStockKg, err = parseOptionalFloat(cell(row, 5)); err != nil {
		return f, fmt.Errorf("current_stock_kg: %w", err)
	}
	if f.BagWeightKg, err = parseOptionalFloat(cell(row, 6)); err != nil {
		return f, fmt.Errorf("bag_weight_kg: %w", err)
	}
	return f, nil
}

// Rations: id, farm_id, name, group_id, content, start_date, end_date.
func parseRation(row []interface{}) (models.Ration, error) {
	r := models.Ration{
		ID:      cell(row, 0),
		FarmID:  cell(row, 1),
		Name:    cell(row, 2),
		GroupID: cell(row, 3),
	}
	if r.ID == "" {
		return r, fmt.Errorf("missing ration id")
	}

	var err error
	if r.Items, err = parseRationContent(cell(row, 4)); err != nil {
		return r, fmt.Errorf("content: %w", err)
	}
	if r.StartDate, err = parseOptionalDate(cell(row, 5)); err != nil {
		return r, fmt.Errorf("start_date: %w", err)
	}
	if r.EndDate, err = parseOptionalDate(cell(row, 6)); err != nil {
		return r, fmt.Errorf("end_date: %w", err)
	}
	return r, nil
}

// Veterinary: farm_id, animal_id, process_date, procedure, cost.
func parseVeterinary(row []interface{}, rowNumber int) (models.VeterinaryRecord, error) {
	v := models.VeterinaryRecord{
		ID:        fmt.Sprintf("veterinary-%d", rowNumber),
		AnimalID:  cell(row, 1),
		Procedure: cell(row, 3),
	}

	var err error
	if v.Date, err = parseDate(cell(row, 2)); err != nil {
		return v, fmt.Errorf("process_date: %w", err)
	}
	if v.Cost, err = parseMoney(cell(row, 4)); err != nil {
		return v, fmt.Errorf("cost: %w", err)
	}
	return v, nil
}

// Expenses: farm_id, expense_date, description, amount.
func parseExpense(row []interface{}, rowNumber int) (models.GeneralExpense, error) {
	e := models.GeneralExpense{
		ID:          fmt.Sprintf("expense-%d", rowNumber),
		FarmID:      cell(row, 0),
		Description: cell(row, 2),
	}

	var err error
	if e.Date, err = parseDate(cell(row, 1)); err != nil {
		return e, fmt.Errorf("expense_date: %w", err)
	}
	if e.Amount, err = parseMoney(cell(row, 3)); err != nil {
		return e, fmt.Errorf("amount: %w", err)
	}
	return e, nil
}
