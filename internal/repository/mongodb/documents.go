package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

type animalDocument struct {
	ID              primitive.ObjectID   `bson:"_id"`
	FarmID          string               `bson:"farm_id"`
	TagNumber       string               `bson:"tag_number"`
	GroupID         string               `bson:"group_id,omitempty"`
	BirthDate       time.Time            `bson:"birth_date"`
	InitialWeightKg float64              `bson:"initial_weight_kg"`
	LastWeightKg    float64              `bson:"last_weight_kg"`
	PurchasePrice   primitive.Decimal128 `bson:"purchase_price"`
	Status          string               `bson:"status"`
	PassiveDate     *time.Time           `bson:"passive_date,omitempty"`
}

type weighingDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	FarmID    string             `bson:"farm_id"`
	AnimalID  string             `bson:"animal_id"`
	WeighDate time.Time          `bson:"weigh_date"`
	WeightKg  float64            `bson:"weight_kg"`
}

type feedDocument struct {
	ID             primitive.ObjectID   `bson:"_id"`
	FarmID         string               `bson:"farm_id"`
	Name           string               `bson:"name"`
	PricePerKg     primitive.Decimal128 `bson:"price_per_kg"`
	InitialStockKg float64              `bson:"initial_stock_kg"`
	CurrentStockKg float64              `bson:"current_stock_kg"`
	BagWeightKg    float64              `bson:"bag_weight_kg"`
}

type rationItemDocument struct {
	FeedID string  `bson:"feed_id"`
	Amount float64 `bson:"amount"`
}

type rationDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	FarmID    string               `bson:"farm_id"`
	Name      string               `bson:"name"`
	GroupID   string               `bson:"group_id,omitempty"`
	Content   []rationItemDocument `bson:"content"`
	StartDate *time.Time           `bson:"start_date,omitempty"`
	EndDate   *time.Time           `bson:"end_date,omitempty"`
}

type veterinaryDocument struct {
	ID            primitive.ObjectID   `bson:"_id"`
	FarmID        string               `bson:"farm_id"`
	AnimalID      string               `bson:"animal_id"`
	ProcessDate   time.Time            `bson:"process_date"`
	ProcedureName string               `bson:"procedure_name"`
	Cost          primitive.Decimal128 `bson:"cost"`
}

type expenseDocument struct {
	ID          primitive.ObjectID   `bson:"_id"`
	FarmID      string               `bson:"farm_id"`
	ExpenseDate time.Time            `bson:"expense_date"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
}

// toDecimal converts a stored Decimal128. Unset and NaN values read as zero.
func toDecimal(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func (d animalDocument) toModel() models.Animal {
	status := models.StatusActive
	if d.Status == string(models.StatusPassive) {
		status = models.StatusPassive
	}
	return models.Animal{
		ID:                 d.ID.Hex(),
		FarmID:             d.FarmID,
		TagNumber:          d.TagNumber,
		GroupID:            d.GroupID,
		RegistrationDate:   d.BirthDate,
		RegistrationWeight: d.InitialWeightKg,
		PurchasePrice:      toDecimal(d.PurchasePrice),
		LastWeight:         d.LastWeightKg,
		Status:             status,
		DeactivatedAt:      d.PassiveDate,
	}
}

func (d weighingDocument) toModel() models.Weighing {
	return models.Weighing{
		ID:       d.ID.Hex(),
		AnimalID: d.AnimalID,
		Date:     d.WeighDate,
		WeightKg: d.WeightKg,
	}
}

func (d feedDocument) toModel() models.Feed {
	return models.Feed{
		ID:             d.ID.Hex(),
		FarmID:         d.FarmID,
		Name:           d.Name,
		PricePerKg:     toDecimal(d.PricePerKg),
		InitialStockKg: d.InitialStockKg,
		CurrentStockKg: d.CurrentStockKg,
		BagWeightKg:    d.BagWeightKg,
	}
}

func (d rationDocument) toModel() models.Ration {
	items := make([]models.RationItem, 0, len(d.Content))
	for _, item := range d.Content {
		items = append(items, models.RationItem{FeedID: item.FeedID, AmountKg: item.Amount})
	}
	return models.Ration{
		ID:        d.ID.Hex(),
		FarmID:    d.FarmID,
		Name:      d.Name,
		GroupID:   d.GroupID,
		Items:     items,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
	}
}

func (d veterinaryDocument) toModel() models.VeterinaryRecord {
	return models.VeterinaryRecord{
		ID:        d.ID.Hex(),
		AnimalID:  d.AnimalID,
		Date:      d.ProcessDate,
		Procedure: d.ProcedureName,
		Cost:      toDecimal(d.Cost),
	}
}

func (d expenseDocument) toModel() models.GeneralExpense {
	description := d.Description
	if description == "" {
		description = d.Category
	}
	return models.GeneralExpense{
		ID:          d.ID.Hex(),
		FarmID:      d.FarmID,
		Date:        d.ExpenseDate,
		Description: description,
		Amount:      toDecimal(d.Amount),
	}
}
