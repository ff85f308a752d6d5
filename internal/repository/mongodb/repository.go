package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository"
)

const (
	animalsCollection    = "animals"
	weighingsCollection  = "weighings"
	feedsCollection      = "feeds"
	rationsCollection    = "rations"
	veterinaryCollection = "veterinary_records"
	expensesCollection   = "general_expenses"
	stockRunsCollection  = "stock_recalculations"
	farmIDField          = "farm_id"
	currentStockField    = "current_stock_kg"
)

var _ repository.Store = (*MongoDBRepository)(nil)

// MongoDBRepository implements repository.Store for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// EnsureIndexes creates the farm_id indexes every snapshot query filters on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	for _, name := range []string{
		animalsCollection, weighingsCollection, feedsCollection, rationsCollection,
		veterinaryCollection, expensesCollection, stockRunsCollection,
	} {
		index := mongo.IndexModel{Keys: bson.D{{Key: farmIDField, Value: 1}}}
		if _, err := r.db.Collection(name).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("create %s index on %s: %w", farmIDField, name, err)
		}
	}
	return nil
}

// LoadSnapshot reads all records of one farm.
func (r *MongoDBRepository) LoadSnapshot(ctx context.Context, farmID string) (*models.Snapshot, error) {
	filter := bson.M{farmIDField: farmID}
	snapshot := &models.Snapshot{FarmID: farmID}

	animals, err := findAll[animalDocument](ctx, r.db.Collection(animalsCollection), filter,
		options.Find().SetSort(bson.D{{Key: "tag_number", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load animals: %w", err)
	}
	for _, d := range animals {
		snapshot.Animals = append(snapshot.Animals, d.toModel())
	}

	weighings, err := findAll[weighingDocument](ctx, r.db.Collection(weighingsCollection), filter,
		options.Find().SetSort(bson.D{{Key: "weigh_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load weighings: %w", err)
	}
	for _, d := range weighings {
		snapshot.Weighings = append(snapshot.Weighings, d.toModel())
	}

	feeds, err := findAll[feedDocument](ctx, r.db.Collection(feedsCollection), filter)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}
	for _, d := range feeds {
		snapshot.Feeds = append(snapshot.Feeds, d.toModel())
	}

	rations, err := findAll[rationDocument](ctx, r.db.Collection(rationsCollection), filter)
	if err != nil {
		return nil, fmt.Errorf("load rations: %w", err)
	}
	for _, d := range rations {
		snapshot.Rations = append(snapshot.Rations, d.toModel())
	}

	vet, err := findAll[veterinaryDocument](ctx, r.db.Collection(veterinaryCollection), filter)
	if err != nil {
		return nil, fmt.Errorf("load veterinary records: %w", err)
	}
	for _, d := range vet {
		snapshot.Veterinary = append(snapshot.Veterinary, d.toModel())
	}

	expenses, err := findAll[expenseDocument](ctx, r.db.Collection(expensesCollection), filter)
	if err != nil {
		return nil, fmt.Errorf("load general expenses: %w", err)
	}
	for _, d := range expenses {
		snapshot.GeneralExpenses = append(snapshot.GeneralExpenses, d.toModel())
	}

	r.logger.Debug("snapshot loaded",
		zap.String("farm_id", farmID),
		zap.Int("animals", len(snapshot.Animals)),
		zap.Int("rations", len(snapshot.Rations)),
	)
	return snapshot, nil
}

// UpdateFeedStock sets current_stock_kg of one feed of the farm.
func (r *MongoDBRepository) UpdateFeedStock(ctx context.Context, farmID, feedID string, stockKg float64) error {
	id, err := primitive.ObjectIDFromHex(feedID)
	if err != nil {
		return fmt.Errorf("feed %s: %w", feedID, repository.ErrNotFound)
	}

	res, err := r.db.Collection(feedsCollection).UpdateOne(ctx,
		bson.M{"_id": id, farmIDField: farmID},
		bson.M{"$set": bson.M{currentStockField: stockKg}},
	)
	if err != nil {
		return fmt.Errorf("update feed stock %s: %w", feedID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("feed %s: %w", feedID, repository.ErrNotFound)
	}
	return nil
}

// SaveStockRecalculation stores the audit record of a recomputation run.
func (r *MongoDBRepository) SaveStockRecalculation(ctx context.Context, run models.StockRecalculation) error {
	_, err := r.db.Collection(stockRunsCollection).InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to insert stock recalculation: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
