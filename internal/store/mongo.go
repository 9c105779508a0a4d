package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trading-journal-go/internal/models"
)

const mongoDatabaseName = "trading_journal"

// MongoStore is the document backend. Records keep the same small integer
// identifiers as the other backends via a counters collection, so the REST
// surface is identical regardless of the configured driver.
type MongoStore struct {
	client   *mongo.Client
	trades   *mongo.Collection
	videos   *mongo.Collection
	counters *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to the MongoDB instance at uri.
func NewMongoStore(uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(mongoDatabaseName)
	return &MongoStore{
		client:   client,
		trades:   db.Collection("trades"),
		videos:   db.Collection("videos"),
		counters: db.Collection("counters"),
	}, nil
}

// nextID atomically increments and returns the sequence for the named
// collection.
func (s *MongoStore) nextID(ctx context.Context, name string) (uint, error) {
	var doc struct {
		Seq uint `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", name, err)
	}
	return doc.Seq, nil
}

func (s *MongoStore) CreateTrade(ctx context.Context, t *models.Trade) error {
	id, err := s.nextID(ctx, "trades")
	if err != nil {
		return err
	}
	t.ID = id
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if _, err := s.trades.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTrade(ctx context.Context, id uint) (*models.Trade, error) {
	var t models.Trade
	err := s.trades.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trade %d: %w", id, err)
	}
	return &t, nil
}

func (s *MongoStore) ListTrades(ctx context.Context) ([]models.Trade, error) {
	return s.findTrades(ctx, bson.M{})
}

func (s *MongoStore) ListTradesByStatus(ctx context.Context, status string) ([]models.Trade, error) {
	return s.findTrades(ctx, bson.M{"status": status})
}

func (s *MongoStore) findTrades(ctx context.Context, filter bson.M) ([]models.Trade, error) {
	cursor, err := s.trades.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer cursor.Close(ctx)

	var trades []models.Trade
	if err := cursor.All(ctx, &trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	return trades, nil
}

func (s *MongoStore) UpdateTrade(ctx context.Context, t *models.Trade) error {
	result, err := s.trades.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteTrade(ctx context.Context, id uint) error {
	result, err := s.trades.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateVideo(ctx context.Context, v *models.Video) error {
	id, err := s.nextID(ctx, "videos")
	if err != nil {
		return err
	}
	v.ID = id
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if _, err := s.videos.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (s *MongoStore) GetVideo(ctx context.Context, id uint) (*models.Video, error) {
	var v models.Video
	err := s.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video %d: %w", id, err)
	}
	return &v, nil
}

func (s *MongoStore) ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Featured {
		query["is_featured"] = true
	}

	cursor, err := s.videos.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

func (s *MongoStore) UpdateVideo(ctx context.Context, v *models.Video) error {
	result, err := s.videos.ReplaceOne(ctx, bson.M{"_id": v.ID}, v)
	if err != nil {
		return fmt.Errorf("failed to update video %d: %w", v.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteVideo(ctx context.Context, id uint) error {
	result, err := s.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
