// Package performance provides the remote store for interview
// performance records, the pull/push target of the sync layer.
package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for performance records.
const CollectionName = "performance_records"

// Store provides access to the performance_records collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new performance store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// Upsert writes a record keyed by its ID. Re-upserting an unchanged
// record is a no-op at the document level, which keeps periodic sync
// idempotent.
func (s *Store) Upsert(ctx context.Context, rec models.PerformanceRecord) error {
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("%w: record id and user id are required", faults.ErrValidation)
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts)
	return err
}

// GetByID retrieves a record by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.PerformanceRecord, error) {
	var rec models.PerformanceRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: record %s", faults.ErrNotFound, id)
		}
		return nil, err
	}
	return &rec, nil
}

// ListByUser returns a user's records, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.PerformanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})

	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.PerformanceRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// ListUpdatedSince returns a user's records touched at or after the given
// time. The sync pull uses it to avoid re-reading the full history on
// every cycle.
func (s *Store) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.PerformanceRecord, error) {
	filter := bson.M{"user_id": userID}
	if !since.IsZero() {
		filter["updated_at"] = bson.M{"$gte": since}
	}

	cursor, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.PerformanceRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
