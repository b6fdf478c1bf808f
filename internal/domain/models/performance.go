package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// PerformanceScores holds the numeric score set for one practice session.
type PerformanceScores struct {
	Overall       float64 `bson:"overall" json:"overall"`
	Technical     float64 `bson:"technical" json:"technical"`
	Communication float64 `bson:"communication" json:"communication"`
	Behavioral    float64 `bson:"behavioral" json:"behavioral"`
}

// PerformanceRecord is one interview practice session result.
//
// The sync layer treats records as opaque replication units keyed by ID:
// Details is never inspected, and conflict resolution between the local
// cache and the remote store compares only UpdatedAt per ID.
type PerformanceRecord struct {
	ID         string            `bson:"_id" json:"id"`
	UserID     string            `bson:"user_id" json:"userId"`
	RecordedAt time.Time         `bson:"recorded_at" json:"recordedAt"`
	Scores     PerformanceScores `bson:"scores" json:"scores"`
	Details    bson.M            `bson:"details,omitempty" json:"details,omitempty"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updatedAt"`
}
