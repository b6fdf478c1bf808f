// Package team provides storage for teams and their membership maps.
package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/ids"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for teams.
const CollectionName = "teams"

// Store provides access to the teams collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new team store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a team.
type CreateInput struct {
	Name             string
	CreatedBy        string
	AllowFileSharing bool
}

// Create creates a new team. The creator becomes the owner.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Team, error) {
	if input.Name == "" || input.CreatedBy == "" {
		return nil, fmt.Errorf("%w: team name and creator are required", faults.ErrValidation)
	}

	now := time.Now().UTC()
	t := models.Team{
		ID:   ids.New(ids.PrefixTeam),
		Name: input.Name,
		Members: map[string]models.TeamMember{
			input.CreatedBy: {Role: models.RoleOwner, JoinedAt: now},
		},
		Settings:  models.TeamSettings{AllowFileSharing: input.AllowFileSharing},
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return nil, err
	}

	return &t, nil
}

// GetByID retrieves a team by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: team %s", faults.ErrNotFound, id)
		}
		return nil, err
	}
	return &t, nil
}

// SetMemberRole adds or updates a member with the given role. An empty
// role removes the member.
func (s *Store) SetMemberRole(ctx context.Context, teamID, userID, role string) error {
	if role == "" {
		res, err := s.c.UpdateByID(ctx, teamID, bson.M{
			"$unset": bson.M{"members." + userID: ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("%w: team %s", faults.ErrNotFound, teamID)
		}
		return nil
	}

	if !models.IsValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", faults.ErrValidation, role)
	}

	res, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$set": bson.M{
			"members." + userID: models.TeamMember{Role: role, JoinedAt: time.Now().UTC()},
			"updated_at":        time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: team %s", faults.ErrNotFound, teamID)
	}
	return nil
}

// SetAllowFileSharing toggles the team's file-sharing switch.
func (s *Store) SetAllowFileSharing(ctx context.Context, teamID string, allow bool) error {
	res, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$set": bson.M{
			"settings.allow_file_sharing": allow,
			"updated_at":                  time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: team %s", faults.ErrNotFound, teamID)
	}
	return nil
}

// Delete deletes a team document. Shared items are not cascaded here;
// callers decide what happens to the team's tree.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: team %s", faults.ErrNotFound, id)
	}
	return nil
}
