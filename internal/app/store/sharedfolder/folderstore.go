// Package sharedfolder provides storage for a team's shared folders.
package sharedfolder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratashare/internal/app/store/storeutil"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/ids"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for shared folders.
const CollectionName = "shared_folders"

// IndexTeamParentName names the compound listing index. List queries hint
// it and degrade to an unhinted query if it is missing.
const IndexTeamParentName = "team_parent_name"

// IndexTeamPath names the unique (team_id, folder_path) index used by
// breadcrumb point queries.
const IndexTeamPath = "team_path"

// Store provides access to the shared_folders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new shared folder store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a folder. FolderPath and
// Permissions are computed by the caller (fileshare service) so the store
// stays a plain persistence layer.
type CreateInput struct {
	TeamID      string
	Name        string
	ParentID    *string
	FolderPath  string
	Description string
	Permissions models.PermissionSet
	CreatedBy   string
}

// Create creates a new folder document.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.SharedFolder, error) {
	now := time.Now().UTC()
	f := models.SharedFolder{
		ID:             ids.New(ids.PrefixFolder),
		TeamID:         input.TeamID,
		Name:           input.Name,
		NameCI:         text.Fold(input.Name),
		ParentID:       input.ParentID,
		FolderPath:     input.FolderPath,
		Description:    input.Description,
		Permissions:    input.Permissions,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		LastModified:   now,
		LastModifiedBy: input.CreatedBy,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return nil, err
	}

	return &f, nil
}

// GetByID retrieves a folder by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.SharedFolder, error) {
	var f models.SharedFolder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}

// GetByPath resolves the folder owning an exact stored path within a team.
func (s *Store) GetByPath(ctx context.Context, teamID, path string) (*models.SharedFolder, error) {
	var f models.SharedFolder
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "folder_path": path}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no folder at %s", faults.ErrNotFound, path)
		}
		return nil, err
	}
	return &f, nil
}

// ListByParent returns all folders under a parent (nil = team root),
// sorted by case-insensitive name. The primary query hints the listing
// index; if the index is missing the query is retried unhinted and
// unsorted so callers still get usable results.
func (s *Store) ListByParent(ctx context.Context, teamID string, parentID *string) ([]models.SharedFolder, error) {
	filter := bson.M{"team_id": teamID, "parent_id": parentID}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetHint(IndexTeamParentName)

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil && storeutil.IsBadHint(err) {
		cursor, err = s.c.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.SharedFolder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// ListByPathPrefix returns every folder in the team whose stored path is
// the given path or lies beneath it. Used for cascading path updates and
// recursive deletes.
func (s *Store) ListByPathPrefix(ctx context.Context, teamID, path string) ([]models.SharedFolder, error) {
	filter := bson.M{
		"team_id": teamID,
		"$or": []bson.M{
			{"folder_path": path},
			{"folder_path": bson.M{"$regex": "^" + escapeRegex(path) + "/"}},
		},
	}

	cursor, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.SharedFolder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// SetParentAndPath moves a folder to a new parent, rewriting the
// denormalized path.
func (s *Store) SetParentAndPath(ctx context.Context, id string, parentID *string, path, modifiedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"folder_path":      path,
			"last_modified":    time.Now().UTC(),
			"last_modified_by": modifiedBy,
		},
	}
	if parentID == nil {
		update["$unset"] = bson.M{"parent_id": ""}
	} else {
		update["$set"].(bson.M)["parent_id"] = *parentID
	}

	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
	}
	return nil
}

// SetPath rewrites only the denormalized path. Used when cascading a
// parent move to descendants, whose parent_id does not change.
func (s *Store) SetPath(ctx context.Context, id, path string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"folder_path": path}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
	}
	return nil
}

// UpdateInput contains the input for updating a folder.
type UpdateInput struct {
	Name        *string
	FolderPath  *string // must accompany Name so the stored path stays consistent
	Description *string
	ModifiedBy  string
}

// Update updates a folder's mutable fields.
func (s *Store) Update(ctx context.Context, id string, input UpdateInput) error {
	set := bson.M{
		"last_modified":    time.Now().UTC(),
		"last_modified_by": input.ModifiedBy,
	}
	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = text.Fold(*input.Name)
	}
	if input.FolderPath != nil {
		set["folder_path"] = *input.FolderPath
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
	}
	return nil
}

// SetPermissions replaces a folder's permission set.
func (s *Store) SetPermissions(ctx context.Context, id string, p models.PermissionSet, modifiedBy string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"permissions":      p,
			"last_modified":    time.Now().UTC(),
			"last_modified_by": modifiedBy,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
	}
	return nil
}

// Delete deletes a folder document.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: folder %s", faults.ErrNotFound, id)
	}
	return nil
}

// DeleteMany deletes the given folder documents.
func (s *Store) DeleteMany(ctx context.Context, idList []string) (int64, error) {
	if len(idList) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": idList}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// escapeRegex escapes the characters MongoDB's regex engine treats
// specially so stored paths can be used as literal prefixes.
func escapeRegex(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(special); j++ {
			if s[i] == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
