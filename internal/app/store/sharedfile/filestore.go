// Package sharedfile provides storage for a team's shared file documents.
package sharedfile

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

// CollectionName is the MongoDB collection for shared files.
const CollectionName = "shared_files"

// IndexTeamParentName names the compound listing index.
const IndexTeamParentName = "team_parent_name"

// Store provides access to the shared_files collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new shared file store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a file document. Exactly
// one of Content/BlobKey/URL must be set, matching StorageType; the
// fileshare service owns that decision.
type CreateInput struct {
	TeamID      string
	Name        string
	ParentID    *string
	FolderPath  string
	Permissions models.PermissionSet
	FileType    string
	FileSize    int64
	StorageType models.StorageType
	Content     string
	BlobKey     string
	URL         string
	CreatedBy   string
}

// Create creates a new file document with version 1.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.SharedFile, error) {
	now := time.Now().UTC()
	f := models.SharedFile{
		ID:             ids.New(ids.PrefixFile),
		TeamID:         input.TeamID,
		Name:           input.Name,
		NameCI:         text.Fold(input.Name),
		ParentID:       input.ParentID,
		FolderPath:     input.FolderPath,
		Permissions:    input.Permissions,
		FileType:       input.FileType,
		FileSize:       input.FileSize,
		StorageType:    input.StorageType,
		Content:        input.Content,
		BlobKey:        input.BlobKey,
		URL:            input.URL,
		Version:        1,
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

// GetByID retrieves a file by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.SharedFile, error) {
	var f models.SharedFile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}

// ListByParent returns all files under a parent folder (nil = team root),
// sorted by case-insensitive name, with the same hinted-query fallback as
// the folder store.
func (s *Store) ListByParent(ctx context.Context, teamID string, parentID *string) ([]models.SharedFile, error) {
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

	var files []models.SharedFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	return files, nil
}

// ListByPathPrefix returns every file whose stored folder path is the
// given path or lies beneath it. Used by cascading moves and deletes.
func (s *Store) ListByPathPrefix(ctx context.Context, teamID, path string) ([]models.SharedFile, error) {
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

	var files []models.SharedFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	return files, nil
}

// UpdateContent replaces the payload fields and bumps the version
// counter. The version is advisory: there is no compare-and-swap.
func (s *Store) UpdateContent(ctx context.Context, id string, storageType models.StorageType, content, blobKey, url string, size int64, modifiedBy string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"storage_type":     storageType,
			"content":          content,
			"blob_key":         blobKey,
			"url":              url,
			"file_size":        size,
			"last_modified":    time.Now().UTC(),
			"last_modified_by": modifiedBy,
		},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// Rename updates the file's display name.
func (s *Store) Rename(ctx context.Context, id, name, modifiedBy string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"name":             name,
			"name_ci":          text.Fold(name),
			"last_modified":    time.Now().UTC(),
			"last_modified_by": modifiedBy,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// SetParentAndPath moves a file under a new parent folder.
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
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// SetPath rewrites only the denormalized path (cascade helper).
func (s *Store) SetPath(ctx context.Context, id, path string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"folder_path": path}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// SetPermissions replaces a file's permission set.
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
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// Delete deletes a file document.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: file %s", faults.ErrNotFound, id)
	}
	return nil
}

// DeleteByParent deletes every file directly under a folder. Returns the
// deleted documents so callers can clean up blob store objects.
func (s *Store) DeleteByParent(ctx context.Context, teamID, parentID string) ([]models.SharedFile, error) {
	pid := parentID
	filter := bson.M{"team_id": teamID, "parent_id": &pid}

	cursor, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var files []models.SharedFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	if len(files) > 0 {
		if _, err := s.c.DeleteMany(ctx, filter); err != nil {
			return nil, err
		}
	}
	return files, nil
}

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
