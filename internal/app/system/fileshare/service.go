// Package fileshare implements the team file and folder store: permission
// checks, storage-tier placement, path maintenance, and cascading
// operations over the document stores and the external blob store.
//
// Every operation checks permissions before touching storage and fails
// closed: no partial write happens unless the check passes.
package fileshare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dalemusser/stratashare/internal/app/store/sharedfile"
	"github.com/dalemusser/stratashare/internal/app/store/sharedfolder"
	"github.com/dalemusser/stratashare/internal/app/store/team"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/pathing"
	"github.com/dalemusser/stratashare/internal/app/system/storagetier"
	"github.com/dalemusser/stratashare/internal/app/system/teamperm"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the team file and folder store.
type Service struct {
	teams   *team.Store
	folders *sharedfolder.Store
	files   *sharedfile.Store
	blobs   storage.Store
	logger  *zap.Logger
}

// New creates a fileshare service.
func New(teams *team.Store, folders *sharedfolder.Store, files *sharedfile.Store, blobs storage.Store, logger *zap.Logger) *Service {
	return &Service{
		teams:   teams,
		folders: folders,
		files:   files,
		blobs:   blobs,
		logger:  logger,
	}
}

// ShareFileInput contains the input for sharing a file with a team.
// Exactly one of Data or URLRef supplies the payload.
type ShareFileInput struct {
	TeamID   string
	UserID   string
	Name     string
	FileType string
	ParentID *string
	Data     []byte // decoded payload
	URLRef   string // caller-supplied external link
}

// ShareFile stores a new file for a team. Placement follows the storage
// tier for the payload size: small files are embedded, mid-size files
// prefer the blob store with an inline fallback, and files at or above
// the document ceiling must upload successfully or the share fails with
// nothing persisted.
func (s *Service) ShareFile(ctx context.Context, in ShareFileInput) (*models.SharedFile, error) {
	if in.TeamID == "" || in.UserID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: teamId, userId and fileName are required", faults.ErrValidation)
	}
	if len(in.Data) == 0 && in.URLRef == "" {
		return nil, fmt.Errorf("%w: either content or url is required", faults.ErrValidation)
	}

	if t, err := s.teams.GetByID(ctx, in.TeamID); err == nil && !t.Settings.AllowFileSharing {
		return nil, fmt.Errorf("%w: file sharing is disabled for this team", faults.ErrAccessDenied)
	}

	parentID, parentPath, err := s.resolveParent(ctx, in.TeamID, in.ParentID)
	if err != nil {
		return nil, err
	}

	fileType := in.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	input := sharedfile.CreateInput{
		TeamID:      in.TeamID,
		Name:        in.Name,
		ParentID:    parentID,
		FolderPath:  parentPath,
		Permissions: teamperm.Derive(ctx, s.teams, in.TeamID, in.UserID, s.logger),
		FileType:    fileType,
		FileSize:    int64(len(in.Data)),
		CreatedBy:   in.UserID,
	}

	if in.URLRef != "" {
		input.StorageType = models.StorageURL
		input.URL = in.URLRef
	} else {
		placed, err := s.placePayload(ctx, in.TeamID, in.Name, fileType, in.Data)
		if err != nil {
			return nil, err
		}
		input.StorageType = placed.storageType
		input.Content = placed.content
		input.BlobKey = placed.blobKey
		input.URL = placed.url
	}

	created, err := s.files.Create(ctx, input)
	if err != nil {
		// Clean up an uploaded blob on DB error so storage doesn't leak.
		if input.BlobKey != "" {
			_ = s.blobs.Delete(ctx, input.BlobKey)
		}
		return nil, err
	}

	s.logger.Debug("file shared",
		zap.String("file_id", created.ID),
		zap.String("team_id", created.TeamID),
		zap.String("storage_type", string(created.StorageType)),
		zap.Int64("size", created.FileSize),
	)
	return created, nil
}

// placement is the outcome of storage-tier selection for one payload.
type placement struct {
	storageType models.StorageType
	content     string
	blobKey     string
	url         string
}

func (s *Service) placePayload(ctx context.Context, teamID, name, fileType string, data []byte) (placement, error) {
	size := int64(len(data))

	switch storagetier.Select(size) {
	case storagetier.TierInline:
		return placement{
			storageType: models.StorageInline,
			content:     storagetier.EncodeInline(data),
		}, nil

	case storagetier.TierBlob:
		key, url, err := s.uploadBlob(ctx, teamID, name, fileType, data)
		if err == nil {
			return placement{storageType: models.StorageBlob, blobKey: key, url: url}, nil
		}
		if !storagetier.FitsInline(size) {
			return placement{}, fmt.Errorf("%w: upload failed and %d bytes exceed the %d byte document limit once encoded",
				faults.ErrValidation, size, storagetier.DocumentCeiling)
		}
		s.logger.Warn("blob upload failed, storing inline",
			zap.String("team_id", teamID),
			zap.Int64("size", size),
			zap.Error(err),
		)
		return placement{
			storageType: models.StorageInline,
			content:     storagetier.EncodeInline(data),
		}, nil

	default: // TierBlobRequired
		key, url, err := s.uploadBlob(ctx, teamID, name, fileType, data)
		if err != nil {
			return placement{}, fmt.Errorf("%w: file of %d bytes exceeds the %d byte inline limit and the upload failed",
				faults.ErrValidation, size, storagetier.DocumentCeiling)
		}
		return placement{storageType: models.StorageBlob, blobKey: key, url: url}, nil
	}
}

// uploadBlob stores a payload in the external blob store under a
// team-scoped key and returns the key and its web-viewable link.
func (s *Service) uploadBlob(ctx context.Context, teamID, name, fileType string, data []byte) (key, url string, err error) {
	ext := filepath.Ext(name)
	key = fmt.Sprintf("teams/%s/%s%s", teamID, strings.ReplaceAll(uuid.New().String(), "-", "")[:12], ext)

	opts := &storage.PutOptions{ContentType: fileType}
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), opts); err != nil {
		return "", "", fmt.Errorf("%w: %v", faults.ErrExternalStore, err)
	}
	return key, s.blobs.URL(key), nil
}

// CreateFolderInput contains the input for creating a folder.
type CreateFolderInput struct {
	TeamID      string
	UserID      string
	Name        string
	ParentID    *string
	Description string
}

// CreateFolder creates a folder under a team, deriving its permission set
// from the team membership and its stored path from the parent chain.
func (s *Service) CreateFolder(ctx context.Context, in CreateFolderInput) (*models.SharedFolder, error) {
	if in.TeamID == "" || in.UserID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: teamId, userId and name are required", faults.ErrValidation)
	}
	if strings.ContainsAny(in.Name, "/") {
		return nil, fmt.Errorf("%w: folder name must not contain '/'", faults.ErrValidation)
	}

	parentID, parentPath, err := s.resolveParent(ctx, in.TeamID, in.ParentID)
	if err != nil {
		return nil, err
	}

	path := pathing.Join(parentPath, in.Name)
	if _, err := s.folders.GetByPath(ctx, in.TeamID, path); err == nil {
		return nil, fmt.Errorf("%w: a folder named %q already exists here", faults.ErrValidation, in.Name)
	} else if !errors.Is(err, faults.ErrNotFound) {
		return nil, err
	}

	created, err := s.folders.Create(ctx, sharedfolder.CreateInput{
		TeamID:      in.TeamID,
		Name:        in.Name,
		ParentID:    parentID,
		FolderPath:  path,
		Description: in.Description,
		Permissions: teamperm.Derive(ctx, s.teams, in.TeamID, in.UserID, s.logger),
		CreatedBy:   in.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("folder created",
		zap.String("folder_id", created.ID),
		zap.String("team_id", created.TeamID),
		zap.String("path", created.FolderPath),
	)
	return created, nil
}

// resolveParent validates a requested parent folder. A missing parent is
// treated as a root-level placement rather than an error; a parent from
// another team is rejected.
func (s *Service) resolveParent(ctx context.Context, teamID string, parentID *string) (*string, string, error) {
	if parentID == nil || *parentID == "" {
		return nil, pathing.Root, nil
	}

	parent, err := s.folders.GetByID(ctx, *parentID)
	if errors.Is(err, faults.ErrNotFound) {
		s.logger.Warn("parent folder missing, placing item at root",
			zap.String("team_id", teamID),
			zap.String("parent_id", *parentID),
		)
		return nil, pathing.Root, nil
	}
	if err != nil {
		return nil, "", err
	}
	if parent.TeamID != teamID {
		return nil, "", fmt.Errorf("%w: parent folder belongs to another team", faults.ErrValidation)
	}
	return &parent.ID, parent.FolderPath, nil
}

// List returns the folders and files directly under a parent (nil = team
// root) that userID may view. Both slices are name-ordered; callers
// present folders first.
func (s *Service) List(ctx context.Context, teamID string, parentID *string, userID string) ([]models.SharedFolder, []models.SharedFile, error) {
	folders, err := s.folders.ListByParent(ctx, teamID, parentID)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.files.ListByParent(ctx, teamID, parentID)
	if err != nil {
		return nil, nil, err
	}

	visFolders := folders[:0]
	for _, f := range folders {
		if f.Permissions.CanView(userID) {
			visFolders = append(visFolders, f)
		}
	}
	visFiles := files[:0]
	for _, f := range files {
		if f.Permissions.CanView(userID) {
			visFiles = append(visFiles, f)
		}
	}
	return visFolders, visFiles, nil
}

// GetFile retrieves a file the user may view.
func (s *Service) GetFile(ctx context.Context, id, userID string) (*models.SharedFile, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Permissions.CanView(userID) {
		return nil, fmt.Errorf("%w: no view permission on file %s", faults.ErrAccessDenied, id)
	}
	return f, nil
}

// GetFolder retrieves a folder the user may view.
func (s *Service) GetFolder(ctx context.Context, id, userID string) (*models.SharedFolder, error) {
	f, err := s.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Permissions.CanView(userID) {
		return nil, fmt.Errorf("%w: no view permission on folder %s", faults.ErrAccessDenied, id)
	}
	return f, nil
}

// UpdateFileContent replaces a file's payload, re-running tier placement
// and bumping the version counter. The previous blob, if any and if
// replaced, is deleted best-effort.
func (s *Service) UpdateFileContent(ctx context.Context, fileID string, data []byte, userID string) (*models.SharedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: content is required", faults.ErrValidation)
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.Permissions.CanEdit(userID) {
		return nil, fmt.Errorf("%w: no edit permission on file %s", faults.ErrAccessDenied, fileID)
	}

	placed, err := s.placePayload(ctx, f.TeamID, f.Name, f.FileType, data)
	if err != nil {
		return nil, err
	}

	if err := s.files.UpdateContent(ctx, fileID, placed.storageType, placed.content, placed.blobKey, placed.url, int64(len(data)), userID); err != nil {
		if placed.blobKey != "" {
			_ = s.blobs.Delete(ctx, placed.blobKey)
		}
		return nil, err
	}

	if f.BlobKey != "" && f.BlobKey != placed.blobKey {
		if err := s.blobs.Delete(ctx, f.BlobKey); err != nil {
			s.logger.Warn("failed to delete replaced blob",
				zap.String("blob_key", f.BlobKey),
				zap.Error(err),
			)
		}
	}

	return s.files.GetByID(ctx, fileID)
}

// RenameFile updates a file's display name. The stored folder path does
// not change: it tracks the containing folder, not the file name.
func (s *Service) RenameFile(ctx context.Context, fileID, name, userID string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", faults.ErrValidation)
	}
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanEdit(userID) {
		return fmt.Errorf("%w: no edit permission on file %s", faults.ErrAccessDenied, fileID)
	}
	return s.files.Rename(ctx, fileID, name, userID)
}
