package fileshare

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/stratashare/internal/app/store/sharedfolder"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/pathing"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.uber.org/zap"
)

// Item kinds accepted by Move, SetPermission, and Delete.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// MoveFile places a file under a new parent folder (nil = team root) and
// rewrites its stored path. Moving to the current parent is a no-op that
// still succeeds.
func (s *Service) MoveFile(ctx context.Context, fileID string, newParentID *string, userID string) error {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanEdit(userID) {
		return fmt.Errorf("%w: no edit permission on file %s", faults.ErrAccessDenied, fileID)
	}

	parentID, parentPath, err := s.resolveParent(ctx, f.TeamID, newParentID)
	if err != nil {
		return err
	}

	if err := s.files.SetParentAndPath(ctx, fileID, parentID, parentPath, userID); err != nil {
		return err
	}

	s.logger.Debug("file moved",
		zap.String("file_id", fileID),
		zap.String("team_id", f.TeamID),
		zap.String("path", parentPath),
	)
	return nil
}

// MoveFolder places a folder under a new parent (nil = team root),
// rewrites its stored path, and cascades the rewrite to every descendant
// folder and file so the denormalized paths stay consistent with the
// parent chain. A move into the folder's own subtree is rejected.
func (s *Service) MoveFolder(ctx context.Context, folderID string, newParentID *string, userID string) error {
	f, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanEdit(userID) {
		return fmt.Errorf("%w: no edit permission on folder %s", faults.ErrAccessDenied, folderID)
	}

	parentID, parentPath, err := s.resolveParent(ctx, f.TeamID, newParentID)
	if err != nil {
		return err
	}
	if pathing.IsWithin(parentPath, f.FolderPath) {
		return fmt.Errorf("%w: cannot move a folder into its own subtree", faults.ErrValidation)
	}

	oldPath := f.FolderPath
	newPath := pathing.Join(parentPath, f.Name)
	if newPath == oldPath && samePointer(parentID, f.ParentID) {
		return nil
	}

	if err := s.folders.SetParentAndPath(ctx, folderID, parentID, newPath, userID); err != nil {
		return err
	}
	return s.cascadePaths(ctx, f.TeamID, folderID, oldPath, newPath)
}

// RenameFolder updates a folder's display name, recomputes its stored
// path, and cascades the rewrite through the subtree.
func (s *Service) RenameFolder(ctx context.Context, folderID, name, userID string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", faults.ErrValidation)
	}
	if err := validateSegment(name); err != nil {
		return err
	}

	f, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanEdit(userID) {
		return fmt.Errorf("%w: no edit permission on folder %s", faults.ErrAccessDenied, folderID)
	}
	if f.Name == name {
		return nil
	}

	parentPath := pathing.Root
	if f.ParentID != nil {
		if parent, err := s.folders.GetByID(ctx, *f.ParentID); err == nil {
			parentPath = parent.FolderPath
		}
	}

	oldPath := f.FolderPath
	newPath := pathing.Join(parentPath, name)
	if err := s.folders.Update(ctx, folderID, folderRename(name, newPath, userID)); err != nil {
		return err
	}
	return s.cascadePaths(ctx, f.TeamID, folderID, oldPath, newPath)
}

// cascadePaths rewrites the stored paths of every descendant of a moved
// or renamed folder. Descendant parent IDs are untouched: only the
// denormalized paths change.
func (s *Service) cascadePaths(ctx context.Context, teamID, folderID, oldPath, newPath string) error {
	folders, err := s.folders.ListByPathPrefix(ctx, teamID, oldPath)
	if err != nil {
		return err
	}
	for _, d := range folders {
		if d.ID == folderID {
			continue
		}
		if err := s.folders.SetPath(ctx, d.ID, pathing.Rebase(d.FolderPath, oldPath, newPath)); err != nil {
			return err
		}
	}

	files, err := s.files.ListByPathPrefix(ctx, teamID, oldPath)
	if err != nil {
		return err
	}
	for _, d := range files {
		if err := s.files.SetPath(ctx, d.ID, pathing.Rebase(d.FolderPath, oldPath, newPath)); err != nil {
			return err
		}
	}

	s.logger.Debug("cascaded path rewrite",
		zap.String("team_id", teamID),
		zap.String("old_path", oldPath),
		zap.String("new_path", newPath),
		zap.Int("folders", len(folders)-1),
		zap.Int("files", len(files)),
	)
	return nil
}

// SetPermission grants a user exactly one access tier on an item, or
// revokes access with models.TierNone. Only a manager may change
// permissions, and the last admin cannot be removed.
func (s *Service) SetPermission(ctx context.Context, kind, itemID, targetUserID string, tier models.Tier, actorID string) error {
	if tier != models.TierNone && !models.IsValidTier(tier) {
		return fmt.Errorf("%w: unknown permission tier %q", faults.ErrValidation, tier)
	}
	if targetUserID == "" {
		return fmt.Errorf("%w: target user id is required", faults.ErrValidation)
	}

	var perms models.PermissionSet
	switch kind {
	case KindFile:
		f, err := s.files.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !f.Permissions.CanManage(actorID) {
			return fmt.Errorf("%w: no manage permission on file %s", faults.ErrAccessDenied, itemID)
		}
		perms = f.Permissions
	case KindFolder:
		f, err := s.folders.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !f.Permissions.CanManage(actorID) {
			return fmt.Errorf("%w: no manage permission on folder %s", faults.ErrAccessDenied, itemID)
		}
		perms = f.Permissions
	default:
		return fmt.Errorf("%w: unknown item kind %q", faults.ErrValidation, kind)
	}

	perms.SetTier(targetUserID, tier)
	if perms.AdminCount() == 0 {
		return fmt.Errorf("%w: cannot remove the last admin", faults.ErrValidation)
	}

	if kind == KindFile {
		return s.files.SetPermissions(ctx, itemID, perms, actorID)
	}
	return s.folders.SetPermissions(ctx, itemID, perms, actorID)
}

// DeleteFile removes a file document and, best-effort, its blob store
// object.
func (s *Service) DeleteFile(ctx context.Context, fileID, userID string) error {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanManage(userID) {
		return fmt.Errorf("%w: no manage permission on file %s", faults.ErrAccessDenied, fileID)
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		return err
	}
	s.deleteBlob(ctx, f)
	return nil
}

// DeleteFolder removes a folder and everything beneath it: descendant
// folders, their files, and the files' blob store objects. Blob cleanup
// is best-effort; document deletes are not.
func (s *Service) DeleteFolder(ctx context.Context, folderID, userID string) error {
	f, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if !f.Permissions.CanManage(userID) {
		return fmt.Errorf("%w: no manage permission on folder %s", faults.ErrAccessDenied, folderID)
	}

	files, err := s.files.ListByPathPrefix(ctx, f.TeamID, f.FolderPath)
	if err != nil {
		return err
	}
	for _, doc := range files {
		if err := s.files.Delete(ctx, doc.ID); err != nil && !errors.Is(err, faults.ErrNotFound) {
			return err
		}
		s.deleteBlob(ctx, &doc)
	}

	folders, err := s.folders.ListByPathPrefix(ctx, f.TeamID, f.FolderPath)
	if err != nil {
		return err
	}
	idList := make([]string, 0, len(folders))
	for _, doc := range folders {
		idList = append(idList, doc.ID)
	}
	deleted, err := s.folders.DeleteMany(ctx, idList)
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		zap.String("folder_id", folderID),
		zap.String("team_id", f.TeamID),
		zap.String("path", f.FolderPath),
		zap.Int64("folders_removed", deleted),
		zap.Int("files_removed", len(files)),
	)
	return nil
}

func (s *Service) deleteBlob(ctx context.Context, f *models.SharedFile) {
	if f.BlobKey == "" {
		return
	}
	if err := s.blobs.Delete(ctx, f.BlobKey); err != nil {
		s.logger.Warn("failed to delete blob object",
			zap.String("file_id", f.ID),
			zap.String("blob_key", f.BlobKey),
			zap.Error(err),
		)
	}
}

// Breadcrumbs resolves the ancestor chain of a folder for UI navigation,
// starting with the synthetic team root. Each ancestor is a point query
// on the unique (team, path) index. An unresolvable intermediate is
// skipped rather than failing the whole chain.
func (s *Service) Breadcrumbs(ctx context.Context, folderID, userID string) ([]models.Breadcrumb, error) {
	f, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !f.Permissions.CanView(userID) {
		return nil, fmt.Errorf("%w: no view permission on folder %s", faults.ErrAccessDenied, folderID)
	}

	crumbs := []models.Breadcrumb{{ID: "", Name: "Root", Path: pathing.Root}}
	for _, prefix := range pathing.Prefixes(f.FolderPath) {
		ancestor, err := s.folders.GetByPath(ctx, f.TeamID, prefix)
		if errors.Is(err, faults.ErrNotFound) {
			s.logger.Warn("breadcrumb ancestor missing",
				zap.String("folder_id", folderID),
				zap.String("path", prefix),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		crumbs = append(crumbs, models.Breadcrumb{
			ID:   ancestor.ID,
			Name: ancestor.Name,
			Path: ancestor.FolderPath,
		})
	}
	return crumbs, nil
}

func folderRename(name, path, modifiedBy string) sharedfolder.UpdateInput {
	return sharedfolder.UpdateInput{
		Name:       &name,
		FolderPath: &path,
		ModifiedBy: modifiedBy,
	}
}

func validateSegment(name string) error {
	for _, r := range name {
		if r == '/' {
			return fmt.Errorf("%w: name must not contain '/'", faults.ErrValidation)
		}
	}
	return nil
}

func samePointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
