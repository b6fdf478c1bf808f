package sharedfile_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratashare/internal/app/store/sharedfile"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/stratashare/internal/testutil"
)

func create(t *testing.T, store *sharedfile.Store, teamID, name, path string, parentID *string) *models.SharedFile {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f, err := store.Create(ctx, sharedfile.CreateInput{
		TeamID:      teamID,
		Name:        name,
		ParentID:    parentID,
		FolderPath:  path,
		Permissions: models.PermissionSet{Admin: []string{"u1"}},
		FileType:    "text/plain",
		FileSize:    4,
		StorageType: models.StorageInline,
		Content:     "dGVzdA==",
		CreatedBy:   "u1",
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}
	return f
}

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := create(t, store, "t1", "notes.txt", "/", nil)
	if f.Version != 1 {
		t.Errorf("Version = %d, want 1", f.Version)
	}

	got, err := store.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "notes.txt" || got.StorageType != models.StorageInline {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := store.GetByID(ctx, "file_missing"); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("GetByID() missing error = %v, want not found", err)
	}
}

func TestListByParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	create(t, store, "t1", "Zeta.txt", "/", nil)
	create(t, store, "t1", "alpha.txt", "/", nil)
	parent := "fold_1"
	create(t, store, "t1", "nested.txt", "/sub", &parent)

	files, err := store.ListByParent(ctx, "t1", nil)
	if err != nil {
		t.Fatalf("ListByParent() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d root files, want 2", len(files))
	}
	if files[0].Name != "alpha.txt" || files[1].Name != "Zeta.txt" {
		t.Errorf("sort order = [%s, %s], want case-insensitive name order", files[0].Name, files[1].Name)
	}

	nested, err := store.ListByParent(ctx, "t1", &parent)
	if err != nil {
		t.Fatalf("ListByParent(sub) error = %v", err)
	}
	if len(nested) != 1 || nested[0].Name != "nested.txt" {
		t.Errorf("ListByParent(sub) = %+v", nested)
	}
}

func TestListByPathPrefix_ExcludesSiblings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	create(t, store, "t1", "a.txt", "/a", nil)
	create(t, store, "t1", "b.txt", "/a/b", nil)
	create(t, store, "t1", "c.txt", "/ab", nil)

	got, err := store.ListByPathPrefix(ctx, "t1", "/a")
	if err != nil {
		t.Fatalf("ListByPathPrefix() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d files, want 2: %+v", len(got), got)
	}
}

func TestUpdateContent_BumpsVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := create(t, store, "t1", "notes.txt", "/", nil)

	err := store.UpdateContent(ctx, f.ID, models.StorageBlob, "", "teams/t1/abc.txt", "https://blobs/abc", 2048, "u2")
	if err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	got, err := store.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if got.StorageType != models.StorageBlob || got.BlobKey != "teams/t1/abc.txt" {
		t.Errorf("UpdateContent() result = %+v", got)
	}
	if got.Content != "" {
		t.Error("Content should be cleared when moving to blob storage")
	}
	if got.FileSize != 2048 {
		t.Errorf("FileSize = %d, want 2048", got.FileSize)
	}
	if got.LastModifiedBy != "u2" {
		t.Errorf("LastModifiedBy = %q, want u2", got.LastModifiedBy)
	}
}

func TestRename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := create(t, store, "t1", "old.txt", "/", nil)

	if err := store.Rename(ctx, f.ID, "new.txt", "u1"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	got, err := store.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "new.txt" {
		t.Errorf("Name = %q, want new.txt", got.Name)
	}
	// Renaming a file never touches its path.
	if got.FolderPath != "/" {
		t.Errorf("FolderPath = %q, want /", got.FolderPath)
	}

	if err := store.Rename(ctx, "file_missing", "x", "u1"); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("Rename() missing error = %v, want not found", err)
	}
}

func TestSetParentAndPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := create(t, store, "t1", "notes.txt", "/", nil)
	parent := "fold_dest"

	if err := store.SetParentAndPath(ctx, f.ID, &parent, "/dest", "u1"); err != nil {
		t.Fatalf("SetParentAndPath() error = %v", err)
	}
	got, err := store.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FolderPath != "/dest" || got.ParentID == nil || *got.ParentID != parent {
		t.Errorf("SetParentAndPath() result = %+v", got)
	}
}

func TestDeleteByParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sharedfile.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	parent := "fold_1"
	create(t, store, "t1", "a.txt", "/sub", &parent)
	create(t, store, "t1", "b.txt", "/sub", &parent)
	create(t, store, "t1", "root.txt", "/", nil)

	deleted, err := store.DeleteByParent(ctx, "t1", parent)
	if err != nil {
		t.Fatalf("DeleteByParent() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted %d files, want 2", len(deleted))
	}

	remaining, err := store.ListByParent(ctx, "t1", nil)
	if err != nil {
		t.Fatalf("ListByParent() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("got %d remaining root files, want 1", len(remaining))
	}
}
