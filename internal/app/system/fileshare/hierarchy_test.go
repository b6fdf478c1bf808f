package fileshare

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/stratashare/internal/testutil"
)

// buildTree creates /Projects, /Projects/Mock Interviews, and a file in
// the nested folder, returning all three.
func buildTree(t *testing.T, ctx context.Context, env *testEnv, teamID string) (parent, child *models.SharedFolder, file *models.SharedFile) {
	t.Helper()

	parent, err := env.svc.CreateFolder(ctx, CreateFolderInput{
		TeamID: teamID, UserID: "owner", Name: "Projects",
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err = env.svc.CreateFolder(ctx, CreateFolderInput{
		TeamID: teamID, UserID: "owner", Name: "Mock Interviews", ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	file, err = env.svc.ShareFile(ctx, ShareFileInput{
		TeamID: teamID, UserID: "owner", Name: "feedback.txt",
		ParentID: &child.ID, Data: []byte("went well"),
	})
	if err != nil {
		t.Fatalf("share file: %v", err)
	}
	return parent, child, file
}

func TestMoveFolder_CascadesPaths(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, file := buildTree(t, ctx, env, tm.ID)

	dest, err := env.svc.CreateFolder(ctx, CreateFolderInput{
		TeamID: tm.ID, UserID: "owner", Name: "Archive",
	})
	if err != nil {
		t.Fatalf("create dest: %v", err)
	}

	if err := env.svc.MoveFolder(ctx, parent.ID, &dest.ID, "owner"); err != nil {
		t.Fatalf("MoveFolder() error = %v", err)
	}

	moved, err := env.folders.GetByID(ctx, parent.ID)
	if err != nil {
		t.Fatalf("get moved folder: %v", err)
	}
	if moved.FolderPath != "/Archive/Projects" {
		t.Errorf("moved folder path = %q, want /Archive/Projects", moved.FolderPath)
	}

	gotChild, err := env.folders.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if gotChild.FolderPath != "/Archive/Projects/Mock Interviews" {
		t.Errorf("child path = %q, want /Archive/Projects/Mock Interviews", gotChild.FolderPath)
	}
	// The child's parent link is unchanged; only the path cascades.
	if gotChild.ParentID == nil || *gotChild.ParentID != parent.ID {
		t.Error("child parent id should be untouched by the cascade")
	}

	gotFile, err := env.files.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if gotFile.FolderPath != "/Archive/Projects/Mock Interviews" {
		t.Errorf("file path = %q, want /Archive/Projects/Mock Interviews", gotFile.FolderPath)
	}
}

func TestMoveFolder_RejectsOwnSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, _ := buildTree(t, ctx, env, tm.ID)

	err := env.svc.MoveFolder(ctx, parent.ID, &child.ID, "owner")
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("MoveFolder() into own subtree error = %v, want validation error", err)
	}

	// Moving into itself is the degenerate case of the same check.
	err = env.svc.MoveFolder(ctx, parent.ID, &parent.ID, "owner")
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("MoveFolder() into itself error = %v, want validation error", err)
	}
}

func TestMoveFolder_ToRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	_, child, file := buildTree(t, ctx, env, tm.ID)

	if err := env.svc.MoveFolder(ctx, child.ID, nil, "owner"); err != nil {
		t.Fatalf("MoveFolder() error = %v", err)
	}

	moved, err := env.folders.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get moved folder: %v", err)
	}
	if moved.FolderPath != "/Mock Interviews" {
		t.Errorf("path = %q, want /Mock Interviews", moved.FolderPath)
	}
	if moved.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", *moved.ParentID)
	}

	gotFile, err := env.files.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if gotFile.FolderPath != "/Mock Interviews" {
		t.Errorf("file path = %q, want /Mock Interviews", gotFile.FolderPath)
	}
}

func TestRenameFolder_CascadesPaths(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, file := buildTree(t, ctx, env, tm.ID)

	if err := env.svc.RenameFolder(ctx, parent.ID, "Active", "owner"); err != nil {
		t.Fatalf("RenameFolder() error = %v", err)
	}

	renamed, err := env.folders.GetByID(ctx, parent.ID)
	if err != nil {
		t.Fatalf("get renamed folder: %v", err)
	}
	if renamed.Name != "Active" || renamed.FolderPath != "/Active" {
		t.Errorf("renamed = %q at %q, want Active at /Active", renamed.Name, renamed.FolderPath)
	}

	gotChild, err := env.folders.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if gotChild.FolderPath != "/Active/Mock Interviews" {
		t.Errorf("child path = %q, want /Active/Mock Interviews", gotChild.FolderPath)
	}

	gotFile, err := env.files.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if gotFile.FolderPath != "/Active/Mock Interviews" {
		t.Errorf("file path = %q, want /Active/Mock Interviews", gotFile.FolderPath)
	}
}

func TestMoveFile(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, _, file := buildTree(t, ctx, env, tm.ID)

	if err := env.svc.MoveFile(ctx, file.ID, &parent.ID, "owner"); err != nil {
		t.Fatalf("MoveFile() error = %v", err)
	}

	moved, err := env.files.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("get moved file: %v", err)
	}
	if moved.FolderPath != "/Projects" {
		t.Errorf("path = %q, want /Projects", moved.FolderPath)
	}
	if moved.ParentID == nil || *moved.ParentID != parent.ID {
		t.Error("parent id not updated")
	}
}

func TestMoveFolder_ToCurrentParentIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, _ := buildTree(t, ctx, env, tm.ID)

	if err := env.svc.MoveFolder(ctx, child.ID, &parent.ID, "owner"); err != nil {
		t.Fatalf("MoveFolder() to current parent error = %v", err)
	}

	got, err := env.folders.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get folder: %v", err)
	}
	if got.FolderPath != child.FolderPath {
		t.Errorf("path changed on no-op move: %q -> %q", child.FolderPath, got.FolderPath)
	}
}

func TestMove_RequiresEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, map[string]string{"watcher": models.RoleViewer})
	parent, child, file := buildTree(t, ctx, env, tm.ID)

	if err := env.svc.MoveFile(ctx, file.ID, &parent.ID, "watcher"); !errors.Is(err, faults.ErrAccessDenied) {
		t.Errorf("MoveFile() by viewer error = %v, want access denied", err)
	}
	if err := env.svc.MoveFolder(ctx, child.ID, nil, "watcher"); !errors.Is(err, faults.ErrAccessDenied) {
		t.Errorf("MoveFolder() by viewer error = %v, want access denied", err)
	}
}

func TestSetPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	f, err := env.svc.ShareFile(ctx, ShareFileInput{
		TeamID: tm.ID, UserID: "owner", Name: "notes.txt", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("ShareFile() error = %v", err)
	}

	if err := env.svc.SetPermission(ctx, KindFile, f.ID, "guest", models.TierEdit, "owner"); err != nil {
		t.Fatalf("SetPermission() error = %v", err)
	}
	got, err := env.files.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if !got.Permissions.CanEdit("guest") {
		t.Error("guest should have edit after grant")
	}

	// A non-admin cannot change permissions.
	err = env.svc.SetPermission(ctx, KindFile, f.ID, "other", models.TierView, "guest")
	if !errors.Is(err, faults.ErrAccessDenied) {
		t.Errorf("SetPermission() by editor error = %v, want access denied", err)
	}

	// Removing the last admin is rejected.
	err = env.svc.SetPermission(ctx, KindFile, f.ID, "owner", models.TierNone, "owner")
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("SetPermission() removing last admin error = %v, want validation error", err)
	}

	// Unknown tiers are rejected before any lookup.
	err = env.svc.SetPermission(ctx, KindFile, f.ID, "guest", models.Tier("superuser"), "owner")
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("SetPermission() unknown tier error = %v, want validation error", err)
	}
}

func TestDeleteFolder_CascadesAndCleansBlobs(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, _ := buildTree(t, ctx, env, tm.ID)

	blobFile, err := env.svc.ShareFile(ctx, ShareFileInput{
		TeamID: tm.ID, UserID: "owner", Name: "big.webm",
		ParentID: &child.ID, Data: make([]byte, 800*1024),
	})
	if err != nil {
		t.Fatalf("share blob file: %v", err)
	}

	if err := env.svc.DeleteFolder(ctx, parent.ID, "owner"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	if _, err := env.folders.GetByID(ctx, parent.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("parent folder error = %v, want not found", err)
	}
	if _, err := env.folders.GetByID(ctx, child.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("child folder error = %v, want not found", err)
	}
	if _, err := env.files.GetByID(ctx, blobFile.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("nested file error = %v, want not found", err)
	}
	if env.blobs.Has(blobFile.BlobKey) {
		t.Error("blob object should be deleted with the folder")
	}
}

func TestDeleteFile_RequiresManage(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, map[string]string{"teammate": models.RoleMember})
	f, err := env.svc.ShareFile(ctx, ShareFileInput{
		TeamID: tm.ID, UserID: "owner", Name: "notes.txt", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("ShareFile() error = %v", err)
	}

	// Member-role users land in the edit tier, which cannot delete.
	err = env.svc.DeleteFile(ctx, f.ID, "teammate")
	if !errors.Is(err, faults.ErrAccessDenied) {
		t.Errorf("DeleteFile() by editor error = %v, want access denied", err)
	}

	if err := env.svc.DeleteFile(ctx, f.ID, "owner"); err != nil {
		t.Errorf("DeleteFile() by owner error = %v", err)
	}
}

func TestBreadcrumbs(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, _ := buildTree(t, ctx, env, tm.ID)

	crumbs, err := env.svc.Breadcrumbs(ctx, child.ID, "owner")
	if err != nil {
		t.Fatalf("Breadcrumbs() error = %v", err)
	}

	want := []struct{ id, name, path string }{
		{"", "Root", "/"},
		{parent.ID, "Projects", "/Projects"},
		{child.ID, "Mock Interviews", "/Projects/Mock Interviews"},
	}
	if len(crumbs) != len(want) {
		t.Fatalf("got %d crumbs, want %d: %+v", len(crumbs), len(want), crumbs)
	}
	for i, w := range want {
		if crumbs[i].ID != w.id || crumbs[i].Name != w.name || crumbs[i].Path != w.path {
			t.Errorf("crumb[%d] = %+v, want %+v", i, crumbs[i], w)
		}
	}
}

func TestBreadcrumbs_SkipsMissingAncestor(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tm := env.makeTeam(t, ctx, nil)
	parent, child, _ := buildTree(t, ctx, env, tm.ID)

	// Delete the parent document directly, leaving the child's stored
	// path dangling.
	if err := env.folders.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	crumbs, err := env.svc.Breadcrumbs(ctx, child.ID, "owner")
	if err != nil {
		t.Fatalf("Breadcrumbs() error = %v", err)
	}
	if len(crumbs) != 2 {
		t.Fatalf("got %d crumbs, want 2 (root + self): %+v", len(crumbs), crumbs)
	}
	if crumbs[1].ID != child.ID {
		t.Errorf("crumb[1].ID = %q, want the folder itself", crumbs[1].ID)
	}
}
