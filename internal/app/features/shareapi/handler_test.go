package shareapi_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratashare/internal/app/features/shareapi"
	"github.com/dalemusser/stratashare/internal/app/store/sharedfile"
	"github.com/dalemusser/stratashare/internal/app/store/sharedfolder"
	"github.com/dalemusser/stratashare/internal/app/store/team"
	"github.com/dalemusser/stratashare/internal/app/system/fileshare"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/stratashare/internal/testutil"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key"

type apiEnv struct {
	files   http.Handler
	folders http.Handler
	teamID  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	teams := team.New(db)
	svc := fileshare.New(teams, sharedfolder.New(db), sharedfile.New(db), testutil.NewMemStorage(), logger)
	h := shareapi.NewHandler(svc, logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	tm, err := teams.Create(ctx, team.CreateInput{
		Name:             "Practice Group",
		CreatedBy:        "owner",
		AllowFileSharing: true,
	})
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	if err := teams.SetMemberRole(ctx, tm.ID, "viewer", models.RoleViewer); err != nil {
		t.Fatalf("failed to add viewer: %v", err)
	}

	return &apiEnv{
		files:   shareapi.FileRoutes(h, testAPIKey, logger),
		folders: shareapi.FolderRoutes(h, testAPIKey, logger),
		teamID:  tm.ID,
	}
}

func (e *apiEnv) shareFile(t *testing.T, name, content string) *models.SharedFile {
	t.Helper()
	req := testutil.NewBearerRequest(t, http.MethodPost, "/", testAPIKey, map[string]any{
		"teamId":   e.teamID,
		"userId":   "owner",
		"fileName": name,
		"fileType": "text/plain",
		"content":  base64.StdEncoding.EncodeToString([]byte(content)),
	})
	rec := httptest.NewRecorder()
	e.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("share %s: status = %d, body = %s", name, rec.Code, rec.Body.String())
	}
	var resp struct {
		File models.SharedFile `json:"file"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	return &resp.File
}

func TestRequiresAPIKey(t *testing.T) {
	env := newAPIEnv(t)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/?teamId="+env.teamID+"&userId=owner", nil)
	rec := httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req = testutil.NewBearerRequest(t, http.MethodGet, "/?teamId="+env.teamID+"&userId=owner", "wrong-key", nil)
	rec = httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}
}

func TestShareAndGetFile(t *testing.T) {
	env := newAPIEnv(t)
	f := env.shareFile(t, "notes.txt", "star method answers")

	req := testutil.NewBearerRequest(t, http.MethodGet, "/"+f.ID+"?userId=owner", testAPIKey, nil)
	rec := httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		File   models.SharedFile `json:"file"`
		Access models.Effective  `json:"access"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.File.Name != "notes.txt" {
		t.Errorf("file name = %q", resp.File.Name)
	}
	if !resp.Access.CanManage || !resp.Access.IsOwner {
		t.Errorf("access = %+v, want owner with manage", resp.Access)
	}
}

func TestShare_InvalidBase64(t *testing.T) {
	env := newAPIEnv(t)

	req := testutil.NewBearerRequest(t, http.MethodPost, "/", testAPIKey, map[string]any{
		"teamId":   env.teamID,
		"userId":   "owner",
		"fileName": "x.txt",
		"content":  "not base64!!!",
	})
	rec := httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestList_FoldersFirst(t *testing.T) {
	env := newAPIEnv(t)
	env.shareFile(t, "a-file.txt", "x")

	req := testutil.NewBearerRequest(t, http.MethodPost, "/", testAPIKey, map[string]any{
		"teamId": env.teamID,
		"userId": "owner",
		"name":   "Z Folder",
	})
	rec := httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create folder: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = testutil.NewBearerRequest(t, http.MethodGet, "/?teamId="+env.teamID+"&userId=owner", testAPIKey, nil)
	rec = httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Files []struct {
			Type string `json:"type"`
		} `json:"files"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Files) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Files))
	}
	// Folders sort before files regardless of name.
	if resp.Files[0].Type != "folder" || resp.Files[1].Type != "file" {
		t.Errorf("entry order = [%s, %s], want [folder, file]", resp.Files[0].Type, resp.Files[1].Type)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	env := newAPIEnv(t)
	f := env.shareFile(t, "notes.txt", "x")

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
		want int
	}{
		{
			"missing file is 404",
			func(t *testing.T) *http.Request {
				return testutil.NewBearerRequest(t, http.MethodGet, "/file_missing?userId=owner", testAPIKey, nil)
			},
			http.StatusNotFound,
		},
		{
			"no view permission is 403",
			func(t *testing.T) *http.Request {
				return testutil.NewBearerRequest(t, http.MethodGet, "/"+f.ID+"?userId=stranger", testAPIKey, nil)
			},
			http.StatusForbidden,
		},
		{
			"missing userId is 400",
			func(t *testing.T) *http.Request {
				return testutil.NewBearerRequest(t, http.MethodGet, "/"+f.ID, testAPIKey, nil)
			},
			http.StatusBadRequest,
		},
		{
			"viewer cannot delete",
			func(t *testing.T) *http.Request {
				return testutil.NewBearerRequest(t, http.MethodDelete, "/"+f.ID+"?userId=viewer", testAPIKey, nil)
			},
			http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.files.ServeHTTP(rec, tt.req(t))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUpdateFile_Rename(t *testing.T) {
	env := newAPIEnv(t)
	f := env.shareFile(t, "old.txt", "x")

	req := testutil.NewBearerRequest(t, http.MethodPut, "/"+f.ID, testAPIKey, map[string]any{
		"userId": "owner",
		"name":   "new.txt",
	})
	rec := httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		File models.SharedFile `json:"file"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.File.Name != "new.txt" {
		t.Errorf("name = %q, want new.txt", resp.File.Name)
	}
}

func TestFilePermissionsEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	f := env.shareFile(t, "notes.txt", "x")

	req := testutil.NewBearerRequest(t, http.MethodPut, "/"+f.ID+"/permissions", testAPIKey, map[string]any{
		"userId":       "owner",
		"targetUserId": "guest",
		"tier":         "edit",
	})
	rec := httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The guest can now update the file.
	req = testutil.NewBearerRequest(t, http.MethodPut, "/"+f.ID, testAPIKey, map[string]any{
		"userId":  "guest",
		"content": base64.StdEncoding.EncodeToString([]byte("edited")),
	})
	rec = httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("guest edit: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Removing the last admin is a 400.
	req = testutil.NewBearerRequest(t, http.MethodPut, "/"+f.ID+"/permissions", testAPIKey, map[string]any{
		"userId":       "owner",
		"targetUserId": "owner",
		"tier":         "",
	})
	rec = httptest.NewRecorder()
	env.files.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("remove last admin: status = %d, want 400", rec.Code)
	}
}

func TestFolderLifecycle(t *testing.T) {
	env := newAPIEnv(t)

	// Create a parent and a child folder.
	req := testutil.NewBearerRequest(t, http.MethodPost, "/", testAPIKey, map[string]any{
		"teamId": env.teamID, "userId": "owner", "name": "Projects",
	})
	rec := httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create parent: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var parentResp struct {
		Folder models.SharedFolder `json:"folder"`
	}
	testutil.DecodeJSON(t, rec, &parentResp)

	req = testutil.NewBearerRequest(t, http.MethodPost, "/", testAPIKey, map[string]any{
		"teamId": env.teamID, "userId": "owner", "name": "Specs", "parentId": parentResp.Folder.ID,
	})
	rec = httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var childResp struct {
		Folder models.SharedFolder `json:"folder"`
	}
	testutil.DecodeJSON(t, rec, &childResp)
	if childResp.Folder.FolderPath != "/Projects/Specs" {
		t.Errorf("child path = %q, want /Projects/Specs", childResp.Folder.FolderPath)
	}

	// Breadcrumbs: root, parent, child.
	req = testutil.NewBearerRequest(t, http.MethodGet, "/"+childResp.Folder.ID+"/breadcrumbs?userId=owner", testAPIKey, nil)
	rec = httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("breadcrumbs: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var crumbResp struct {
		Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
	}
	testutil.DecodeJSON(t, rec, &crumbResp)
	if len(crumbResp.Breadcrumbs) != 3 {
		t.Fatalf("got %d crumbs, want 3: %+v", len(crumbResp.Breadcrumbs), crumbResp.Breadcrumbs)
	}
	if crumbResp.Breadcrumbs[0].Name != "Root" || crumbResp.Breadcrumbs[2].Name != "Specs" {
		t.Errorf("crumbs = %+v", crumbResp.Breadcrumbs)
	}

	// A move into the folder's own subtree is rejected.
	req = testutil.NewBearerRequest(t, http.MethodPost, "/"+parentResp.Folder.ID+"/move", testAPIKey, map[string]any{
		"userId": "owner", "newParentId": childResp.Folder.ID,
	})
	rec = httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cycle move: status = %d, want 400", rec.Code)
	}

	// Delete the parent; the child goes with it.
	req = testutil.NewBearerRequest(t, http.MethodDelete, "/"+parentResp.Folder.ID+"?userId=owner", testAPIKey, nil)
	rec = httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = testutil.NewBearerRequest(t, http.MethodGet, "/"+childResp.Folder.ID+"?userId=owner", testAPIKey, nil)
	rec = httptest.NewRecorder()
	env.folders.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted child: status = %d, want 404", rec.Code)
	}
}
