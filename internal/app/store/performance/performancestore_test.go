package performance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratashare/internal/app/store/performance"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"github.com/dalemusser/stratashare/internal/testutil"
)

func record(id, userID string, recordedAt time.Time) models.PerformanceRecord {
	return models.PerformanceRecord{
		ID:         id,
		UserID:     userID,
		RecordedAt: recordedAt,
		UpdatedAt:  recordedAt,
		Scores:     models.PerformanceScores{Overall: 75},
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := performance.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.Upsert(ctx, record("perf_1", "u1", now)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.GetByID(ctx, "perf_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.UserID != "u1" || got.Scores.Overall != 75 {
		t.Errorf("GetByID() = %+v", got)
	}

	// Upserting again replaces the document rather than duplicating it.
	updated := record("perf_1", "u1", now)
	updated.Scores.Overall = 90
	if err := store.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() replace error = %v", err)
	}
	recs, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Scores.Overall != 90 {
		t.Errorf("ListByUser() after replace = %+v", recs)
	}
}

func TestUpsert_RequiresIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := performance.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Upsert(ctx, models.PerformanceRecord{UserID: "u1"})
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("Upsert() without id error = %v, want validation error", err)
	}
	err = store.Upsert(ctx, models.PerformanceRecord{ID: "perf_1"})
	if !errors.Is(err, faults.ErrValidation) {
		t.Errorf("Upsert() without user id error = %v, want validation error", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := performance.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "perf_missing"); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := performance.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC()
	for i, id := range []string{"perf_old", "perf_mid", "perf_new"} {
		if err := store.Upsert(ctx, record(id, "u1", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}
	if err := store.Upsert(ctx, record("perf_other", "u2", base)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	recs, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	want := []string{"perf_new", "perf_mid", "perf_old"}
	for i, w := range want {
		if recs[i].ID != w {
			t.Errorf("recs[%d].ID = %q, want %q", i, recs[i].ID, w)
		}
	}
}

func TestListUpdatedSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := performance.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Truncate(time.Millisecond)
	old := record("perf_old", "u1", base.Add(-2*time.Hour))
	old.UpdatedAt = base.Add(-2 * time.Hour)
	recent := record("perf_recent", "u1", base)

	if err := store.Upsert(ctx, old); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Upsert(ctx, recent); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.ListUpdatedSince(ctx, "u1", base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListUpdatedSince() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "perf_recent" {
		t.Errorf("ListUpdatedSince() = %+v, want only perf_recent", got)
	}

	// The zero time means "everything".
	got, err = store.ListUpdatedSince(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatalf("ListUpdatedSince(zero) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListUpdatedSince(zero) returned %d records, want 2", len(got))
	}
}
