// Package syncer keeps performance records consistent across the local
// SQLite cache and the remote document store.
//
// Saves are local-first: the cache write must succeed, the remote mirror
// is best-effort. Records that miss the remote are queued and drained by
// the next sync cycle. On pull, the remote copy wins for any record
// present in both stores.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/stratashare/internal/app/store/localcache"
	"github.com/dalemusser/stratashare/internal/app/store/performance"
	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/app/system/ids"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.uber.org/zap"
)

// State describes where a user's records currently live.
type State string

const (
	// StateLocalOnly: records exist only in the cache; no remote mirror
	// is possible (unauthenticated or offline) or none has run yet.
	StateLocalOnly State = "local_only"
	// StateSyncing: a sync cycle is in flight.
	StateSyncing State = "syncing"
	// StateSynced: the last sync cycle completed and the queue drained.
	StateSynced State = "synced"
)

// ErrSyncUnavailable is returned by SyncNow when no remote sync can run.
var ErrSyncUnavailable = errors.New("sync unavailable: not authenticated or offline")

// Syncer coordinates the local cache and the remote performance store.
// Construct one in the composition root and pass it to everything that
// needs it; there is deliberately no package-level instance.
type Syncer struct {
	local  *localcache.Store
	remote *performance.Store
	logger *zap.Logger

	mu     sync.Mutex
	state  State
	authed bool
	online bool
	userID string
}

// New creates a syncer over the given stores. The initial state is
// local-only until SetAuthenticated and SetOnline both enable syncing.
func New(local *localcache.Store, remote *performance.Store, logger *zap.Logger) *Syncer {
	return &Syncer{
		local:  local,
		remote: remote,
		logger: logger,
		state:  StateLocalOnly,
		online: true,
	}
}

// SetAuthenticated records the signed-in user whose records sync
// remotely. An empty userID signs out and drops back to local-only.
func (s *Syncer) SetAuthenticated(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.authed = userID != ""
	if !s.authed {
		s.state = StateLocalOnly
	}
}

// SetOnline flips the connectivity gate. Offline saves still land in the
// local cache and queue for the next online cycle.
func (s *Syncer) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
	if !online {
		s.state = StateLocalOnly
	}
}

// Save persists a record locally and mirrors it to the remote store
// best-effort. The local write is authoritative: if it fails, the save
// fails; if only the remote write fails, the record is queued and Save
// still succeeds.
func (s *Syncer) Save(ctx context.Context, rec models.PerformanceRecord) (*models.PerformanceRecord, error) {
	if rec.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", faults.ErrValidation)
	}
	if rec.ID == "" {
		rec.ID = ids.New(ids.PrefixPerformance)
	}
	now := time.Now().UTC()
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = now
	}
	rec.UpdatedAt = now

	if err := s.local.Put(rec); err != nil {
		return nil, err
	}

	if !s.canSync() {
		if err := s.local.Enqueue(rec.ID); err != nil {
			return nil, err
		}
		return &rec, nil
	}

	if err := s.remote.Upsert(ctx, rec); err != nil {
		s.logger.Warn("remote mirror failed, queueing record",
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
		if err := s.local.Enqueue(rec.ID); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// List returns a user's records from the local cache, newest first. The
// cache is the read path even when authenticated; sync keeps it current.
func (s *Syncer) List(userID string) ([]models.PerformanceRecord, error) {
	return s.local.ListByUser(userID)
}

// Get returns one record from the local cache.
func (s *Syncer) Get(id string) (*models.PerformanceRecord, error) {
	return s.local.Get(id)
}

// SyncNow runs one full sync cycle: push every queued record to the
// remote store, then pull remote records updated since the last cycle
// into the cache. Remote copies overwrite local ones on pull.
func (s *Syncer) SyncNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.authed || !s.online {
		s.mu.Unlock()
		return ErrSyncUnavailable
	}
	if s.state == StateSyncing {
		s.mu.Unlock()
		return nil
	}
	userID := s.userID
	s.state = StateSyncing
	s.mu.Unlock()

	err := s.runCycle(ctx, userID)

	s.mu.Lock()
	if err != nil {
		s.state = StateLocalOnly
	} else {
		s.state = StateSynced
	}
	s.mu.Unlock()
	return err
}

func (s *Syncer) runCycle(ctx context.Context, userID string) error {
	started := time.Now().UTC()

	pending, err := s.local.Pending()
	if err != nil {
		return err
	}
	for _, rec := range pending {
		if err := s.remote.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("push record %s: %w", rec.ID, err)
		}
		if err := s.local.Dequeue(rec.ID); err != nil {
			return err
		}
	}

	since, err := s.local.LastSync()
	if err != nil {
		return err
	}
	remote, err := s.remote.ListUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, rec := range remote {
		if err := s.local.Put(rec); err != nil {
			return fmt.Errorf("pull record %s: %w", rec.ID, err)
		}
	}

	if err := s.local.SetLastSync(started); err != nil {
		return err
	}

	s.logger.Info("sync cycle complete",
		zap.String("user_id", userID),
		zap.Int("pushed", len(pending)),
		zap.Int("pulled", len(remote)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// Status is the sync snapshot exposed over the API.
type Status struct {
	State        State     `json:"state"`
	Authed       bool      `json:"authenticated"`
	Online       bool      `json:"online"`
	PendingCount int       `json:"pendingCount"`
	LastSync     time.Time `json:"lastSync,omitzero"`
}

// Status reports the current sync state and queue depth.
func (s *Syncer) Status() (Status, error) {
	s.mu.Lock()
	st := Status{State: s.state, Authed: s.authed, Online: s.online}
	s.mu.Unlock()

	n, err := s.local.PendingCount()
	if err != nil {
		return st, err
	}
	st.PendingCount = n

	last, err := s.local.LastSync()
	if err != nil {
		return st, err
	}
	st.LastSync = last
	return st, nil
}

// State returns the current sync state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Syncer) canSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed && s.online
}
