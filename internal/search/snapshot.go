package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"modoojob/search-service/internal/snapshot"
)

// Snapshots preserve the last non-empty search across navigation. Saves are
// best-effort and never surfaced: a failed write costs only the restore
// convenience, the in-memory results stay correct. Writes happen at natural
// checkpoints (batch finished, complete), not on every field mutation.

// summaryTruncateLen is the retry threshold: when a snapshot write fails, the
// AI summary is cut to this many runes and the write retried once.
const summaryTruncateLen = 1000

// DefaultSnapshotTTL is how long a stored snapshot lives server-side.
const DefaultSnapshotTTL = 30 * time.Minute

// Snapshotter binds one search surface to one session-cache slot.
type Snapshotter struct {
	store snapshot.Store
	key   string

	// TTL is the store-side expiry for saved snapshots.
	TTL time.Duration
	// MaxAge rejects snapshots older than this on restore; 0 disables the
	// check (the job surface restores regardless of age).
	MaxAge time.Duration
}

// NewSnapshotter scopes a store to the given slot key.
func NewSnapshotter(store snapshot.Store, key string) *Snapshotter {
	return &Snapshotter{store: store, key: key, TTL: DefaultSnapshotTTL}
}

// Clear erases the slot. Failures are logged, not surfaced — the next save
// overwrites anyway.
func (s *Snapshotter) Clear(ctx context.Context) {
	if err := s.store.Delete(ctx, s.key); err != nil {
		slog.Warn("snapshot: clear failed", "key", s.key, "err", err)
	}
}

// save writes the snapshot, retrying once with a truncated summary on
// failure, then dropping silently.
func (s *Snapshotter) save(ctx context.Context, full, truncated any) {
	if s.trySet(ctx, full) == nil {
		return
	}
	if err := s.trySet(ctx, truncated); err != nil {
		slog.Warn("snapshot: save failed after truncation", "key", s.key, "err", err)
	}
}

func (s *Snapshotter) trySet(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.key, data, s.TTL)
}

// load reads and age-checks the slot. Returns snapshot.ErrNotFound for both
// an empty slot and a stale one.
func (s *Snapshotter) load(ctx context.Context, v interface{ savedAt() time.Time }) error {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if s.MaxAge > 0 && time.Since(v.savedAt()) > s.MaxAge {
		return snapshot.ErrNotFound
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ─── Job surface ─────────────────────────────────────────────────────────────

// JobSnapshot is the serialized form of a job search, plus the save time in
// Unix milliseconds.
type JobSnapshot struct {
	JobState
	Timestamp int64 `json:"timestamp"`
}

func (s *JobSnapshot) savedAt() time.Time { return time.UnixMilli(s.Timestamp) }

// saveSnapshot persists the current state when it has at least one result.
func (c *JobController) saveSnapshot(ctx context.Context) {
	if c.snap == nil {
		return
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state.Query == "" || !state.HasResults() {
		return
	}

	snap := JobSnapshot{JobState: state, Timestamp: time.Now().UnixMilli()}
	short := snap
	short.Summary = truncateRunes(short.Summary, summaryTruncateLen)
	c.snap.save(ctx, snap, short)
}

// Restore hydrates state from the session cache. Returns false when no usable
// snapshot exists. A restore never interrupts an in-flight search.
func (c *JobController) Restore(ctx context.Context) (bool, error) {
	if c.snap == nil {
		return false, nil
	}

	var snap JobSnapshot
	if err := c.snap.load(ctx, &snap); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if snap.Page < 1 {
		snap.Page = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		return false, nil
	}
	c.state = snap.JobState
	return true, nil
}

// ─── Talent surface ──────────────────────────────────────────────────────────

// TalentSnapshot is the serialized form of a talent search.
type TalentSnapshot struct {
	TalentState
	Timestamp int64 `json:"timestamp"`
}

func (s *TalentSnapshot) savedAt() time.Time { return time.UnixMilli(s.Timestamp) }

func (c *TalentController) saveSnapshot(ctx context.Context) {
	if c.snap == nil {
		return
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state.Query == "" || !state.HasResults() {
		return
	}

	snap := TalentSnapshot{TalentState: state, Timestamp: time.Now().UnixMilli()}
	short := snap
	short.Summary = truncateRunes(short.Summary, summaryTruncateLen)
	c.snap.save(ctx, snap, short)
}

// Restore hydrates state from the session cache; snapshots older than the
// snapshotter's MaxAge are ignored.
func (c *TalentController) Restore(ctx context.Context) (bool, error) {
	if c.snap == nil {
		return false, nil
	}

	var snap TalentSnapshot
	if err := c.snap.load(ctx, &snap); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if snap.Page < 1 {
		snap.Page = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		return false, nil
	}
	c.state = snap.TalentState
	return true, nil
}
