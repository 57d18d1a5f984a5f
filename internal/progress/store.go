// Package progress remembers how far each client got into each
// recording, so the player can offer to resume. Saves are suppressed
// at the very start, cleared near the end, and expire after a month.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/achen-archive/memoirsite/internal/db"
)

// Resume policy.
const (
	// MinElapsed is the least listened time worth remembering.
	MinElapsed = 10.0
	// NearEndSecs: within this many seconds of the end, progress is
	// cleared instead of saved.
	NearEndSecs = 30.0
	// NearEndFraction: past this completion ratio, likewise.
	NearEndFraction = 0.95
	// MaxAge is how long saved progress stays resumable.
	MaxAge = 30 * 24 * time.Hour
)

// Entry is one client's saved position in one recording.
type Entry struct {
	ClientID      string    `json:"-"`
	RecordingPath string    `json:"recording"`
	Position      float64   `json:"position"`
	Duration      float64   `json:"duration"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// nearEnd reports whether a position is close enough to the end that
// resuming there would be pointless.
func nearEnd(position, duration float64) bool {
	if duration <= 0 {
		return false
	}
	return position > duration-NearEndSecs || position/duration > NearEndFraction
}

// Store persists playback progress.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Save records a position. Positions under MinElapsed are ignored;
// positions near the end clear any saved progress instead. The
// returned bool reports whether the position was actually written.
func (s *Store) Save(ctx context.Context, clientID, recordingPath string, position, duration float64) (bool, error) {
	if nearEnd(position, duration) {
		if err := s.Delete(ctx, clientID, recordingPath); err != nil {
			return false, err
		}
		return false, nil
	}
	if position < MinElapsed {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playback_progress (client_id, recording_path, position, duration, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_id, recording_path)
		DO UPDATE SET position = excluded.position, duration = excluded.duration, updated_at = excluded.updated_at`,
		clientID, recordingPath, position, duration, s.now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return false, fmt.Errorf("saving progress: %w", err)
	}
	return true, nil
}

// ErrNoProgress is returned when no resumable progress exists.
var ErrNoProgress = errors.New("no saved progress")

// Get returns the saved entry for a recording. Entries older than
// MaxAge are purged on read and reported as ErrNoProgress.
func (s *Store) Get(ctx context.Context, clientID, recordingPath string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT position, duration, updated_at FROM playback_progress
		WHERE client_id = ? AND recording_path = ?`,
		clientID, recordingPath,
	)

	var (
		e  Entry
		ts string
	)
	err := row.Scan(&e.Position, &e.Duration, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("reading progress: %w", err)
	}

	e.ClientID = clientID
	e.RecordingPath = recordingPath
	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.UpdatedAt = t
	}

	if s.now().UTC().Sub(e.UpdatedAt) > MaxAge {
		if err := s.Delete(ctx, clientID, recordingPath); err != nil {
			return nil, err
		}
		return nil, ErrNoProgress
	}
	return &e, nil
}

// List returns all fresh entries for a client, purging expired ones.
func (s *Store) List(ctx context.Context, clientID string) ([]Entry, error) {
	cutoff := s.now().UTC().Add(-MaxAge).Format(time.DateTime)
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM playback_progress WHERE client_id = ? AND updated_at < ?",
		clientID, cutoff,
	); err != nil {
		return nil, fmt.Errorf("purging stale progress: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT recording_path, position, duration, updated_at FROM playback_progress
		WHERE client_id = ? ORDER BY updated_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.RecordingPath, &e.Position, &e.Duration, &ts); err != nil {
			return nil, err
		}
		e.ClientID = clientID
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			e.UpdatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes saved progress for one recording.
func (s *Store) Delete(ctx context.Context, clientID, recordingPath string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM playback_progress WHERE client_id = ? AND recording_path = ?",
		clientID, recordingPath,
	)
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	return nil
}
