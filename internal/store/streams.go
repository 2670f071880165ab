package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lessoncast/internal/models"
)

// SetStreamKey stores key for the lesson, failing with ErrKeyExists if
// one is already present. A lesson keeps its key for its whole lifetime;
// the stored key is never overwritten.
func (s *Store) SetStreamKey(lessonID, key string) error {
	result, err := s.db.Exec(
		`UPDATE lessons SET stream_key = ?, stream_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stream_key = ''`,
		key, models.StreamOffline, lessonID,
	)
	if err != nil {
		return fmt.Errorf("setting stream key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	// Nothing updated: either the lesson is missing or it already has a key.
	var existing string
	err = s.db.QueryRow(`SELECT stream_key FROM lessons WHERE id = ?`, lessonID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lesson %s: %w", lessonID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("setting stream key: %w", err)
	}
	return fmt.Errorf("lesson %s: %w", lessonID, models.ErrKeyExists)
}

// SetStreamStatus unconditionally overwrites the lesson's status and
// returns the previous one. Any status may follow any status: the
// operator is always allowed to force a state, including recovery moves
// like ending a stream that never reported live.
func (s *Store) SetStreamStatus(lessonID string, status models.StreamStatus) (models.StreamStatus, error) {
	var prev models.StreamStatus
	var key string
	err := s.db.QueryRow(`SELECT stream_key, stream_status FROM lessons WHERE id = ?`, lessonID).Scan(&key, &prev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lesson %s: %w", lessonID, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading stream status: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("lesson %s: %w", lessonID, models.ErrNoStreamKey)
	}
	_, err = s.db.Exec(
		`UPDATE lessons SET stream_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, lessonID,
	)
	if err != nil {
		return "", fmt.Errorf("setting stream status: %w", err)
	}
	return prev, nil
}

// SetScheduledStart records the advisory start time. It does not touch
// the stream status.
func (s *Store) SetScheduledStart(lessonID string, start time.Time) error {
	result, err := s.db.Exec(
		`UPDATE lessons SET scheduled_start = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		start.UTC(), lessonID,
	)
	if err != nil {
		return fmt.Errorf("setting scheduled start: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lesson %s: %w", lessonID, models.ErrNotFound)
	}
	return nil
}
