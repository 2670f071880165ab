package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lessoncast/internal/models"
)

const lessonColumns = `id, course_id, module_index, lesson_index, title, is_live_stream, stream_key, stream_status, scheduled_start, created_at, updated_at`

func scanLesson(scanner interface{ Scan(...any) error }) (models.Lesson, error) {
	var l models.Lesson
	err := scanner.Scan(
		&l.ID, &l.CourseID, &l.ModuleIndex, &l.LessonIndex, &l.Title,
		&l.IsLiveStream, &l.StreamKey, &l.StreamStatus, &l.ScheduledStart,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (s *Store) CreateLesson(l *models.Lesson) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.StreamStatus == "" {
		l.StreamStatus = models.StreamOffline
	}
	created, err := scanLesson(s.db.QueryRow(
		`INSERT INTO lessons (id, course_id, module_index, lesson_index, title, is_live_stream, stream_status)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING `+lessonColumns,
		l.ID, l.CourseID, l.ModuleIndex, l.LessonIndex, l.Title, l.IsLiveStream, l.StreamStatus,
	))
	if err != nil {
		return fmt.Errorf("creating lesson: %w", err)
	}
	*l = created
	return nil
}

func (s *Store) GetLesson(id string) (*models.Lesson, error) {
	l, err := scanLesson(s.db.QueryRow(
		`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting lesson: %w", err)
	}
	return &l, nil
}

// ResolveLesson looks a lesson up by its positional address. Positions
// shift when modules are edited, so callers should prefer the stable ID
// this returns for anything they hold on to.
func (s *Store) ResolveLesson(courseID string, moduleIndex, lessonIndex int) (*models.Lesson, error) {
	l, err := scanLesson(s.db.QueryRow(
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? AND module_index = ? AND lesson_index = ?`,
		courseID, moduleIndex, lessonIndex,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %s/%d/%d: %w", courseID, moduleIndex, lessonIndex, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving lesson: %w", err)
	}
	return &l, nil
}

func (s *Store) ListLessons(courseID string) ([]models.Lesson, error) {
	rows, err := s.db.Query(
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? ORDER BY module_index, lesson_index`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// UpdateLesson rewrites the catalog fields only. Stream state (key,
// status, schedule) is mutated exclusively through the stream methods.
func (s *Store) UpdateLesson(l *models.Lesson) error {
	updated, err := scanLesson(s.db.QueryRow(
		`UPDATE lessons SET module_index = ?, lesson_index = ?, title = ?, is_live_stream = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? RETURNING `+lessonColumns,
		l.ModuleIndex, l.LessonIndex, l.Title, l.IsLiveStream, l.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lesson %s: %w", l.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating lesson: %w", err)
	}
	*l = updated
	return nil
}

func (s *Store) DeleteLesson(id string) error {
	result, err := s.db.Exec(`DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting lesson: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lesson %s: %w", id, models.ErrNotFound)
	}
	return nil
}
