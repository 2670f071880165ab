package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lessoncast/internal/models"
)

const courseColumns = `id, title, description, created_at, updated_at`

func scanCourse(scanner interface{ Scan(...any) error }) (models.Course, error) {
	var c models.Course
	err := scanner.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCourse(c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	created, err := scanCourse(s.db.QueryRow(
		`INSERT INTO courses (id, title, description) VALUES (?, ?, ?) RETURNING `+courseColumns,
		c.ID, c.Title, c.Description,
	))
	if err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	*c = created
	return nil
}

func (s *Store) GetCourse(id string) (*models.Course, error) {
	c, err := scanCourse(s.db.QueryRow(
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting course: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCourses() ([]models.Course, error) {
	rows, err := s.db.Query(`SELECT ` + courseColumns + ` FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *Store) UpdateCourse(c *models.Course) error {
	updated, err := scanCourse(s.db.QueryRow(
		`UPDATE courses SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? RETURNING `+courseColumns,
		c.Title, c.Description, c.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("course %s: %w", c.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	*c = updated
	return nil
}

func (s *Store) DeleteCourse(id string) error {
	result, err := s.db.Exec(`DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("course %s: %w", id, models.ErrNotFound)
	}
	return nil
}
