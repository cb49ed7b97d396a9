package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

const (
	HabitColumns      = "id, user_id, name, description, cadence, category, difficulty, reminder_time, is_public, reward, created_at"
	CompletionColumns = "id, habit_id, user_id, day, completed, created_at, updated_at"
	CategoryColumns   = "id, user_id, name, color, created_at"
)

// FormatTime renders a timestamp the way both SQL backends store it
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// ScanHabit reads one row selected with HabitColumns
func ScanHabit(row Scanner) (models.Habit, error) {
	var h models.Habit
	var cadence, difficulty, createdAt string

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &cadence, &h.Category,
		&difficulty, &h.ReminderTime, &h.IsPublic, &h.Reward, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Cadence = constants.Cadence(cadence)
	h.Difficulty = constants.Difficulty(difficulty)
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// ScanCompletion reads one row selected with CompletionColumns
func ScanCompletion(row Scanner) (models.CompletionRecord, error) {
	var r models.CompletionRecord
	var createdAt, updatedAt string

	if err := row.Scan(&r.ID, &r.HabitID, &r.UserID, &r.Date, &r.Completed, &createdAt, &updatedAt); err != nil {
		return models.CompletionRecord{}, err
	}

	var err error
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.CompletionRecord{}, err
	}
	if r.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.CompletionRecord{}, err
	}
	return r, nil
}

// ScanCategory reads one row selected with CategoryColumns
func ScanCategory(row Scanner) (models.Category, error) {
	var c models.Category
	var createdAt string

	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &createdAt); err != nil {
		return models.Category{}, err
	}

	var err error
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// CollectHabits drains rows into a slice, closing rows when done
func CollectHabits(rows *sql.Rows) ([]models.Habit, error) {
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := ScanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CollectCompletions drains rows into a slice, closing rows when done
func CollectCompletions(rows *sql.Rows) ([]models.CompletionRecord, error) {
	defer rows.Close()

	records := []models.CompletionRecord{}
	for rows.Next() {
		r, err := ScanCompletion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CollectCategories drains rows into a slice, closing rows when done
func CollectCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := ScanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// NotFound maps sql.ErrNoRows to ErrNotFound and passes other errors through
func NotFound(err error, what, id string) error {
	if apperrors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFoundf("%s %s", what, id)
	}
	return err
}
