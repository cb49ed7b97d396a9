package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO habits (`+storage.HabitColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		habit.ID, habit.UserID, habit.Name, habit.Description, string(habit.Cadence),
		habit.Category, string(habit.Difficulty), habit.ReminderTime, habit.IsPublic,
		habit.Reward, storage.FormatTime(habit.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storage.HabitColumns+` FROM habits WHERE id = $1`, id)
	h, err := storage.ScanHabit(row)
	if err != nil {
		return models.Habit{}, storage.NotFound(err, "habit", id)
	}
	return h, nil
}

func (s *Store) ListHabitsForUser(ctx context.Context, userID string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+storage.HabitColumns+` FROM habits
WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return storage.CollectHabits(rows)
}
