package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// completions runs the completion queries on either the pool or a single conn
type completions struct {
	q storage.Queryer
}

func (s *Store) ListCompletions(ctx context.Context, habitID, userID string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.CompletionColumns+` FROM completions
		WHERE habit_id = ? AND user_id = ? ORDER BY day`, habitID, userID)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func (s *Store) ListCompletionsForUser(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.CompletionColumns+` FROM completions
		WHERE user_id = ? ORDER BY day, habit_id`, userID)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func (s *Store) GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error) {
	return completions{s.db}.GetCompletion(ctx, habitID, userID, date)
}

func (s *Store) GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error) {
	return completions{s.db}.GetLastCompletion(ctx, habitID, userID)
}

func (s *Store) UpsertCompletion(ctx context.Context, record models.CompletionRecord) error {
	return completions{s.db}.UpsertCompletion(ctx, record)
}

// ToggleCompletion takes the database write lock with BEGIN IMMEDIATE before
// reading, so a second process toggling the same file waits on busy_timeout
// instead of reading the pre-toggle state.
func (s *Store) ToggleCompletion(ctx context.Context, fresh models.CompletionRecord, gate storage.CompletionGate) (models.CompletionRecord, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to begin toggle: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		// ctx may already be cancelled; the rollback must still run
		if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
			logger.Warn("Failed to roll back toggle", "habit", fresh.HabitID, "error", err)
		}
	}()

	record, err := storage.Toggle(ctx, completions{conn}, fresh, gate)
	if err != nil {
		return models.CompletionRecord{}, err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to commit toggle: %w", err)
	}
	committed = true
	return record, nil
}

func (c completions) GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT `+storage.CompletionColumns+` FROM completions
		WHERE habit_id = ? AND user_id = ? AND day = ?`, habitID, userID, date)
	r, err := storage.ScanCompletion(row)
	if err != nil {
		return models.CompletionRecord{}, storage.NotFound(err, "completion", habitID+"@"+date)
	}
	return r, nil
}

func (c completions) GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT `+storage.CompletionColumns+` FROM completions
		WHERE habit_id = ? AND user_id = ? AND completed = 1
		ORDER BY day DESC LIMIT 1`, habitID, userID)
	r, err := storage.ScanCompletion(row)
	if err != nil {
		return models.CompletionRecord{}, storage.NotFound(err, "completion for habit", habitID)
	}
	return r, nil
}

func (c completions) UpsertCompletion(ctx context.Context, record models.CompletionRecord) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO completions (`+storage.CompletionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, user_id, day) DO UPDATE SET
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		record.ID, record.HabitID, record.UserID, record.Date, record.Completed,
		storage.FormatTime(record.CreatedAt), storage.FormatTime(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert completion for habit %s on %s: %w", record.HabitID, record.Date, err)
	}
	return nil
}
