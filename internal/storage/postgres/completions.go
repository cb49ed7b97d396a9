package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// completions runs the completion queries on either the pool or a transaction
type completions struct {
	q storage.Queryer
}

func (s *Store) ListCompletions(ctx context.Context, habitID, userID string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+storage.CompletionColumns+` FROM completions
WHERE habit_id = $1 AND user_id = $2 ORDER BY day`, habitID, userID)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func (s *Store) ListCompletionsForUser(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+storage.CompletionColumns+` FROM completions
WHERE user_id = $1 ORDER BY day, habit_id`, userID)
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

// ToggleCompletion holds a transaction-scoped advisory lock on (habit, user)
// for the read and the write, so toggles from other server instances queue.
func (s *Store) ToggleCompletion(ctx context.Context, fresh models.CompletionRecord, gate storage.CompletionGate) (models.CompletionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CompletionRecord{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", toggleLockKey(fresh)); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to lock completion for habit %s: %w", fresh.HabitID, err)
	}

	record, err := storage.Toggle(ctx, completions{tx}, fresh, gate)
	if err != nil {
		return models.CompletionRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return record, nil
}

func toggleLockKey(r models.CompletionRecord) string {
	return r.HabitID + "/" + r.UserID
}

func (c completions) GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error) {
	row := c.q.QueryRowContext(ctx, `
SELECT `+storage.CompletionColumns+` FROM completions
WHERE habit_id = $1 AND user_id = $2 AND day = $3`, habitID, userID, date)
	r, err := storage.ScanCompletion(row)
	if err != nil {
		return models.CompletionRecord{}, storage.NotFound(err, "completion", habitID+"@"+date)
	}
	return r, nil
}

func (c completions) GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error) {
	row := c.q.QueryRowContext(ctx, `
SELECT `+storage.CompletionColumns+` FROM completions
WHERE habit_id = $1 AND user_id = $2 AND completed
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
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (habit_id, user_id, day) DO UPDATE SET
	completed = EXCLUDED.completed,
	updated_at = EXCLUDED.updated_at`,
		record.ID, record.HabitID, record.UserID, record.Date, record.Completed,
		storage.FormatTime(record.CreatedAt), storage.FormatTime(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert completion for habit %s on %s: %w", record.HabitID, record.Date, err)
	}
	return nil
}
