package storage

import (
	"context"
	"database/sql"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CompletionGate vets a toggle that would mark a day completed. last is the
// most recent completed record for the habit and user, nil when there is none.
type CompletionGate func(last *models.CompletionRecord) error

// CompletionTx is the part of a store a toggle reads and writes. Stores hand
// Toggle a value bound to the transaction or lock that makes the toggle atomic.
type CompletionTx interface {
	GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error)
	GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error)
	UpsertCompletion(ctx context.Context, record models.CompletionRecord) error
}

// Toggle flips the record stored under fresh's key, or inserts fresh as
// completed when there is none. gate runs only when the result is completed;
// its error aborts the toggle before anything is written.
func Toggle(ctx context.Context, tx CompletionTx, fresh models.CompletionRecord, gate CompletionGate) (models.CompletionRecord, error) {
	next := fresh
	next.Completed = true

	existing, err := tx.GetCompletion(ctx, fresh.HabitID, fresh.UserID, fresh.Date)
	switch {
	case err == nil:
		next = existing
		next.Completed = !existing.Completed
		next.UpdatedAt = fresh.UpdatedAt
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return models.CompletionRecord{}, err
	}

	if next.Completed && gate != nil {
		var last *models.CompletionRecord
		r, err := tx.GetLastCompletion(ctx, fresh.HabitID, fresh.UserID)
		switch {
		case err == nil:
			last = &r
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return models.CompletionRecord{}, err
		}
		if err := gate(last); err != nil {
			return models.CompletionRecord{}, err
		}
	}

	if err := tx.UpsertCompletion(ctx, next); err != nil {
		return models.CompletionRecord{}, err
	}
	return next, nil
}
