package storage

import (
	"context"

	"github.com/julianstephens/habitual/internal/models"
)

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	CreateHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabitsForUser(ctx context.Context, userID string) ([]models.Habit, error)

	// Completions
	ListCompletions(ctx context.Context, habitID, userID string) ([]models.CompletionRecord, error)
	ListCompletionsForUser(ctx context.Context, userID string) ([]models.CompletionRecord, error)
	GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error)
	// GetLastCompletion returns the completed record with the latest date for the
	// habit and user, or ErrNotFound when the habit has never been completed.
	GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error)
	// UpsertCompletion writes the record for its (habit, user, date) key,
	// replacing the completed flag if a record already exists.
	UpsertCompletion(ctx context.Context, record models.CompletionRecord) error
	// ToggleCompletion performs Toggle atomically against every other writer of
	// the same store, including other processes sharing the database.
	ToggleCompletion(ctx context.Context, fresh models.CompletionRecord, gate CompletionGate) (models.CompletionRecord, error)

	// Categories
	CreateCategory(ctx context.Context, category models.Category) error
	ListCategoriesForUser(ctx context.Context, userID string) ([]models.Category, error)

	// Utils
	GetConfigPath() string
}
