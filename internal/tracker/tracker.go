// Package tracker is the application layer over storage: it resolves the
// caller, enforces ownership and cadence rules, and serializes completion
// toggles per (habit, user).
package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/completion"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// CompletionResult is the state of a record after a toggle
type CompletionResult struct {
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Service runs habit and completion operations on behalf of a caller
type Service struct {
	store storage.Provider
	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the source of record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how record ids are minted
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New returns a Service backed by store
func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: newKeyedMutex(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHabit validates and stores a new habit owned by caller
func (s *Service) CreateHabit(ctx context.Context, caller auth.Identity, in models.NewHabit) (string, error) {
	if !caller.Authenticated() {
		return "", apperrors.ErrUnauthenticated
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := in.Validate(); err != nil {
		return "", apperrors.Invalidf("%v", err)
	}

	habit := models.Habit{
		ID:           s.newID(),
		UserID:       caller.UserID,
		Name:         in.Name,
		Description:  in.Description,
		Cadence:      in.Cadence,
		Category:     in.Category,
		Difficulty:   in.Difficulty,
		ReminderTime: in.ReminderTime,
		IsPublic:     in.IsPublic,
		Reward:       in.Reward,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if err := s.store.CreateHabit(ctx, habit); err != nil {
		return "", err
	}

	logger.Info("Habit created", "habit", habit.ID, "user", caller.UserID, "cadence", habit.Cadence)
	return habit.ID, nil
}

// ListHabits returns the caller's habits, or nothing for an anonymous caller
func (s *Service) ListHabits(ctx context.Context, caller auth.Identity) ([]models.Habit, error) {
	if !caller.Authenticated() {
		return []models.Habit{}, nil
	}
	return s.store.ListHabitsForUser(ctx, caller.UserID)
}

// ListAllStreakRecords returns every completion record the caller owns
func (s *Service) ListAllStreakRecords(ctx context.Context, caller auth.Identity) ([]models.CompletionRecord, error) {
	if !caller.Authenticated() {
		return []models.CompletionRecord{}, nil
	}
	return s.store.ListCompletionsForUser(ctx, caller.UserID)
}

// GetLastCompletion returns the caller's latest completed record for the habit.
// It returns nil without error for an anonymous caller or a never-completed habit.
func (s *Service) GetLastCompletion(ctx context.Context, caller auth.Identity, habitID string) (*models.CompletionRecord, error) {
	if !caller.Authenticated() {
		return nil, nil
	}
	if _, err := s.ownedHabit(ctx, caller, habitID); err != nil {
		return nil, err
	}

	last, err := s.store.GetLastCompletion(ctx, habitID, caller.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &last, nil
}

// ownedHabit loads a habit, hiding habits of other users behind ErrNotFound
func (s *Service) ownedHabit(ctx context.Context, caller auth.Identity, habitID string) (models.Habit, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if habit.UserID != caller.UserID {
		return models.Habit{}, apperrors.NotFoundf("habit %s", habitID)
	}
	return habit, nil
}

// ToggleCompletion flips the caller's record for habitID on date, creating it
// as completed when absent. Marking a day completed is subject to the habit's
// cadence relative to its most recent completion; clearing a day never is.
// The store makes the read and write atomic across processes; the keyed lock
// keeps goroutines of this process from queueing on the database.
func (s *Service) ToggleCompletion(ctx context.Context, caller auth.Identity, habitID, date string) (CompletionResult, error) {
	if !caller.Authenticated() {
		return CompletionResult{}, apperrors.ErrUnauthenticated
	}

	habit, err := s.ownedHabit(ctx, caller, habitID)
	if err != nil {
		return CompletionResult{}, err
	}

	target, err := completion.ParseTarget(date)
	if err != nil {
		return CompletionResult{}, err
	}
	date = utils.FormatDate(target)

	unlock := s.locks.Lock(lockKey{habitID: habitID, userID: caller.UserID})
	defer unlock()

	now := s.now().UTC().Truncate(time.Second)
	fresh := models.CompletionRecord{
		ID:        s.newID(),
		HabitID:   habitID,
		UserID:    caller.UserID,
		Date:      date,
		Completed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record, err := s.store.ToggleCompletion(ctx, fresh, func(last *models.CompletionRecord) error {
		return checkCadence(habit, last, target)
	})
	if err != nil {
		return CompletionResult{}, err
	}

	logger.Info("Completion toggled", "habit", habitID, "user", caller.UserID, "date", date, "completed", record.Completed)
	return CompletionResult{HabitID: habitID, Date: date, Completed: record.Completed}, nil
}

// checkCadence gates completing target on the habit's most recent completion
func checkCadence(habit models.Habit, last *models.CompletionRecord, target time.Time) error {
	if last == nil {
		return nil
	}

	lastDate, err := utils.ParseDate(last.Date)
	if err != nil {
		// A corrupt stored date cannot gate anything
		logger.Warn("Skipping cadence check for unparseable date", "habit", habit.ID, "date", last.Date)
		return nil
	}

	if err := completion.CanCompleteOn(habit.Cadence, &lastDate, target); err != nil {
		logger.Debug("Cadence violation", "habit", habit.ID, "target", utils.FormatDate(target), "error", err)
		return err
	}
	return nil
}
