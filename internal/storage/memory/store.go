// Package memory implements storage.Provider over in-process maps. Nothing is
// persisted; it backs tests and the memory:// store option.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

type Store struct {
	mu          sync.RWMutex
	habits      map[string]models.Habit
	completions map[models.CompletionKey]models.CompletionRecord
	categories  map[string]models.Category
}

// NewStore returns an empty store that is usable without Init
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.habits = make(map[string]models.Habit)
	s.completions = make(map[models.CompletionKey]models.CompletionRecord)
	s.categories = make(map[string]models.Category)
}

// Init discards everything stored so far
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) Load(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) GetConfigPath() string { return constants.MemoryStoreScheme }

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.habits[habit.ID]; exists {
		return fmt.Errorf("habit %s already exists", habit.ID)
	}
	s.habits[habit.ID] = habit
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, apperrors.NotFoundf("habit %s", id)
	}
	return h, nil
}

func (s *Store) ListHabitsForUser(ctx context.Context, userID string) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := []models.Habit{}
	for _, h := range s.habits {
		if h.UserID == userID {
			habits = append(habits, h)
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (s *Store) filterCompletions(keep func(models.CompletionRecord) bool) []models.CompletionRecord {
	records := []models.CompletionRecord{}
	for _, r := range s.completions {
		if keep(r) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date == records[j].Date {
			return records[i].HabitID < records[j].HabitID
		}
		return records[i].Date < records[j].Date
	})
	return records
}

func (s *Store) ListCompletions(ctx context.Context, habitID, userID string) ([]models.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterCompletions(func(r models.CompletionRecord) bool {
		return r.HabitID == habitID && r.UserID == userID
	}), nil
}

func (s *Store) ListCompletionsForUser(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterCompletions(func(r models.CompletionRecord) bool {
		return r.UserID == userID
	}), nil
}

func (s *Store) GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return locked{s}.GetCompletion(ctx, habitID, userID, date)
}

func (s *Store) GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return locked{s}.GetLastCompletion(ctx, habitID, userID)
}

func (s *Store) UpsertCompletion(ctx context.Context, record models.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.UpsertCompletion(ctx, record)
}

// ToggleCompletion holds the write lock across the read and the write
func (s *Store) ToggleCompletion(ctx context.Context, fresh models.CompletionRecord, gate storage.CompletionGate) (models.CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Toggle(ctx, locked{s}, fresh, gate)
}

// locked accesses the completion map of a store whose mutex the caller holds
type locked struct {
	s *Store
}

func (l locked) GetCompletion(ctx context.Context, habitID, userID, date string) (models.CompletionRecord, error) {
	r, ok := l.s.completions[models.CompletionKey{HabitID: habitID, UserID: userID, Date: date}]
	if !ok {
		return models.CompletionRecord{}, apperrors.NotFoundf("completion %s@%s", habitID, date)
	}
	return r, nil
}

func (l locked) GetLastCompletion(ctx context.Context, habitID, userID string) (models.CompletionRecord, error) {
	var last models.CompletionRecord
	found := false
	for _, r := range l.s.completions {
		if r.HabitID != habitID || r.UserID != userID || !r.Completed {
			continue
		}
		if !found || r.Date > last.Date {
			last = r
			found = true
		}
	}
	if !found {
		return models.CompletionRecord{}, apperrors.NotFoundf("completion for habit %s", habitID)
	}
	return last, nil
}

func (l locked) UpsertCompletion(ctx context.Context, record models.CompletionRecord) error {
	if _, ok := l.s.habits[record.HabitID]; !ok {
		return apperrors.NotFoundf("habit %s", record.HabitID)
	}

	key := record.Key()
	if existing, ok := l.s.completions[key]; ok {
		existing.Completed = record.Completed
		existing.UpdatedAt = record.UpdatedAt
		l.s.completions[key] = existing
		return nil
	}
	l.s.completions[key] = record
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, category models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.UserID == category.UserID && c.Name == category.Name {
			return fmt.Errorf("category %s already exists", category.Name)
		}
	}
	s.categories[category.ID] = category
	return nil
}

func (s *Store) ListCategoriesForUser(ctx context.Context, userID string) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := []models.Category{}
	for _, c := range s.categories {
		if c.UserID == userID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}
