package tracker

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/completion"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// HabitStreak is one habit's current streak as shown on the dashboard
type HabitStreak struct {
	Habit          models.Habit `json:"habit"`
	Streak         int          `json:"streak"`
	Unit           string       `json:"unit"`
	CompletedToday bool         `json:"completed_today"`
}

// Dashboard summarizes one day across all of a user's habits
type Dashboard struct {
	Date           string        `json:"date"`
	CompletionRate int           `json:"completion_rate"`
	CompletedToday int           `json:"completed_today"`
	TotalHabits    int           `json:"total_habits"`
	Streaks        []HabitStreak `json:"streaks"`
}

// Filter narrows the list view. Empty fields behave like "all".
type Filter struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
}

// HabitStatus is a list view row
type HabitStatus struct {
	Habit            models.Habit `json:"habit"`
	CompletedToday   bool         `json:"completed_today"`
	TotalCompletions int          `json:"total_completions"`
	Streak           int          `json:"streak"`
	Unit             string       `json:"unit"`
}

// CalendarDay lists the habits completed on one date
type CalendarDay struct {
	Date            string   `json:"date"`
	CompletedHabits []string `json:"completed_habits"`
}

// CalendarMonth is every day of a month with the habits shown on the calendar
type CalendarMonth struct {
	Month  string         `json:"month"`
	Habits []models.Habit `json:"habits"`
	Days   []CalendarDay  `json:"days"`
}

// snapshot is a caller's habits plus their completion records grouped by habit
type snapshot struct {
	habits  []models.Habit
	records map[string][]models.CompletionRecord
}

func (s *Service) loadSnapshot(ctx context.Context, userID string) (snapshot, error) {
	var habits []models.Habit
	var records []models.CompletionRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = s.store.ListHabitsForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.store.ListCompletionsForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	byHabit := make(map[string][]models.CompletionRecord, len(habits))
	for _, r := range records {
		byHabit[r.HabitID] = append(byHabit[r.HabitID], r)
	}
	return snapshot{habits: habits, records: byHabit}, nil
}

func completedOn(records []models.CompletionRecord, date string) bool {
	for _, r := range records {
		if r.Date == date {
			return r.Completed
		}
	}
	return false
}

func countCompleted(records []models.CompletionRecord) int {
	n := 0
	for _, r := range records {
		if r.Completed {
			n++
		}
	}
	return n
}

// CompletionRate is the rounded percentage of habits completed, 0 for no habits
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Dashboard summarizes today's progress and every habit's streak
func (s *Service) Dashboard(ctx context.Context, caller auth.Identity, today time.Time) (Dashboard, error) {
	today = utils.DateOf(today)
	dash := Dashboard{Date: utils.FormatDate(today), Streaks: []HabitStreak{}}
	if !caller.Authenticated() {
		return dash, nil
	}

	snap, err := s.loadSnapshot(ctx, caller.UserID)
	if err != nil {
		return Dashboard{}, err
	}

	for _, h := range snap.habits {
		records := snap.records[h.ID]
		done := completedOn(records, dash.Date)
		if done {
			dash.CompletedToday++
		}
		dash.Streaks = append(dash.Streaks, HabitStreak{
			Habit:          h,
			Streak:         completion.DeriveStreak(h.Cadence, records, today),
			Unit:           completion.StreakUnit(h.Cadence),
			CompletedToday: done,
		})
	}
	dash.TotalHabits = len(snap.habits)
	dash.CompletionRate = CompletionRate(dash.CompletedToday, dash.TotalHabits)
	return dash, nil
}

func normalizeFilter(f Filter) (Filter, error) {
	norm := func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return constants.FilterAll
		}
		return v
	}
	f.Category = norm(f.Category)
	f.Difficulty = strings.ToLower(norm(f.Difficulty))
	f.Status = strings.ToLower(norm(f.Status))

	if f.Difficulty != constants.FilterAll && !models.ValidDifficulty(constants.Difficulty(f.Difficulty)) {
		return Filter{}, apperrors.Invalidf("unknown difficulty filter %q", f.Difficulty)
	}
	switch f.Status {
	case constants.FilterAll, constants.StatusCompleted, constants.StatusPending:
	default:
		return Filter{}, apperrors.Invalidf("unknown status filter %q", f.Status)
	}
	return f, nil
}

// FilterHabits is the list view: the caller's habits narrowed by category,
// difficulty and whether they were completed today.
func (s *Service) FilterHabits(ctx context.Context, caller auth.Identity, filter Filter, today time.Time) ([]HabitStatus, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	rows := []HabitStatus{}
	if !caller.Authenticated() {
		return rows, nil
	}

	snap, err := s.loadSnapshot(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	today = utils.DateOf(today)
	todayStr := utils.FormatDate(today)
	for _, h := range snap.habits {
		if filter.Category != constants.FilterAll && h.Category != filter.Category {
			continue
		}
		if filter.Difficulty != constants.FilterAll && string(h.Difficulty) != filter.Difficulty {
			continue
		}

		records := snap.records[h.ID]
		done := completedOn(records, todayStr)
		if filter.Status == constants.StatusCompleted && !done {
			continue
		}
		if filter.Status == constants.StatusPending && done {
			continue
		}

		rows = append(rows, HabitStatus{
			Habit:            h,
			CompletedToday:   done,
			TotalCompletions: countCompleted(records),
			Streak:           completion.DeriveStreak(h.Cadence, records, today),
			Unit:             completion.StreakUnit(h.Cadence),
		})
	}
	return rows, nil
}

// Calendar lists, for every day of month (YYYY-MM), the habits completed that day
func (s *Service) Calendar(ctx context.Context, caller auth.Identity, month string) (CalendarMonth, error) {
	first, err := utils.ParseMonth(month)
	if err != nil {
		return CalendarMonth{}, apperrors.Invalidf("invalid month %q (expected YYYY-MM)", month)
	}

	cal := CalendarMonth{Month: first.Format(constants.MonthFormat), Habits: []models.Habit{}}
	var snap snapshot
	if caller.Authenticated() {
		if snap, err = s.loadSnapshot(ctx, caller.UserID); err != nil {
			return CalendarMonth{}, err
		}
		cal.Habits = snap.habits
	}

	for _, day := range utils.DaysInMonth(first) {
		date := utils.FormatDate(day)
		entry := CalendarDay{Date: date, CompletedHabits: []string{}}
		for _, h := range snap.habits {
			if completedOn(snap.records[h.ID], date) {
				entry.CompletedHabits = append(entry.CompletedHabits, h.ID)
			}
		}
		cal.Days = append(cal.Days, entry)
	}
	return cal, nil
}

// CreateCategory adds a named color to the caller's palette
func (s *Service) CreateCategory(ctx context.Context, caller auth.Identity, name, color string) (models.Category, error) {
	if !caller.Authenticated() {
		return models.Category{}, apperrors.ErrUnauthenticated
	}

	category := models.Category{
		ID:        s.newID(),
		UserID:    caller.UserID,
		Name:      strings.TrimSpace(name),
		Color:     strings.TrimSpace(color),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := category.Validate(); err != nil {
		return models.Category{}, apperrors.Invalidf("%v", err)
	}

	existing, err := s.store.ListCategoriesForUser(ctx, caller.UserID)
	if err != nil {
		return models.Category{}, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, category.Name) {
			return models.Category{}, apperrors.Invalidf("category %q already exists", category.Name)
		}
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// ListCategories returns the caller's palette, or nothing for an anonymous caller
func (s *Service) ListCategories(ctx context.Context, caller auth.Identity) ([]models.Category, error) {
	if !caller.Authenticated() {
		return []models.Category{}, nil
	}
	return s.store.ListCategoriesForUser(ctx, caller.UserID)
}
