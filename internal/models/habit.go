package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Habit represents a recurring practice a user tracks
type Habit struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Cadence      constants.Cadence    `json:"cadence"`
	Category     string               `json:"category"`
	Difficulty   constants.Difficulty `json:"difficulty"`
	ReminderTime string               `json:"reminder_time,omitempty"` // HH:MM format
	IsPublic     bool                 `json:"is_public"`
	Reward       string               `json:"reward,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewHabit holds the caller-supplied attributes of a habit being created
type NewHabit struct {
	Name         string               `json:"name" yaml:"name"`
	Description  string               `json:"description,omitempty" yaml:"description"`
	Cadence      constants.Cadence    `json:"cadence" yaml:"cadence"`
	Category     string               `json:"category" yaml:"category"`
	Difficulty   constants.Difficulty `json:"difficulty" yaml:"difficulty"`
	ReminderTime string               `json:"reminder_time,omitempty" yaml:"reminder_time"`
	IsPublic     bool                 `json:"is_public" yaml:"is_public"`
	Reward       string               `json:"reward,omitempty" yaml:"reward"`
}

func (n *NewHabit) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if strings.TrimSpace(n.Category) == "" {
		return fmt.Errorf("habit category cannot be empty")
	}
	if !ValidCadence(n.Cadence) {
		return fmt.Errorf("invalid cadence %q (expected daily, weekly or monthly)", n.Cadence)
	}
	if !ValidDifficulty(n.Difficulty) {
		return fmt.Errorf("invalid difficulty %q (expected easy, medium or hard)", n.Difficulty)
	}
	if n.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, n.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time (expected HH:MM): %w", err)
		}
	}
	return nil
}

// ValidCadence reports whether c is one of the supported cadences
func ValidCadence(c constants.Cadence) bool {
	switch c {
	case constants.CadenceDaily, constants.CadenceWeekly, constants.CadenceMonthly:
		return true
	default:
		return false
	}
}

// ValidDifficulty reports whether d is one of the supported difficulties
func ValidDifficulty(d constants.Difficulty) bool {
	switch d {
	case constants.DifficultyEasy, constants.DifficultyMedium, constants.DifficultyHard:
		return true
	default:
		return false
	}
}

// CompletionRecord is the state of a habit on a single calendar day.
// A day with no record counts as not completed.
type CompletionRecord struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the composite identity of the record
func (r CompletionRecord) Key() CompletionKey {
	return CompletionKey{HabitID: r.HabitID, UserID: r.UserID, Date: r.Date}
}

// CompletionKey identifies at most one CompletionRecord
type CompletionKey struct {
	HabitID string
	UserID  string
	Date    string
}

// Category is a user-defined label with a display color
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // #RRGGBB
	CreatedAt time.Time `json:"created_at"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("invalid color %q (expected #RRGGBB)", c.Color)
	}
	return nil
}
