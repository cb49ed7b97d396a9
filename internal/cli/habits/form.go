package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// newHabitForm prompts for every attribute of a habit, prefilled from in.
// categories are offered as suggestions for the category field.
func newHabitForm(in *models.NewHabit, categories []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&in.Name).
				Validate(notEmpty("habit name")),
			huh.NewText().
				Title("Description").
				Value(&in.Description),
			huh.NewSelect[constants.Cadence]().
				Title("Cadence").
				Options(
					huh.NewOption("Daily", constants.CadenceDaily),
					huh.NewOption("Weekly", constants.CadenceWeekly),
					huh.NewOption("Monthly", constants.CadenceMonthly),
				).
				Value(&in.Cadence),
			huh.NewInput().
				Title("Category").
				Suggestions(categories).
				Value(&in.Category).
				Validate(notEmpty("habit category")),
			huh.NewSelect[constants.Difficulty]().
				Title("Difficulty").
				Options(
					huh.NewOption("Easy", constants.DifficultyEasy),
					huh.NewOption("Medium", constants.DifficultyMedium),
					huh.NewOption("Hard", constants.DifficultyHard),
				).
				Value(&in.Difficulty),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Leave empty for no reminder").
				Value(&in.ReminderTime).
				Validate(func(s string) error {
					if s == "" || utils.ValidateTimeFormat(s) {
						return nil
					}
					return fmt.Errorf("reminder must be HH:MM")
				}),
			huh.NewInput().
				Title("Reward").
				Value(&in.Reward),
			huh.NewConfirm().
				Title("Public").
				Value(&in.IsPublic),
		),
	).WithTheme(huh.ThemeDracula())
}
