package habits

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Last   HabitLastCmd   `cmd:"" help:"Show a habit's most recent completion."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name (prompted when omitted)."`
	Description string `help:"What the habit is about."`
	Cadence     string `help:"How often the habit repeats (daily, weekly, monthly)." default:"daily" enum:"daily,weekly,monthly"`
	Category    string `help:"Category name."`
	Difficulty  string `help:"Effort level (easy, medium, hard)." default:"medium" enum:"easy,medium,hard"`
	Reminder    string `help:"Reminder time (HH:MM)."`
	Reward      string `help:"Reward for keeping the habit."`
	Public      bool   `help:"Share the habit publicly."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}

	in := models.NewHabit{
		Name:         c.Name,
		Description:  c.Description,
		Cadence:      constants.Cadence(c.Cadence),
		Category:     c.Category,
		Difficulty:   constants.Difficulty(c.Difficulty),
		ReminderTime: c.Reminder,
		IsPublic:     c.Public,
		Reward:       c.Reward,
	}

	if c.Interactive || c.Name == "" {
		categories, err := ctx.Tracker.ListCategories(ctx.Ctx(), caller)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(categories))
		for _, cat := range categories {
			names = append(names, cat.Name)
		}
		if err := newHabitForm(&in, names).RunWithContext(ctx.Ctx()); err != nil {
			return err
		}
	}

	id, err := ctx.Tracker.CreateHabit(ctx.Ctx(), caller, in)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s, %s)\n", in.Name, in.Cadence, in.Category)
	ctx.Println(mutedStyle.Render("id: " + id))
	return nil
}

type HabitListCmd struct {
	Category   string `help:"Only show this category." default:"all"`
	Difficulty string `help:"Only show this difficulty (all, easy, medium, hard)." default:"all"`
	Status     string `help:"Only show habits completed or pending today (all, completed, pending)." default:"all"`
	Date       string `help:"Day to evaluate in YYYY-MM-DD format (default: today)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	rows, err := ctx.Tracker.FilterHabits(ctx.Ctx(), caller, tracker.Filter{
		Category:   c.Category,
		Difficulty: c.Difficulty,
		Status:     c.Status,
	}, day)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	t := newTable("", "NAME", "CADENCE", "CATEGORY", "DIFFICULTY", "STREAK", "TOTAL", "ID")
	for _, row := range rows {
		t.Row(
			checkmark(row.CompletedToday),
			row.Habit.Name,
			string(row.Habit.Cadence),
			row.Habit.Category,
			string(row.Habit.Difficulty),
			fmt.Sprintf("%d %s", row.Streak, row.Unit),
			strconv.Itoa(row.TotalCompletions),
			row.Habit.ID,
		)
	}
	ctx.Println(titleStyle.Render("Habits for " + utils.FormatDate(day)))
	ctx.Println(t.Render())
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	id, name, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	result, err := ctx.Tracker.ToggleCompletion(ctx.Ctx(), caller, id, utils.FormatDate(day))
	if err != nil {
		return err
	}

	if result.Completed {
		ctx.Printf("%s %s completed on %s\n", checkmark(true), name, result.Date)
	} else {
		ctx.Printf("%s %s no longer completed on %s\n", checkmark(false), name, result.Date)
	}
	return nil
}

type HabitLastCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitLastCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	id, name, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	last, err := ctx.Tracker.GetLastCompletion(ctx.Ctx(), caller, id)
	if err != nil {
		return err
	}
	if last == nil {
		ctx.Printf("%s has not been completed yet.\n", name)
		return nil
	}
	ctx.Printf("%s was last completed on %s\n", name, last.Date)
	return nil
}
