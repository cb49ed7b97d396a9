package habits

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/utils"
)

const progressWidth = 20

type DashboardCmd struct {
	Date string `help:"Day to summarize in YYYY-MM-DD format (default: today)."`
}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	dash, err := ctx.Tracker.Dashboard(ctx.Ctx(), caller, day)
	if err != nil {
		return err
	}

	ctx.Println(titleStyle.Render("Dashboard for " + dash.Date))
	ctx.Printf("%s %d%%  (%d of %d habits completed)\n",
		progressBar(dash.CompletionRate), dash.CompletionRate, dash.CompletedToday, dash.TotalHabits)

	if len(dash.Streaks) == 0 {
		ctx.Println(mutedStyle.Render("No habits yet. Add one with 'habitual habit add'."))
		return nil
	}

	t := newTable("", "HABIT", "CADENCE", "STREAK")
	for _, s := range dash.Streaks {
		t.Row(checkmark(s.CompletedToday), s.Habit.Name, string(s.Habit.Cadence), fmt.Sprintf("%d %s", s.Streak, s.Unit))
	}
	ctx.Println(t.Render())
	return nil
}

// progressBar draws rate (0-100) as a fixed-width bar
func progressBar(rate int) string {
	filled := rate * progressWidth / 100
	return doneStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", progressWidth-filled))
}

type StreaksCmd struct {
	Habit string `help:"Only show records for this habit (name or id)."`
}

func (c *StreaksCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}

	habits, err := ctx.Tracker.ListHabits(ctx.Ctx(), caller)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
	}

	only := ""
	if c.Habit != "" {
		if only, _, err = ctx.ResolveHabit(c.Habit); err != nil {
			return err
		}
	}

	records, err := ctx.Tracker.ListAllStreakRecords(ctx.Ctx(), caller)
	if err != nil {
		return err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return names[records[i].HabitID] < names[records[j].HabitID]
	})

	t := newTable("DATE", "HABIT", "COMPLETED")
	rows := 0
	for _, r := range records {
		if only != "" && r.HabitID != only {
			continue
		}
		t.Row(r.Date, names[r.HabitID], checkmark(r.Completed))
		rows++
	}
	if rows == 0 {
		ctx.Println("No completion records found.")
		return nil
	}
	ctx.Println(t.Render())
	return nil
}

type CalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month in YYYY-MM format (default: this month)."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	month := c.Month
	if month == "" {
		today, err := ctx.Today()
		if err != nil {
			return err
		}
		month = today.Format(constants.MonthFormat)
	}

	cal, err := ctx.Tracker.Calendar(ctx.Ctx(), caller, month)
	if err != nil {
		return err
	}

	first, err := utils.ParseMonth(cal.Month)
	if err != nil {
		return err
	}

	var header strings.Builder
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		header.WriteString(dayStyle.Render(wd))
	}

	lines := []string{
		titleStyle.Render(first.Format("January 2006")),
		mutedStyle.Render(header.String()),
	}

	total := len(cal.Habits)
	var week strings.Builder
	week.WriteString(strings.Repeat(dayStyle.Render(""), int(first.Weekday())))
	for _, day := range cal.Days {
		date, err := utils.ParseDate(day.Date)
		if err != nil {
			return err
		}
		week.WriteString(dayCell(date, len(day.CompletedHabits), total))
		if date.Weekday() == time.Saturday {
			lines = append(lines, week.String())
			week.Reset()
		}
	}
	if week.Len() > 0 {
		lines = append(lines, week.String())
	}

	lines = append(lines, "",
		fullDayStyle.UnsetWidth().Render("■")+" all habits  "+
			partialDayStyle.UnsetWidth().Render("■")+" some habits")

	ctx.Println(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return nil
}

func dayCell(date time.Time, done, total int) string {
	label := fmt.Sprintf("%d", date.Day())
	switch {
	case done > 0 && done == total:
		return fullDayStyle.Render(label)
	case done > 0:
		return partialDayStyle.Render(label)
	default:
		return dayStyle.Render(label)
	}
}
