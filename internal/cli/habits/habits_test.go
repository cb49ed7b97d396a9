package habits

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/memory"
	"github.com/julianstephens/habitual/internal/tracker"
)

func setupContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Init(context.Background()))
	out := &bytes.Buffer{}
	return &cli.Context{
		Store:    store,
		Tracker:  tracker.New(store),
		User:     "alice",
		Timezone: "UTC",
		Out:      out,
	}, out
}

func addHabit(t *testing.T, ctx *cli.Context, name, cadence, category string) {
	t.Helper()
	cmd := &HabitAddCmd{Name: name, Cadence: cadence, Category: category, Difficulty: "medium"}
	require.NoError(t, cmd.Run(ctx))
}

func toggle(t *testing.T, ctx *cli.Context, habit, date string) {
	t.Helper()
	require.NoError(t, (&HabitToggleCmd{Habit: habit, Date: date}).Run(ctx))
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out := setupContext(t)

	addHabit(t, ctx, "Read", "daily", "learning")
	assert.Contains(t, out.String(), "Added habit: Read (daily, learning)")

	habits, err := ctx.Tracker.ListHabits(context.Background(), mustCaller(t, ctx))
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, constants.DifficultyMedium, habits[0].Difficulty)

	err = (&HabitAddCmd{Name: "Nameless category", Cadence: "daily", Difficulty: "easy"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	ctx.User = ""
	err = (&HabitAddCmd{Name: "Run", Cadence: "daily", Category: "health", Difficulty: "easy"}).Run(ctx)
	assert.Error(t, err)
}

func TestNewHabitFormBuilds(t *testing.T) {
	in := models.NewHabit{Cadence: constants.CadenceWeekly, Difficulty: constants.DifficultyHard}
	assert.NotNil(t, newHabitForm(&in, []string{"health", "learning"}))
	assert.Error(t, notEmpty("habit name")("  "))
	assert.NoError(t, notEmpty("habit name")("Read"))
}

func TestHabitToggleCmd(t *testing.T) {
	ctx, out := setupContext(t)
	addHabit(t, ctx, "Read", "daily", "learning")

	toggle(t, ctx, "read", "2024-01-15")
	assert.Contains(t, out.String(), "Read completed on 2024-01-15")

	out.Reset()
	toggle(t, ctx, "Read", "2024-01-15")
	assert.Contains(t, out.String(), "Read no longer completed on 2024-01-15")

	err := (&HabitToggleCmd{Habit: "Meditate", Date: "2024-01-15"}).Run(ctx)
	assert.ErrorContains(t, err, `habit "Meditate" not found`)

	err = (&HabitToggleCmd{Habit: "Read", Date: "15/01/2024"}).Run(ctx)
	assert.ErrorContains(t, err, "invalid date format")
}

func TestHabitToggleCmdCadenceViolation(t *testing.T) {
	ctx, _ := setupContext(t)
	addHabit(t, ctx, "Review finances", "weekly", "money")
	toggle(t, ctx, "Review finances", "2024-01-01")

	err := (&HabitToggleCmd{Habit: "Review finances", Date: "2024-01-03"}).Run(ctx)
	violation, ok := apperrors.AsCadenceViolation(err)
	require.True(t, ok, "expected cadence violation, got %v", err)
	assert.Equal(t, "2024-01-08", violation.NextEligibleDate())
}

func TestResolveHabitAmbiguous(t *testing.T) {
	ctx, _ := setupContext(t)
	addHabit(t, ctx, "Stretch", "daily", "health")
	addHabit(t, ctx, "stretch", "weekly", "health")

	_, _, err := ctx.ResolveHabit("STRETCH")
	assert.ErrorContains(t, err, "2 habits are named")
}

func TestHabitLastCmd(t *testing.T) {
	ctx, out := setupContext(t)
	addHabit(t, ctx, "Read", "daily", "learning")

	require.NoError(t, (&HabitLastCmd{Habit: "Read"}).Run(ctx))
	assert.Contains(t, out.String(), "Read has not been completed yet.")

	toggle(t, ctx, "Read", "2024-01-14")
	toggle(t, ctx, "Read", "2024-01-15")
	out.Reset()
	require.NoError(t, (&HabitLastCmd{Habit: "Read"}).Run(ctx))
	assert.Contains(t, out.String(), "Read was last completed on 2024-01-15")
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupContext(t)
	addHabit(t, ctx, "Read", "daily", "learning")
	addHabit(t, ctx, "Run", "daily", "health")
	toggle(t, ctx, "Read", "2024-01-15")
	out.Reset()

	require.NoError(t, (&HabitListCmd{Category: "all", Difficulty: "all", Status: "completed", Date: "2024-01-15"}).Run(ctx))
	assert.Contains(t, out.String(), "Read")
	assert.NotContains(t, out.String(), "Run")
	assert.Contains(t, out.String(), "1 days")

	out.Reset()
	require.NoError(t, (&HabitListCmd{Category: "fitness", Difficulty: "all", Status: "all", Date: "2024-01-15"}).Run(ctx))
	assert.Contains(t, out.String(), "No habits found.")

	err := (&HabitListCmd{Category: "all", Difficulty: "extreme", Status: "all", Date: "2024-01-15"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDashboardCmd(t *testing.T) {
	ctx, out := setupContext(t)

	require.NoError(t, (&DashboardCmd{Date: "2024-01-15"}).Run(ctx))
	assert.Contains(t, out.String(), "No habits yet")

	addHabit(t, ctx, "Read", "daily", "learning")
	addHabit(t, ctx, "Run", "daily", "health")
	toggle(t, ctx, "Read", "2024-01-14")
	toggle(t, ctx, "Read", "2024-01-15")
	out.Reset()

	require.NoError(t, (&DashboardCmd{Date: "2024-01-15"}).Run(ctx))
	report := out.String()
	assert.Contains(t, report, "Dashboard for 2024-01-15")
	assert.Contains(t, report, "50%  (1 of 2 habits completed)")
	assert.Contains(t, report, "2 days")
}

func TestProgressBar(t *testing.T) {
	for _, rate := range []int{0, 33, 50, 100} {
		bar := progressBar(rate)
		filled := strings.Count(bar, "█")
		assert.Equal(t, rate*progressWidth/100, filled, "rate %d", rate)
		assert.Equal(t, progressWidth, filled+strings.Count(bar, "░"), "rate %d", rate)
	}
}

func TestStreaksCmd(t *testing.T) {
	ctx, out := setupContext(t)

	require.NoError(t, (&StreaksCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No completion records found.")

	addHabit(t, ctx, "Read", "daily", "learning")
	addHabit(t, ctx, "Run", "daily", "health")
	toggle(t, ctx, "Read", "2024-01-14")
	toggle(t, ctx, "Run", "2024-01-15")
	out.Reset()

	require.NoError(t, (&StreaksCmd{}).Run(ctx))
	report := out.String()
	assert.Less(t, strings.Index(report, "2024-01-15"), strings.Index(report, "2024-01-14"), "newest first")

	out.Reset()
	require.NoError(t, (&StreaksCmd{Habit: "Run"}).Run(ctx))
	assert.NotContains(t, out.String(), "2024-01-14")
}

func TestCalendarCmd(t *testing.T) {
	ctx, out := setupContext(t)
	addHabit(t, ctx, "Read", "daily", "learning")
	toggle(t, ctx, "Read", "2024-02-29")
	out.Reset()

	require.NoError(t, (&CalendarCmd{Month: "2024-02"}).Run(ctx))
	report := out.String()
	assert.Contains(t, report, "February 2024")
	assert.Contains(t, report, "29")
	assert.NotContains(t, report, "30")

	assert.ErrorIs(t, (&CalendarCmd{Month: "2024-13"}).Run(ctx), apperrors.ErrInvalidInput)
}

func TestCategoryCmds(t *testing.T) {
	ctx, out := setupContext(t)

	require.NoError(t, (&CategoryListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No categories found.")

	require.NoError(t, (&CategoryAddCmd{Name: "Health", Color: "#22C55E"}).Run(ctx))
	assert.ErrorIs(t, (&CategoryAddCmd{Name: "health", Color: "#22C55E"}).Run(ctx), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, (&CategoryAddCmd{Name: "Focus", Color: "green"}).Run(ctx), apperrors.ErrInvalidInput)

	out.Reset()
	require.NoError(t, (&CategoryListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Health")
	assert.Contains(t, out.String(), "#22C55E")
}

func mustCaller(t *testing.T, ctx *cli.Context) auth.Identity {
	t.Helper()
	caller, err := ctx.Caller()
	require.NoError(t, err)
	return caller
}
