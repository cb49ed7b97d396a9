package completion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateFormat, s)
	require.NoError(t, err)
	return d
}

func ptr(t time.Time) *time.Time { return &t }

func TestNextEligibleDate(t *testing.T) {
	tests := []struct {
		name    string
		cadence constants.Cadence
		last    string
		want    string
	}{
		{name: "daily", cadence: constants.CadenceDaily, last: "2024-01-01", want: "2024-01-02"},
		{name: "daily across year", cadence: constants.CadenceDaily, last: "2023-12-31", want: "2024-01-01"},
		{name: "weekly", cadence: constants.CadenceWeekly, last: "2024-01-01", want: "2024-01-08"},
		{name: "monthly", cadence: constants.CadenceMonthly, last: "2024-01-15", want: "2024-02-15"},
		{name: "monthly clamps to leap day", cadence: constants.CadenceMonthly, last: "2024-01-31", want: "2024-02-29"},
		{name: "monthly clamps to feb 28", cadence: constants.CadenceMonthly, last: "2023-01-31", want: "2023-02-28"},
		{name: "monthly clamps to 30 day month", cadence: constants.CadenceMonthly, last: "2024-03-31", want: "2024-04-30"},
		{name: "monthly across year", cadence: constants.CadenceMonthly, last: "2024-12-31", want: "2025-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextEligibleDate(tt.cadence, date(t, tt.last))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(constants.DateFormat))
		})
	}

	_, err := NextEligibleDate("yearly", date(t, "2024-01-01"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCanCompleteOn_NoPriorCompletion(t *testing.T) {
	for _, c := range []constants.Cadence{constants.CadenceDaily, constants.CadenceWeekly, constants.CadenceMonthly} {
		assert.NoError(t, CanCompleteOn(c, nil, date(t, "2024-01-01")), "cadence %s", c)
	}
}

func TestCanCompleteOn_Daily(t *testing.T) {
	last := date(t, "2024-03-10")

	for _, target := range []string{"2024-03-08", "2024-03-09", "2024-03-10"} {
		err := CanCompleteOn(constants.CadenceDaily, ptr(last), date(t, target))
		cv, ok := apperrors.AsCadenceViolation(err)
		require.True(t, ok, "target %s should be rejected", target)
		assert.Equal(t, "2024-03-11", cv.NextEligibleDate())
	}

	for _, target := range []string{"2024-03-11", "2024-03-12", "2024-04-01"} {
		assert.NoError(t, CanCompleteOn(constants.CadenceDaily, ptr(last), date(t, target)), "target %s", target)
	}
}

func TestCanCompleteOn_Weekly(t *testing.T) {
	last := date(t, "2024-01-01")

	err := CanCompleteOn(constants.CadenceWeekly, ptr(last), date(t, "2024-01-07"))
	cv, ok := apperrors.AsCadenceViolation(err)
	require.True(t, ok)
	assert.Equal(t, "2024-01-08", cv.NextEligibleDate())
	assert.Contains(t, err.Error(), "2024-01-08")

	assert.NoError(t, CanCompleteOn(constants.CadenceWeekly, ptr(last), date(t, "2024-01-08")))
}

func TestCanCompleteOn_MonthlyClamped(t *testing.T) {
	leap := date(t, "2024-01-31")
	assert.Error(t, CanCompleteOn(constants.CadenceMonthly, ptr(leap), date(t, "2024-02-28")))
	assert.NoError(t, CanCompleteOn(constants.CadenceMonthly, ptr(leap), date(t, "2024-02-29")))
	assert.NoError(t, CanCompleteOn(constants.CadenceMonthly, ptr(leap), date(t, "2024-03-01")))

	common := date(t, "2023-01-31")
	assert.Error(t, CanCompleteOn(constants.CadenceMonthly, ptr(common), date(t, "2023-02-27")))
	assert.NoError(t, CanCompleteOn(constants.CadenceMonthly, ptr(common), date(t, "2023-02-28")))
}

func TestCanCompleteOn_BackfillCheckedAgainstMostRecent(t *testing.T) {
	// A missed day well before the latest completion is still gated by it.
	last := date(t, "2024-05-20")
	err := CanCompleteOn(constants.CadenceDaily, ptr(last), date(t, "2024-05-01"))
	_, ok := apperrors.AsCadenceViolation(err)
	assert.True(t, ok)
}

func records(dates ...string) []models.CompletionRecord {
	out := make([]models.CompletionRecord, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.CompletionRecord{HabitID: "h1", UserID: "u1", Date: d, Completed: true})
	}
	return out
}

func TestDeriveStreak(t *testing.T) {
	tests := []struct {
		name    string
		cadence constants.Cadence
		records []models.CompletionRecord
		today   string
		want    int
	}{
		{
			name:    "empty history",
			cadence: constants.CadenceDaily,
			records: nil,
			today:   "2024-01-10",
			want:    0,
		},
		{
			name:    "three consecutive days",
			cadence: constants.CadenceDaily,
			records: records("2024-01-10", "2024-01-09", "2024-01-08"),
			today:   "2024-01-10",
			want:    3,
		},
		{
			name:    "unordered input",
			cadence: constants.CadenceDaily,
			records: records("2024-01-08", "2024-01-10", "2024-01-09"),
			today:   "2024-01-10",
			want:    3,
		},
		{
			name:    "stops at two day gap",
			cadence: constants.CadenceDaily,
			records: records("2024-01-10", "2024-01-09", "2024-01-06"),
			today:   "2024-01-10",
			want:    2,
		},
		{
			name:    "yesterday still counts",
			cadence: constants.CadenceDaily,
			records: records("2024-01-09", "2024-01-08"),
			today:   "2024-01-10",
			want:    2,
		},
		{
			name:    "lapsed daily streak",
			cadence: constants.CadenceDaily,
			records: records("2024-01-08", "2024-01-07"),
			today:   "2024-01-10",
			want:    0,
		},
		{
			name:    "weekly within seven days",
			cadence: constants.CadenceWeekly,
			records: records("2024-01-15", "2024-01-08", "2024-01-01"),
			today:   "2024-01-20",
			want:    3,
		},
		{
			name:    "weekly lapsed after eight days",
			cadence: constants.CadenceWeekly,
			records: records("2024-01-01"),
			today:   "2024-01-09",
			want:    0,
		},
		{
			name:    "monthly uses thirty day approximation",
			cadence: constants.CadenceMonthly,
			records: records("2024-03-01", "2024-01-31"),
			today:   "2024-03-15",
			want:    2,
		},
		{
			name:    "monthly gap of thirty one days breaks",
			cadence: constants.CadenceMonthly,
			records: records("2024-03-30", "2024-02-29", "2024-01-29"),
			today:   "2024-04-01",
			want:    2,
		},
		{
			name:    "uncompleted records ignored",
			cadence: constants.CadenceDaily,
			records: append(records("2024-01-10", "2024-01-08"),
				models.CompletionRecord{HabitID: "h1", UserID: "u1", Date: "2024-01-09", Completed: false}),
			today: "2024-01-10",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStreak(tt.cadence, tt.records, date(t, tt.today))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTarget(t *testing.T) {
	_, err := ParseTarget("2024-02-30")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = ParseTarget("02/01/2024")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	d, err := ParseTarget("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())
}

func TestStreakUnitAndGap(t *testing.T) {
	assert.Equal(t, "days", StreakUnit(constants.CadenceDaily))
	assert.Equal(t, "weeks", StreakUnit(constants.CadenceWeekly))
	assert.Equal(t, "months", StreakUnit(constants.CadenceMonthly))
	assert.Equal(t, 1, GapLimitDays(constants.CadenceDaily))
	assert.Equal(t, 7, GapLimitDays(constants.CadenceWeekly))
	assert.Equal(t, 30, GapLimitDays(constants.CadenceMonthly))
}
