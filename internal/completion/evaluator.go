// Package completion decides when a habit may be completed again and derives
// streaks from a habit's completion history. Everything here is pure date
// arithmetic on calendar days; persistence lives in the storage package.
package completion

import (
	"sort"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// NextEligibleDate returns the earliest date on which a habit last completed on
// `last` may be completed again. Monthly cadence clamps to the end of shorter
// months, so Jan 31 is followed by Feb 29 (or Feb 28), never by early March.
func NextEligibleDate(cadence constants.Cadence, last time.Time) (time.Time, error) {
	last = utils.DateOf(last)
	switch cadence {
	case constants.CadenceDaily:
		return last.AddDate(0, 0, 1), nil
	case constants.CadenceWeekly:
		return last.AddDate(0, 0, 7), nil
	case constants.CadenceMonthly:
		return addMonthsClamped(last, 1), nil
	default:
		return time.Time{}, apperrors.Invalidf("unknown cadence %q", cadence)
	}
}

// addMonthsClamped adds n calendar months, pinning the day to the last day of
// the target month when the source day does not exist there.
func addMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// CanCompleteOn reports whether a new completion on target is allowed given the
// most recent completed date. mostRecent is nil when the habit was never completed.
//
// Eligibility is checked against the single most recent completion, not the
// target's neighbours, so back-filling an older gap is rejected unless the
// back-filled date is itself past the next eligible date.
func CanCompleteOn(cadence constants.Cadence, mostRecent *time.Time, target time.Time) error {
	if mostRecent == nil {
		return nil
	}

	next, err := NextEligibleDate(cadence, *mostRecent)
	if err != nil {
		return err
	}

	if utils.DateOf(target).Before(next) {
		return &apperrors.CadenceViolationError{Cadence: cadence, NextEligible: next}
	}
	return nil
}

// GapLimitDays is the cadence interval in day-equivalents used for streaks.
func GapLimitDays(cadence constants.Cadence) int {
	switch cadence {
	case constants.CadenceWeekly:
		return constants.WeeklyGapDays
	case constants.CadenceMonthly:
		return constants.MonthlyGapDays
	default:
		return constants.DailyGapDays
	}
}

// StreakUnit is the display unit for a streak of the given cadence.
func StreakUnit(cadence constants.Cadence) string {
	switch cadence {
	case constants.CadenceWeekly:
		return "weeks"
	case constants.CadenceMonthly:
		return "months"
	default:
		return "days"
	}
}

// DeriveStreak counts consecutive on-cadence completions ending at the most
// recent one. The streak is 0 once the most recent completion is older than the
// cadence gap limit relative to today. Weekly and monthly use fixed 7 and 30
// day limits, so this is a display approximation, not a calendar-aligned streak.
//
// Records that are not completed, or whose date does not parse, are ignored.
func DeriveStreak(cadence constants.Cadence, records []models.CompletionRecord, today time.Time) int {
	dates := completedDates(records)
	if len(dates) == 0 {
		return 0
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	limit := GapLimitDays(cadence)
	if utils.DaysBetween(dates[0], today) > limit {
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		if utils.DaysBetween(dates[i], dates[i-1]) > limit {
			break
		}
		streak++
	}
	return streak
}

func completedDates(records []models.CompletionRecord) []time.Time {
	seen := make(map[string]bool, len(records))
	dates := make([]time.Time, 0, len(records))
	for _, r := range records {
		if !r.Completed || seen[r.Date] {
			continue
		}
		d, err := utils.ParseDate(r.Date)
		if err != nil {
			continue
		}
		seen[r.Date] = true
		dates = append(dates, d)
	}
	return dates
}

// ParseTarget parses a YYYY-MM-DD toggle date, wrapping failures as invalid input.
func ParseTarget(date string) (time.Time, error) {
	t, err := utils.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.Invalidf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}
