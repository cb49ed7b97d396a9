package constants

// Cadence is the required repetition interval of a habit
type Cadence string

// Difficulty is the self-assessed effort of a habit
type Difficulty string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"

	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// Day-equivalent gap limits used for streak derivation.
	// Weekly and monthly are approximations, not calendar-aligned.
	DailyGapDays   = 1
	WeeklyGapDays  = 7
	MonthlyGapDays = 30
)
