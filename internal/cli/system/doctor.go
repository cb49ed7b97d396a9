package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type DoctorCmd struct{}

// checkResult is the outcome of one diagnostic
type checkResult int

const (
	checkOK checkResult = iota
	checkFailed
	checkWarning
	checkSkipped
)

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, result checkResult, detail error) {
		switch result {
		case checkOK:
			ctx.Printf("✓ %s: OK\n", name)
		case checkFailed:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", detail)
			hasError = true
		case checkWarning:
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", detail)
		case checkSkipped:
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", name, detail)
		}
	}
	run := func(name string, err error) {
		if err != nil {
			report(name, checkFailed, err)
			return
		}
		report(name, checkOK, nil)
	}

	dbErr := ctx.Store.Load(ctx.Ctx())
	run("Database reachable", dbErr)
	dbReachable := dbErr == nil
	unreachable := fmt.Errorf("database not reachable")

	m, isMigrator := ctx.Store.(migrator)
	switch {
	case !dbReachable:
		report("Migrations complete", checkSkipped, unreachable)
	case !isMigrator:
		report("Migrations complete", checkSkipped, fmt.Errorf("in-memory store"))
	default:
		run("Migrations complete", checkMigrationsComplete(m))
	}

	if mgr, err := ctx.BackupManager(); err != nil {
		report("Backups present", checkSkipped, err)
	} else if backups, err := mgr.List(); err != nil {
		report("Backups present", checkWarning, fmt.Errorf("failed to list backups: %w", err))
	} else if len(backups) == 0 {
		report("Backups present", checkWarning, fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName))
	} else {
		report("Backups present", checkOK, nil)
	}

	run("Clock/timezone", checkClockTimezone(ctx.Timezone))

	if dbReachable {
		run("Completion integrity", checkCompletionIntegrity(ctx))
	} else {
		report("Completion integrity", checkSkipped, unreachable)
	}

	if keyring.IsAvailable() {
		report("OS keyring", checkOK, nil)
	} else {
		report("OS keyring", checkWarning, keyring.ErrKeyringUnavailable)
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkMigrationsComplete(m migrator) error {
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run '%s migrate'", pending, constants.AppName)
	}
	return nil
}

func checkClockTimezone(timezone string) error {
	if !utils.ValidateTimezone(timezone) {
		return fmt.Errorf("invalid timezone %q", timezone)
	}
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkCompletionIntegrity verifies the caller's records: valid dates, owned
// habits and at most one record per habit and day.
func checkCompletionIntegrity(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	habits, err := ctx.Tracker.ListHabits(ctx.Ctx(), caller)
	if err != nil {
		return err
	}
	records, err := ctx.Tracker.ListAllStreakRecords(ctx.Ctx(), caller)
	if err != nil {
		return err
	}

	owned := make(map[string]bool, len(habits))
	for _, h := range habits {
		owned[h.ID] = true
	}

	seen := make(map[models.CompletionKey]bool, len(records))
	for _, r := range records {
		if _, err := utils.ParseDate(r.Date); err != nil {
			return fmt.Errorf("record %s has invalid date %q", r.ID, r.Date)
		}
		if !owned[r.HabitID] {
			return fmt.Errorf("record %s references unknown habit %s", r.ID, r.HabitID)
		}
		key := r.Key()
		if seen[key] {
			return fmt.Errorf("duplicate records for habit %s on %s", r.HabitID, r.Date)
		}
		seen[key] = true
	}
	return nil
}
