package system

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
)

// migrator is implemented by the database-backed stores
type migrator interface {
	Migrate() (int, error)
	PendingMigrations() (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("migrate is not supported for %s", ctx.Store.GetConfigPath())
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if pending == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
		return nil
	}

	ctx.PerformAutomaticBackup()

	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	ctx.Printf("Successfully applied %d migration(s).\n", count)
	return nil
}
