package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/backups"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/tracker"
)

type CLI struct {
	Version    kong.VersionFlag
	Config     string          `help:"SQLite database path, PostgreSQL connection string, 'keyring' or 'memory://'. For PostgreSQL, credentials must NOT be embedded in the connection string. Use HABITUAL_DB_CONNECTION, .pgpass, or the OS keyring instead." default:"${default_config}"`
	ConfigFile kong.ConfigFlag `help:"YAML file with default flag values." type:"path"`
	User       string          `help:"User id to act as." default:"${default_user}" env:"HABITUAL_USER"`
	Timezone   string          `help:"IANA timezone that decides which day is today." default:"${default_timezone}" env:"HABITUAL_TIMEZONE"`
	AuthSecret string          `help:"Secret bearer tokens are signed with (default: OS keyring)." env:"HABITUAL_AUTH_SECRET"`
	Debug      bool            `help:"Write debug logs to stderr."`

	Serve     system.ServeCmd    `cmd:"" help:"Run the HTTP API."`
	Init      system.InitCmd     `cmd:"" help:"Initialize habitual storage."`
	Migrate   system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Habit     habits.HabitCmd    `cmd:"" help:"Manage habits and completions."`
	Dashboard habits.DashboardCmd `cmd:"" help:"Show today's progress and streaks." default:"1"`
	Streaks   habits.StreaksCmd  `cmd:"" help:"List completion records."`
	Calendar  habits.CalendarCmd `cmd:"" help:"Show completions for a month."`
	Category  habits.CategoryCmd `cmd:"" help:"Manage categories."`
	Token     system.TokenCmd    `cmd:"" help:"Issue a bearer token for the API."`
	Keyring   struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
}

// defaultUser is the OS account name, the natural owner of a local database
func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func newParser(app *CLI, configFiles ...string) (*kong.Kong, error) {
	return kong.New(app,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, a calendar and a JSON API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.YAMLLoader, configFiles...),
		kong.Vars{
			"version":          constants.Version,
			"default_config":   constants.DefaultConfigPath,
			"default_user":     defaultUser(),
			"default_timezone": constants.DefaultTimezone,
			"listen_addr":      constants.DefaultListenAddr,
			"token_ttl":        constants.DefaultTokenTTL.String(),
		},
	)
}

// needsStore is false for keyring commands, which must work before any store is reachable
func needsStore(command string) bool {
	return !strings.HasPrefix(command, "keyring")
}

// preload reports whether the store is loaded up front; init creates it and doctor reports on it
func preload(command string) bool {
	return command != "init" && command != "doctor"
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		apperrors.Fatal(err)
	}

	var app CLI
	parser, err := newParser(&app, "~/.config/habitual/config.yaml")
	if err != nil {
		apperrors.Fatal(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	command := kctx.Command()
	if err := run(kctx, &app, command); err != nil {
		apperrors.Fatal(err)
	}
}

func run(kctx *kong.Context, app *CLI, command string) error {
	target := config.StoreTarget{Value: constants.DefaultConfigPath}
	if needsStore(command) {
		var err error
		if target, err = config.ResolveStoreTarget(app.Config); err != nil {
			return err
		}
	}

	configDir, err := config.ConfigDir(target)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		Debug:     app.Debug,
		ConfigDir: configDir,
		Stderr:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx := &cli.Context{
		User:       app.User,
		Timezone:   app.Timezone,
		AuthSecret: app.AuthSecret,
		Base:       context.Background(),
	}

	if needsStore(command) {
		store, err := config.NewStore(target)
		if err != nil {
			return err
		}
		defer store.Close()

		if preload(command) {
			if err := store.Load(appCtx.Ctx()); err != nil {
				return err
			}
		}
		appCtx.Store = store
		appCtx.Tracker = tracker.New(store)
	}

	logger.Debug("Running command", "command", command, "user", app.User)
	return kctx.Run(appCtx)
}
