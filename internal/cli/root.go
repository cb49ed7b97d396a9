package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Service

	// User is the id commands act as
	User string
	// Timezone decides which calendar day "today" is
	Timezone string
	// AuthSecret is the raw --auth-secret value; see Secret
	AuthSecret string

	// Base carries cancellation from main; nil means context.Background
	Base context.Context
	Out  io.Writer
}

// Ctx is the context commands pass to blocking calls
func (c *Context) Ctx() context.Context {
	if c.Base == nil {
		return context.Background()
	}
	return c.Base
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Caller is the identity CLI commands act for
func (c *Context) Caller() (auth.Identity, error) {
	user := strings.TrimSpace(c.User)
	if user == "" {
		return auth.Anonymous, fmt.Errorf("no user selected, pass --user")
	}
	return auth.User(user), nil
}

// Today is the current calendar date in the configured timezone
func (c *Context) Today() (time.Time, error) {
	now, err := utils.NowInTimezone(c.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	return utils.DateOf(now), nil
}

// Day resolves an optional YYYY-MM-DD flag, defaulting to today
func (c *Context) Day(date string) (time.Time, error) {
	if date == "" {
		return c.Today()
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
	}
	return day, nil
}

// Secret resolves the token signing secret
func (c *Context) Secret() ([]byte, error) {
	return config.ResolveAuthSecret(c.AuthSecret)
}

// BackupManager returns a backup manager for the SQLite database in use
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite storage")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Ctx()); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveHabit finds one of the caller's habits by id or case-insensitive name
func (c *Context) ResolveHabit(ref string) (string, string, error) {
	caller, err := c.Caller()
	if err != nil {
		return "", "", err
	}
	habits, err := c.Tracker.ListHabits(c.Ctx(), caller)
	if err != nil {
		return "", "", err
	}
	var match []int
	for i, h := range habits {
		if h.ID == ref {
			return h.ID, h.Name, nil
		}
		if strings.EqualFold(h.Name, ref) {
			match = append(match, i)
		}
	}
	switch len(match) {
	case 0:
		return "", "", fmt.Errorf("habit %q not found", ref)
	case 1:
		h := habits[match[0]]
		return h.ID, h.Name, nil
	default:
		return "", "", fmt.Errorf("%d habits are named %q, use the habit id instead", len(match), ref)
	}
}
