package constants

import "time"

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	AuthKeyringUser    = "auth-secret"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat identifies a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"

	// Server defaults
	DefaultListenAddr      = ":8080"
	DefaultTokenTTL        = 30 * 24 * time.Hour
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultTimezone        = "Local"

	// Environment variables
	EnvDBConnection = "HABITUAL_DB_CONNECTION"
	EnvAuthSecret   = "HABITUAL_AUTH_SECRET"

	// Filter sentinel shared by the list view filters
	FilterAll = "all"

	// Status filter values
	StatusCompleted = "completed"
	StatusPending   = "pending"

	// MemoryStoreScheme selects the in-memory store instead of a database
	MemoryStoreScheme = "memory://"
)
