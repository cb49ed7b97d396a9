package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// setupTestDB creates an initialized habit database holding one habit.
func setupTestDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "habitual.db")

	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Init(ctx))
	addHabit(t, store, "Read")
	require.NoError(t, store.Close())
	return dbPath
}

func addHabit(t *testing.T, store *sqlite.Store, name string) {
	t.Helper()
	require.NoError(t, store.CreateHabit(context.Background(), models.Habit{
		ID:         uuid.New().String(),
		UserID:     "alice",
		Name:       name,
		Cadence:    constants.CadenceDaily,
		Category:   "learning",
		Difficulty: constants.DifficultyEasy,
		CreatedAt:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}))
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n))
	return n
}

// steppingClock advances one minute per call so every backup gets its own name.
func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), constants.BackupDirName), filepath.Dir(path))
	assert.Equal(t, 1, countHabits(t, path))
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "nope.db"))
	_, err := mgr.Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database does not exist")
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(steppingClock(start)))

	for i := 0; i < constants.MaxBackups+5; i++ {
		_, err := mgr.Create(context.Background())
		require.NoError(t, err, "backup #%d", i)
	}

	backups, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, constants.MaxBackups)

	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].Timestamp.After(backups[i].Timestamp), "backups not sorted newest first")
	}
	// the five oldest were evicted
	assert.Equal(t, start.Add(5*time.Minute), backups[len(backups)-1].Timestamp)
}

func TestWithRetention(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath,
		WithRetention(2),
		WithClock(steppingClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))),
	)
	for i := 0; i < 4; i++ {
		_, err := mgr.Create(context.Background())
		require.NoError(t, err)
	}
	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestListSkipsForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
	assert.NotNil(t, backups)

	require.NoError(t, os.MkdirAll(mgr.Dir(), 0o700))
	for _, name := range []string{"notes.txt", "habitual-latest.db", "other-20240301-1000.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600))
	}
	_, err = mgr.Create(context.Background())
	require.NoError(t, err)

	backups, err = mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.NotZero(t, backups[0].Size)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"habitual-20240301-1005.db", true, time.Date(2024, 3, 1, 10, 5, 0, 0, time.Local)},
		{"habitual-20240301-100512.db", true, time.Date(2024, 3, 1, 10, 5, 12, 0, time.Local)},
		{"habitual-20240301-100512-3.db", true, time.Date(2024, 3, 1, 10, 5, 12, 0, time.Local)},
		{"habitual-20240301-10051.db", false, time.Time{}},
		{"habitual-20241341-1005.db", false, time.Time{}},
		{"habitual-20240301-1005.sqlite", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestUniqueNamesWithinOneMinute(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2024, 3, 1, 10, 0, 30, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return fixed }))

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		path, err := mgr.Create(context.Background())
		require.NoError(t, err)
		name := filepath.Base(path)
		assert.False(t, seen[name], "duplicate backup filename %s", name)
		seen[name] = true
	}
	assert.True(t, seen["habitual-20240301-1000.db"])
	assert.True(t, seen["habitual-20240301-100030.db"])
	assert.True(t, seen["habitual-20240301-100030-1.db"])
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(steppingClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))))

	backupPath, err := mgr.Create(ctx)
	require.NoError(t, err)

	store := sqlite.NewStore(dbPath)
	require.NoError(t, store.Load(ctx))
	addHabit(t, store, "Run")
	require.NoError(t, store.Close())
	require.Equal(t, 2, countHabits(t, dbPath))

	saved, err := mgr.Restore(ctx, backupPath)
	require.NoError(t, err)
	assert.Equal(t, 1, countHabits(t, dbPath))

	// the safety copy holds the pre-restore state
	require.NotEmpty(t, saved)
	assert.Equal(t, 2, countHabits(t, saved))

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, backups, 2)

	// the restored file is a loadable store
	store = sqlite.NewStore(dbPath)
	require.NoError(t, store.Load(ctx))
	habits, err := store.ListHabitsForUser(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, habits, 1)
	assert.Equal(t, "Read", habits[0].Name)
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	require.NoError(t, os.MkdirAll(mgr.Dir(), 0o700))

	garbage := filepath.Join(mgr.Dir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("not a database"), 0o600))

	foreign := filepath.Join(mgr.Dir(), "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE tasks (id TEXT PRIMARY KEY)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(mgr.Dir(), "missing.db"), "does not exist"},
		{"garbage", garbage, "corrupted or invalid"},
		{"foreign schema", foreign, "not a habitual database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.Restore(ctx, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Equal(t, 1, countHabits(t, dbPath))
}
