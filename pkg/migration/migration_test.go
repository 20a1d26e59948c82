package migration

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type broken struct{}

func (broken) Up(*gorm.DB) error   { return errors.New("boom") }
func (broken) Down(*gorm.DB) error { return nil }

func newTestRunner(t *testing.T, set ...registeredMigration) (*Runner, *bytes.Buffer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var out bytes.Buffer
	return &Runner{db: db, out: &out, set: set}, &out
}

func TestRunAppliesPendingOnce(t *testing.T) {
	r, out := newTestRunner(t, registeredMigration{name: "20260101000000_create_widgets", m: createWidgets{}})

	require.NoError(t, r.Run())
	assert.True(t, r.db.Migrator().HasTable(&widget{}))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	out.Reset()
	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")
}

func TestRollbackReversesLastBatch(t *testing.T) {
	r, _ := newTestRunner(t, registeredMigration{name: "20260101000000_create_widgets", m: createWidgets{}})

	require.NoError(t, r.Run())
	require.NoError(t, r.Rollback())
	assert.False(t, r.db.Migrator().HasTable(&widget{}))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000000_create_widgets"}, pending)
}

func TestRunStopsOnFailureWithoutRecording(t *testing.T) {
	r, _ := newTestRunner(t, registeredMigration{name: "20260101000000_broken", m: broken{}})

	err := r.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestStatusListsEveryMigration(t *testing.T) {
	r, out := newTestRunner(t,
		registeredMigration{name: "20260101000000_create_widgets", m: createWidgets{}},
	)
	require.NoError(t, r.Run())
	r.set = append(r.set, registeredMigration{name: "20260101000001_later", m: broken{}})

	out.Reset()
	require.NoError(t, r.Status())
	assert.Contains(t, out.String(), "20260101000000_create_widgets")
	assert.Contains(t, out.String(), "Ran")
	assert.Contains(t, out.String(), "Pending")
}

func TestRunWithoutMigrations(t *testing.T) {
	r, _ := newTestRunner(t)
	assert.ErrorIs(t, r.Run(), ErrNoMigrations)
}
