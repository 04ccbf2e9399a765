package core

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evilsocket/daqview/models"
)

// createTestDatabase lays out the schema the collector writes.
func createTestDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "the_database.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	for _, kind := range Kinds() {
		require.NoError(t, db.Exec("CREATE TABLE "+kind.Table()+
			" (id REAL, recording_time TEXT, data_1 REAL NOT NULL, data_2 REAL)").Error)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return path
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(Database{Path: createTestDatabase(t), TimeoutSecs: 5, Retries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// insert adds a reading recorded minutesAgo minutes before the database clock.
func insert(t *testing.T, s *Store, kind Kind, id float64, minutesAgo float64, data1 float64, data2 interface{}) {
	t.Helper()

	err := s.db.Exec("INSERT INTO "+kind.Table()+" (id, recording_time, data_1, data_2) VALUES (?, datetime('now', ?), ?, ?)",
		id, windowModifier(minutesAgo), data1, data2).Error
	require.NoError(t, err)
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(Database{Path: filepath.Join(t.TempDir(), "nope.db"), TimeoutSecs: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestWindowModifier(t *testing.T) {
	assert.Equal(t, "-5 minutes", windowModifier(5))
	assert.Equal(t, "-0.5 minutes", windowModifier(0.5))
	assert.Equal(t, "-0 minutes", windowModifier(0))
}

func TestWindowQueryIsScopedToItsTable(t *testing.T) {
	store := newTestStore(t)

	for _, kind := range Kinds() {
		var rows []models.Row
		stmt := windowQuery(store.db.Session(&gorm.Session{DryRun: true}), kind, 5).Find(&rows).Statement
		sql := stmt.SQL.String()

		assert.Contains(t, sql, kind.Table())
		assert.Contains(t, sql, "ORDER BY recording_time ASC")
		for _, other := range Kinds() {
			if other != kind {
				assert.NotContains(t, sql, other.Table())
			}
		}
	}
}

func TestFetchOnlyReturnsItsOwnTable(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 1, 1.0, nil)
	insert(t, store, GPS, 2, 1, 2.0, nil)
	insert(t, store, GPS, 3, 1, 2.5, nil)
	insert(t, store, MKR, 4, 1, 3.0, nil)

	readings, err := store.Fetch(context.Background(), GPS, 5)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	for _, r := range readings {
		assert.Contains(t, []int64{2, 3}, r.ID)
	}
}

func TestFetchWindow(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 10, 1.0, 1.0)
	insert(t, store, ADC, 2, 1, 2.0, 2.0)

	readings, err := store.Fetch(context.Background(), ADC, 5)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, int64(2), readings[0].ID)

	readings, err = store.Fetch(context.Background(), ADC, 15)
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestFetchZeroWindowIsEmpty(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 1, 1.0, nil)
	insert(t, store, ADC, 2, 0.5, 1.0, nil)
	insert(t, store, ADC, 3, 0, 1.0, nil)

	readings, err := store.Fetch(context.Background(), ADC, 0)
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)

	readings, err = store.Fetch(context.Background(), ADC, 1)
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestFetchUnboundedWindow(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, GPS, 1, 600, 1.0, nil)
	insert(t, store, GPS, 2, 1, 2.0, nil)

	for _, window := range []float64{maxWindowMinutes, 1e300, math.Inf(1)} {
		readings, err := store.Fetch(context.Background(), GPS, window)
		require.NoError(t, err, "%v", window)
		assert.Len(t, readings, 2, "%v", window)
	}
}

func TestUnboundedWindowQueryHasNoTimeFilter(t *testing.T) {
	store := newTestStore(t)

	var rows []models.Row
	sql := windowQuery(store.db.Session(&gorm.Session{DryRun: true}), ADC, math.Inf(1)).Find(&rows).Statement.SQL.String()
	assert.NotContains(t, sql, "datetime(")
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, ADC.Table())
}

func TestFetchNaNWindow(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, MKR, 1, 1, 1.0, nil)

	_, err := store.Fetch(context.Background(), MKR, math.NaN())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFetchNullSecondaryIsZero(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, MKR, 1, 1, 4.2, nil)

	readings, err := store.Fetch(context.Background(), MKR, 5)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 4.2, readings[0].Primary)
	assert.Equal(t, 0.0, readings[0].Secondary)
}

func TestFetchIsChronological(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 1, 1.0, nil)
	insert(t, store, ADC, 2, 3, 2.0, nil)
	insert(t, store, ADC, 3, 2, 3.0, nil)

	readings, err := store.Fetch(context.Background(), ADC, 5)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, int64(2), readings[0].ID)
	assert.Equal(t, int64(3), readings[1].ID)
	assert.Equal(t, int64(1), readings[2].ID)
	for i := 1; i < len(readings); i++ {
		assert.False(t, readings[i].Timestamp.Before(readings[i-1].Timestamp))
	}
}

func TestFetchFloatingPointIDs(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, GPS, 1234567, 1, 1.0, 2.0)

	readings, err := store.Fetch(context.Background(), GPS, 5)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, int64(1234567), readings[0].ID)
}

func TestFetchMalformedTimestamp(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.db.Exec("INSERT INTO adc_data (id, recording_time, data_1) VALUES (7, 'garbage', 1.0)").Error)

	_, err := store.Fetch(context.Background(), ADC, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), "row 7")
}

func TestFetchQueryFailure(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.db.Exec("DROP TABLE mkr_data").Error)

	_, err := store.Fetch(context.Background(), MKR, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))

	var typed *Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, "mkr", typed.Sensor)
}

func TestFetchCancelled(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, ADC, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
}

func TestFetchInvalidKind(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Fetch(context.Background(), Kind(42), 5)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDumpIgnoresWindow(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 600, 1.0, nil)
	insert(t, store, ADC, 2, 1, 2.0, nil)

	readings, err := store.Dump(context.Background(), ADC)
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	insert(t, store, ADC, 1, 1, 1.0, nil)
	insert(t, store, ADC, 2, 100, 1.0, nil)
	insert(t, store, GPS, 3, 1, 1.0, nil)

	require.NoError(t, store.Clear(context.Background(), ADC))

	for _, window := range []float64{0, 5, 1000} {
		readings, err := store.Fetch(context.Background(), ADC, window)
		require.NoError(t, err)
		assert.Empty(t, readings)
	}

	readings, err := store.Fetch(context.Background(), GPS, 5)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestClearMissingTable(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.db.Exec("DROP TABLE gps_data").Error)

	err := store.Clear(context.Background(), GPS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, isBusy(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrLocked}, "clearing")))
	assert.False(t, isBusy(sqlite3.Error{Code: sqlite3.ErrError}))
	assert.False(t, isBusy(errors.New("nope")))
	assert.False(t, isBusy(nil))
}
