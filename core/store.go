package core

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/evilsocket/islazy/fs"
	"github.com/evilsocket/islazy/log"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evilsocket/daqview/models"
)

const readingColumns = "CAST(id AS INTEGER) AS id, recording_time, data_1, data_2"

// past this many minutes datetime('now', ...) leaves the range sqlite
// supports and returns NULL, so larger windows are not filtered at all.
const maxWindowMinutes = 1e9

// Source is what the dashboard needs from the database.
type Source interface {
	Fetch(ctx context.Context, kind Kind, window float64) ([]models.Reading, error)
	Dump(ctx context.Context, kind Kind) ([]models.Reading, error)
	Clear(ctx context.Context, kind Kind) error
}

// Store owns the single database connection of the application.
type Store struct {
	sync.Mutex

	conf Database
	db   *gorm.DB
}

func newBackOff(retries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	return backoff.WithMaxRetries(b, uint64(retries))
}

func Open(conf Database) (*Store, error) {
	if !fs.Exists(conf.Path) {
		return nil, newError(ErrConnection, "", errors.Errorf("database %s not found", conf.Path))
	}

	db, err := gorm.Open(sqlite.Open(conf.dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, newError(ErrConnection, "", errors.Wrapf(err, "opening %s", conf.Path))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, newError(ErrConnection, "", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout())
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Debug("ping %s: %v", conf.Path, err)
			return err
		}
		return nil
	}, newBackOff(conf.Retries))
	if err != nil {
		sqlDB.Close()
		return nil, newError(ErrConnection, "", errors.Wrapf(err, "connecting to %s", conf.Path))
	}

	log.Debug("connected to %s", conf.Path)

	return &Store{conf: conf, db: db}, nil
}

func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// windowModifier builds the datetime() modifier for a trailing window.
func windowModifier(window float64) string {
	return "-" + strconv.FormatFloat(window, 'f', -1, 64) + " minutes"
}

func selectReadings(tx *gorm.DB, kind Kind) *gorm.DB {
	return tx.Table(kind.Table()).
		Select(readingColumns).
		Order("recording_time ASC, id ASC")
}

func windowQuery(tx *gorm.DB, kind Kind, window float64) *gorm.DB {
	if window >= maxWindowMinutes {
		return selectReadings(tx, kind)
	}
	// the window is relative to the database clock, not ours
	return selectReadings(tx, kind).
		Where("recording_time >= datetime('now', ?)", windowModifier(window))
}

func toReadings(kind Kind, rows []models.Row) ([]models.Reading, error) {
	readings := make([]models.Reading, 0, len(rows))
	for _, row := range rows {
		reading, err := row.Reading()
		if err != nil {
			return nil, newError(ErrMalformedRow, kind.String(),
				errors.Wrapf(err, "row %d has recording_time '%s'", row.ID, row.RecordingTime))
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func (s *Store) find(ctx context.Context, kind Kind, query *gorm.DB) ([]models.Reading, error) {
	if !kind.Valid() {
		return nil, validationError("invalid sensor kind %d", int(kind))
	}

	var rows []models.Row

	s.Lock()
	err := query.Find(&rows).Error
	s.Unlock()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Wrap(err, ctxErr.Error())
		}
		return nil, newError(ErrQuery, kind.String(), errors.Wrapf(err, "reading %s", kind.Table()))
	}

	return toReadings(kind, rows)
}

// Fetch returns the readings of kind recorded in the last window minutes,
// oldest first.
func (s *Store) Fetch(ctx context.Context, kind Kind, window float64) ([]models.Reading, error) {
	if !kind.Valid() {
		return nil, validationError("invalid sensor kind %d", int(kind))
	} else if math.IsNaN(window) {
		return nil, validationError("window is not a number")
	} else if window <= 0 {
		// nothing can be recorded in an empty window
		return make([]models.Reading, 0), nil
	}

	started := time.Now()
	readings, err := s.find(ctx, kind, windowQuery(s.db.WithContext(ctx), kind, window))
	if err == nil {
		log.Debug("fetched %d %s readings in %s", len(readings), kind, time.Since(started))
		if n := len(readings); n > 0 {
			log.Debug("latest %s reading: %s", kind, readings[n-1])
		}
	}
	return readings, err
}

// Dump returns every reading of kind, oldest first.
func (s *Store) Dump(ctx context.Context, kind Kind) ([]models.Reading, error) {
	return s.find(ctx, kind, selectReadings(s.db.WithContext(ctx), kind))
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// Clear deletes every reading of kind.
func (s *Store) Clear(ctx context.Context, kind Kind) error {
	if !kind.Valid() {
		return validationError("invalid sensor kind %d", int(kind))
	}

	s.Lock()
	defer s.Unlock()

	var lastErr error
	var deleted int64
	// only lock contention is worth retrying
	_ = backoff.Retry(func() error {
		res := s.db.WithContext(ctx).Exec("DELETE FROM " + kind.Table())
		lastErr, deleted = res.Error, res.RowsAffected
		if isBusy(lastErr) && ctx.Err() == nil {
			log.Debug("%s is locked, retrying: %v", kind.Table(), lastErr)
			return lastErr
		}
		return nil
	}, newBackOff(s.conf.Retries))

	if lastErr != nil {
		return newError(ErrQuery, kind.String(), errors.Wrapf(lastErr, "clearing %s", kind.Table()))
	}

	log.Info("deleted %d rows from %s", deleted, kind.Table())
	return nil
}
