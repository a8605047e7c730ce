// Package storage persists track samples. The SQLite store is the production
// backend; MemoryStore backs demos and tests.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkrutov/heattrack/internal/track"
)

//go:embed schema.sql
var schemaSQL string

// SqliteStore is an append-only sample store on a single SQLite file.
// Connections are opened lazily: a WAL write connection that also installs
// the schema, and a separate read-only connection. AUTOINCREMENT keeps ids
// monotonic and never reused, even across a Clear.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store for the database at dbPath. No connection
// is opened until the first operation.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		// Schema must exist before a read-only connection can be opened.
		if _, err := s.getWriteDB(); err != nil {
			s.readDBErr = err
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

const insertSampleSQL = `
INSERT INTO samples (latitude, longitude, timestamp, accuracy)
VALUES (?, ?, ?, ?)`

// Append inserts one sample and returns its assigned id.
func (s *SqliteStore) Append(ctx context.Context, sample track.Sample) (id int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSampleSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var accuracy sql.NullFloat64
	if sample.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *sample.Accuracy, Valid: true}
	}

	result, err := stmt.ExecContext(ctx, sample.Latitude, sample.Longitude, sample.Timestamp.UTC(), accuracy)
	if err != nil {
		err = fmt.Errorf("inserting sample: %w", err)
		return
	}

	id, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting sample ID: %w", err)
	}
	return
}

const selectSamplesSQL = `
SELECT
    id,
    latitude,
    longitude,
    timestamp,
    accuracy
FROM samples
ORDER BY id`

// All returns every stored sample in insertion order.
func (s *SqliteStore) All(ctx context.Context) (samples []track.Sample, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSamplesSQL)
	if err != nil {
		err = fmt.Errorf("querying samples: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sample track.Sample
		var accuracy sql.NullFloat64
		if err = rows.Scan(&sample.ID, &sample.Latitude, &sample.Longitude, &sample.Timestamp, &accuracy); err != nil {
			err = fmt.Errorf("scanning sample: %w", err)
			return
		}
		if accuracy.Valid {
			sample.Accuracy = &accuracy.Float64
		}
		sample.Timestamp = sample.Timestamp.UTC()
		samples = append(samples, sample)
	}
	err = rows.Err()
	return
}

// Clear removes every sample and returns the number removed. Ids are not
// reset; the next Append continues the sequence.
func (s *SqliteStore) Clear(ctx context.Context) (removed int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	result, err := db.ExecContext(ctx, `DELETE FROM samples`)
	if err != nil {
		err = fmt.Errorf("clearing samples: %w", err)
		return
	}

	removed, err = result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("counting removed samples: %w", err)
	}
	return
}

// Close closes both database connections.
func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
