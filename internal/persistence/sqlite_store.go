package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// SQLiteStore implements FrontierStore and CheckpointStore on top of a
// SQLite database.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements the interfaces.
var _ FrontierStore = (*SQLiteStore)(nil)

var _ CheckpointStore = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS frontier (
			id INTEGER PRIMARY KEY CHECK (id = 0),
			last_completed_batch_id INTEGER NOT NULL,
			last_completed_row INTEGER NOT NULL,
			total_rows_processed INTEGER NOT NULL,
			step_states TEXT NOT NULL
		);`,
	)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			batch_id INTEGER PRIMARY KEY,
			start_row INTEGER NOT NULL,
			end_row INTEGER NOT NULL,
			rows BLOB
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveFrontier(f *api.Frontier) error {
	states, err := json.Marshal(f.StepStates)
	if err != nil {
		return err
	}

	// The frontier is a singleton row; INSERT OR REPLACE keeps save
	// idempotent.
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO frontier (id, last_completed_batch_id, last_completed_row, total_rows_processed, step_states)
		VALUES (0, ?, ?, ?, ?)`,
		f.LastCompletedBatchID,
		f.LastCompletedRow,
		f.TotalRowsProcessed,
		string(states),
	)
	return err
}

func (s *SQLiteStore) LoadFrontier() (*api.Frontier, error) {
	row := s.db.QueryRow(`
		SELECT last_completed_batch_id, last_completed_row, total_rows_processed, step_states
		FROM frontier
		WHERE id = 0`,
	)

	var f api.Frontier
	var states string

	if err := row.Scan(&f.LastCompletedBatchID, &f.LastCompletedRow, &f.TotalRowsProcessed, &states); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFrontierNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(states), &f.StepStates); err != nil {
		return nil, err
	}
	if f.StepStates == nil {
		f.StepStates = make(map[string]int64)
	}

	return &f, nil
}

func (s *SQLiteStore) ResetFrontier() error {
	_, err := s.db.Exec(`DELETE FROM frontier`)
	return err
}

func (s *SQLiteStore) SaveCheckpoint(b *api.Batch) error {
	rows, err := EncodeRows(b.Rows)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO checkpoints (batch_id, start_row, end_row, rows)
		VALUES (?, ?, ?, ?)`,
		b.ID,
		b.StartRow,
		b.EndRow,
		rows,
	)
	return err
}

func (s *SQLiteStore) LoadCheckpoint(batchID int64) (*api.Batch, error) {
	row := s.db.QueryRow(`
		SELECT batch_id, start_row, end_row, rows
		FROM checkpoints
		WHERE batch_id = ?`,
		batchID,
	)

	var b api.Batch
	var rows []byte

	if err := row.Scan(&b.ID, &b.StartRow, &b.EndRow, &rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}

	decoded, err := DecodeRows(rows)
	if err != nil {
		return nil, err
	}
	b.Rows = decoded

	return &b, nil
}

func (s *SQLiteStore) CheckpointIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT batch_id FROM checkpoints ORDER BY batch_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *SQLiteStore) ResetCheckpoints() error {
	_, err := s.db.Exec(`DELETE FROM checkpoints`)
	return err
}
