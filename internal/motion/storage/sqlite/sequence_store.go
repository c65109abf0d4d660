package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

// SequenceInfo is the library listing entry of a saved sequence.
type SequenceInfo struct {
	SequenceID    string `json:"sequence_id"`
	Name          string `json:"name"`
	FrameCount    int    `json:"frame_count"`
	DurationNanos int64  `json:"duration_ns"`
	LongRecording bool   `json:"long_recording"`
	CreatedAt     int64  `json:"created_at"`
}

// SequenceStore is the saved reference library.
type SequenceStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewSequenceStore creates a SequenceStore. A nil clock uses wall time.
func NewSequenceStore(db *sql.DB, clock timeutil.Clock) *SequenceStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &SequenceStore{db: db, clock: clock}
}

// Save stores seq, replacing any sequence with the same ID.
func (s *SequenceStore) Save(seq *l5sequence.Sequence) error {
	payload := l5sequence.Marshal(seq)
	long := 0
	if seq.LongRecording() {
		long = 1
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO motion_sequences (
				sequence_id, name, frame_count, duration_ns, long_recording, payload, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(sequence_id) DO UPDATE SET
				name = excluded.name,
				frame_count = excluded.frame_count,
				duration_ns = excluded.duration_ns,
				long_recording = excluded.long_recording,
				payload = excluded.payload`,
			seq.ID(), seq.Name(), seq.Len(), int64(seq.Duration()), long, payload, s.clock.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("save sequence %s: %w", seq.ID(), err)
		}
		return nil
	})
}

// Load decodes the sequence with the given ID.
func (s *SequenceStore) Load(sequenceID string) (*l5sequence.Sequence, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM motion_sequences WHERE sequence_id = ?`, sequenceID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sequence %s: %w", sequenceID, ErrNotFound)
		}
		return nil, fmt.Errorf("load sequence %s: %w", sequenceID, err)
	}
	seq, err := l5sequence.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", sequenceID, err)
	}
	return seq, nil
}

// List returns every saved sequence, newest first.
func (s *SequenceStore) List() ([]SequenceInfo, error) {
	rows, err := s.db.Query(`
		SELECT sequence_id, name, frame_count, duration_ns, long_recording, created_at
		FROM motion_sequences
		ORDER BY created_at DESC, sequence_id`)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var out []SequenceInfo
	for rows.Next() {
		var info SequenceInfo
		var long int
		if err := rows.Scan(&info.SequenceID, &info.Name, &info.FrameCount, &info.DurationNanos, &long, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sequence row: %w", err)
		}
		info.LongRecording = long != 0
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a saved sequence.
func (s *SequenceStore) Delete(sequenceID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM motion_sequences WHERE sequence_id = ?`, sequenceID)
		if err != nil {
			return fmt.Errorf("delete sequence: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("sequence %s: %w", sequenceID, ErrNotFound)
		}
		return nil
	})
}
