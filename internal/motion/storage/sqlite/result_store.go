package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l6compare"
	"github.com/banshee-data/motion.report/internal/motion/session"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

// ResultStore provides persistence for completed session results.
type ResultStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewResultStore creates a ResultStore. A nil clock uses wall time.
func NewResultStore(db *sql.DB, clock timeutil.Clock) *ResultStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ResultStore{db: db, clock: clock}
}

// InsertResult persists r. An empty SessionID is generated and a zero
// CompletedAt is stamped with the store clock.
func (s *ResultStore) InsertResult(r *session.Result) error {
	if r.SessionID == "" {
		r.SessionID = uuid.New().String()
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = s.clock.Now()
	}
	joints, err := json.Marshal(r.Joints)
	if err != nil {
		return fmt.Errorf("encode joint reports: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO motion_session_results (
				session_id, reference_id, practice_id, overall_score, score_spread,
				compared_frame_count, joints_json, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID, r.ReferenceID, r.PracticeID, r.OverallScore, r.ScoreSpread,
			r.ComparedFrameCount, string(joints), r.CompletedAt.UnixNano(),
		)
		return err
	})
}

const resultColumns = `session_id, reference_id, practice_id, overall_score, score_spread,
		       compared_frame_count, joints_json, completed_at`

// ListByReference returns every result scored against referenceID,
// newest first.
func (s *ResultStore) ListByReference(referenceID string) ([]*session.Result, error) {
	rows, err := s.db.Query(`
		SELECT `+resultColumns+`
		FROM motion_session_results
		WHERE reference_id = ?
		ORDER BY completed_at DESC`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*session.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a single result by session ID.
func (s *ResultStore) Get(sessionID string) (*session.Result, error) {
	row := s.db.QueryRow(`
		SELECT `+resultColumns+`
		FROM motion_session_results
		WHERE session_id = ?`, sessionID)
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("result %s: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row scanner) (*session.Result, error) {
	var r session.Result
	var joints string
	var completed int64
	err := row.Scan(
		&r.SessionID, &r.ReferenceID, &r.PracticeID, &r.OverallScore, &r.ScoreSpread,
		&r.ComparedFrameCount, &joints, &completed,
	)
	if err != nil {
		return nil, fmt.Errorf("scan result row: %w", err)
	}
	r.CompletedAt = time.Unix(0, completed).UTC()
	r.Joints = make(map[l2angles.Joint]l6compare.JointReport)
	if err := json.Unmarshal([]byte(joints), &r.Joints); err != nil {
		return nil, fmt.Errorf("decode joint reports for %s: %w", r.SessionID, err)
	}
	return &r, nil
}
