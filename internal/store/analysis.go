package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/swing"
)

// Analysis is a stored analysis run over a session.
type Analysis struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"sessionId"`
	CreatedAt  time.Time          `json:"createdAt"`
	Result     *swing.Result      `json:"result"`
	Handedness *handedness.Result `json:"handedness,omitempty"`
}

// AnalysisRepository stores analyses and their swings.
type AnalysisRepository struct {
	db *sql.DB
}

// Analyses returns the analysis repository for this store.
func (s *Store) Analyses() *AnalysisRepository {
	return &AnalysisRepository{db: s.db}
}

// Save inserts an analysis and all of its swings in one transaction.
func (r *AnalysisRepository) Save(a *Analysis) error {
	if a.Result == nil {
		return errors.New("analysis has no result")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	summary, err := json.Marshal(a.Result.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	metadata, err := json.Marshal(a.Result.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	frames, err := json.Marshal(a.Result.Frames)
	if err != nil {
		return fmt.Errorf("failed to encode frame data: %w", err)
	}
	var hand sql.NullString
	if a.Handedness != nil {
		data, err := json.Marshal(a.Handedness)
		if err != nil {
			return fmt.Errorf("failed to encode handedness: %w", err)
		}
		hand = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO analyses (id, session_id, created_at, frames_analyzed, video_duration, summary, metadata, handedness, frame_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.CreatedAt, a.Result.Metadata.FramesAnalyzed, a.Result.Metadata.VideoDuration,
		string(summary), string(metadata), hand, string(frames),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO swings (id, analysis_id, frame, timestamp, swing_type, dominant_side, velocity_kmh, confidence, clip_start_frame, clip_end_frame, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sw := range a.Result.Swings {
		data, err := json.Marshal(sw)
		if err != nil {
			return fmt.Errorf("failed to encode swing %s: %w", sw.ID, err)
		}
		_, err = stmt.Exec(sw.ID, a.ID, sw.Frame, sw.Timestamp, string(sw.SwingType), string(sw.DominantSide),
			sw.VelocityKmh, sw.Confidence, sw.ClipStartFrame, sw.ClipEndFrame, string(data))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a full analysis, including frame data and swings.
func (r *AnalysisRepository) GetByID(id string) (*Analysis, error) {
	a := &Analysis{Result: &swing.Result{}}
	var summary, metadata, frames string
	var hand sql.NullString

	err := r.db.QueryRow(
		`SELECT id, session_id, created_at, summary, metadata, handedness, frame_data
		 FROM analyses WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.SessionID, &a.CreatedAt, &summary, &metadata, &hand, &frames)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := decodeHeader(a, summary, metadata, hand); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(frames), &a.Result.Frames); err != nil {
		return nil, fmt.Errorf("failed to decode frame data: %w", err)
	}

	swings, err := r.Swings(id)
	if err != nil {
		return nil, err
	}
	a.Result.Swings = swings
	return a, nil
}

// ListBySession returns the analyses of a session, newest first. Only the
// summary, metadata and handedness are loaded.
func (r *AnalysisRepository) ListBySession(sessionID string) ([]*Analysis, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, created_at, summary, metadata, handedness
		 FROM analyses WHERE session_id = ? ORDER BY created_at DESC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Analysis
	for rows.Next() {
		a := &Analysis{Result: &swing.Result{}}
		var summary, metadata string
		var hand sql.NullString
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CreatedAt, &summary, &metadata, &hand); err != nil {
			return nil, err
		}
		if err := decodeHeader(a, summary, metadata, hand); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Swings returns the swings of an analysis ordered by contact frame.
func (r *AnalysisRepository) Swings(analysisID string) ([]swing.DetectedSwing, error) {
	rows, err := r.db.Query(
		`SELECT data FROM swings WHERE analysis_id = ? ORDER BY frame, id`,
		analysisID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	swings := []swing.DetectedSwing{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var sw swing.DetectedSwing
		if err := json.Unmarshal([]byte(data), &sw); err != nil {
			return nil, fmt.Errorf("failed to decode swing: %w", err)
		}
		swings = append(swings, sw)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return swings, nil
}

// Delete removes an analysis and its swings.
func (r *AnalysisRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func decodeHeader(a *Analysis, summary, metadata string, hand sql.NullString) error {
	if err := json.Unmarshal([]byte(summary), &a.Result.Summary); err != nil {
		return fmt.Errorf("failed to decode summary: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &a.Result.Metadata); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	if hand.Valid {
		a.Handedness = &handedness.Result{}
		if err := json.Unmarshal([]byte(hand.String), a.Handedness); err != nil {
			return fmt.Errorf("failed to decode handedness: %w", err)
		}
	}
	return nil
}
