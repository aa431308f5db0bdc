package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/swingscope/internal/pose"
)

// Session is a stored pose sequence: the detector output for one video.
type Session struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	FPS        float64    `json:"fps"`
	Model      pose.Model `json:"model"`
	PoseIndex  int        `json:"poseIndex"`
	FrameCount int        `json:"frameCount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// SessionRepository provides CRUD operations for sessions and their frames.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session together with its pose frames in one transaction.
// FrameCount is set from frames.
func (r *SessionRepository) Create(sess *Session, frames map[int][]pose.Pose) error {
	sess.CreatedAt = time.Now()
	sess.FrameCount = len(frames)

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, name, fps, model, pose_index, frame_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.FPS, string(sess.Model), sess.PoseIndex, sess.FrameCount, sess.CreatedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO pose_frames (session_id, frame, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for frame, poses := range frames {
		data, err := json.Marshal(poses)
		if err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", frame, err)
		}
		if _, err := stmt.Exec(sess.ID, frame, string(data)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var model string

	err := r.db.QueryRow(
		`SELECT id, name, fps, model, pose_index, frame_count, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.FPS, &model, &sess.PoseIndex, &sess.FrameCount, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Model = pose.Model(model)
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, name, fps, model, pose_index, frame_count, created_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var model string
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.FPS, &model, &sess.PoseIndex, &sess.FrameCount, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sess.Model = pose.Model(model)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// LoadSequence rebuilds the pose sequence stored for a session.
func (r *SessionRepository) LoadSequence(id string) (*pose.Sequence, error) {
	sess, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT frame, data FROM pose_frames WHERE session_id = ? ORDER BY frame`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seq := &pose.Sequence{
		Frames:    make(map[int][]pose.Pose, sess.FrameCount),
		FPS:       sess.FPS,
		Model:     sess.Model,
		PoseIndex: sess.PoseIndex,
	}
	for rows.Next() {
		var frame int
		var data string
		if err := rows.Scan(&frame, &data); err != nil {
			return nil, err
		}
		var poses []pose.Pose
		if err := json.Unmarshal([]byte(data), &poses); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", frame, err)
		}
		seq.Frames[frame] = poses
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seq, nil
}

// Delete removes a session. Frames and analyses go with it.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
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
