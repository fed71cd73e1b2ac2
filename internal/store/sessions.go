package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/model"
)

// UpsertSession stores a session and replaces its results.
func (s *Store) UpsertSession(ctx context.Context, session *model.TrainingSession) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var finished sql.NullString
	if session.FinishedAt != nil {
		finished = sql.NullString{String: formatTime(*session.FinishedAt), Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, finished_at, range_set_id, scenario_id, question_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			range_set_id = excluded.range_set_id,
			scenario_id = excluded.scenario_id,
			question_count = excluded.question_count`,
		session.ID,
		formatTime(session.StartedAt),
		finished,
		session.RangeSetID,
		session.ScenarioID,
		session.QuestionCount,
	)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM question_results WHERE session_id = ?`, session.ID); err != nil {
		return err
	}

	if len(session.Results) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO question_results (session_id, seq, question_id, hand, user_answer, is_correct, correct_action, scenario_id, range_set_id, answered_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, r := range session.Results {
			if _, err = stmt.ExecContext(ctx,
				session.ID, i, r.QuestionID, r.Hand, string(r.UserAnswer), r.IsCorrect,
				string(r.CorrectAction), r.ScenarioID, r.RangeSetID, formatTime(r.Timestamp),
			); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ErrSessionNotFound is returned when deleting a session id that is not stored.
var ErrSessionNotFound = errors.New("session not found")

// DeleteSession removes a session and its results.
func (s *Store) DeleteSession(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM question_results WHERE session_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("failed to delete %q: %w", id, ErrSessionNotFound)
		return err
	}
	return tx.Commit()
}

// ListSessions returns every session with its results, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]model.TrainingSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, range_set_id, scenario_id, question_count
		 FROM sessions
		 ORDER BY started_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.TrainingSession
	index := map[string]int{}
	for rows.Next() {
		var sess model.TrainingSession
		var started string
		var finished sql.NullString
		if err := rows.Scan(&sess.ID, &started, &finished, &sess.RangeSetID, &sess.ScenarioID, &sess.QuestionCount); err != nil {
			return nil, err
		}
		if sess.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			t, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			sess.FinishedAt = &t
		}
		sess.Results = []model.QuestionResult{}
		index[sess.ID] = len(sessions)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachResults(ctx, sessions, index); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) attachResults(ctx context.Context, sessions []model.TrainingSession, index map[string]int) error {
	if len(sessions) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, question_id, hand, user_answer, is_correct, correct_action, scenario_id, range_set_id, answered_at
		 FROM question_results
		 ORDER BY session_id, seq`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var sessionID, answer, correct, answered string
		var r model.QuestionResult
		if err := rows.Scan(&sessionID, &r.QuestionID, &r.Hand, &answer, &r.IsCorrect, &correct, &r.ScenarioID, &r.RangeSetID, &answered); err != nil {
			return err
		}
		idx, ok := index[sessionID]
		if !ok {
			continue
		}
		r.UserAnswer = model.Action(answer)
		r.CorrectAction = model.Action(correct)
		if r.Timestamp, err = parseTime(answered); err != nil {
			return err
		}
		sessions[idx].Results = append(sessions[idx].Results, r)
	}
	return rows.Err()
}

// LoadSessions returns all sessions, or an empty list when they cannot be read.
func (s *Store) LoadSessions(ctx context.Context) []model.TrainingSession {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		s.log.Warn("failed to load sessions", zap.Error(err))
		return []model.TrainingSession{}
	}
	if sessions == nil {
		return []model.TrainingSession{}
	}
	return sessions
}

// SaveSessions upserts every session. Failures are logged and swallowed.
func (s *Store) SaveSessions(ctx context.Context, sessions []model.TrainingSession) {
	for i := range sessions {
		if err := s.UpsertSession(ctx, &sessions[i]); err != nil {
			s.log.Error("failed to save session", zap.String("session", sessions[i].ID), zap.Error(err))
		}
	}
}
