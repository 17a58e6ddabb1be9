// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wordpulse/wordpulse/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps SQLite access for progress, session, and word-strength data.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer; SQLite locks the whole file anyway.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			words_studied INTEGER NOT NULL,
			words_learned INTEGER NOT NULL,
			words_reviewed INTEGER NOT NULL,
			deep_memory_words INTEGER NOT NULL,
			minutes_studied INTEGER NOT NULL,
			sessions INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			streak_days INTEGER NOT NULL,
			daily_goal INTEGER NOT NULL,
			goal_achieved INTEGER NOT NULL,
			PRIMARY KEY (user_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			cards_correct INTEGER NOT NULL,
			cards_incorrect INTEGER NOT NULL,
			cards_total INTEGER NOT NULL,
			avg_response_sec REAL NOT NULL,
			difficulty TEXT NOT NULL,
			session_type TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_words (
			session_id INTEGER NOT NULL,
			word_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (session_id, word_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS word_strengths (
			user_id TEXT NOT NULL,
			word_id TEXT NOT NULL,
			strength REAL NOT NULL,
			confidence REAL NOT NULL,
			last_review TEXT,
			next_review TEXT NOT NULL,
			review_count INTEGER NOT NULL,
			consecutive_correct INTEGER NOT NULL,
			consecutive_incorrect INTEGER NOT NULL,
			difficulty_modifier REAL NOT NULL,
			interval_days INTEGER NOT NULL,
			ease REAL NOT NULL,
			lapses INTEGER NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (user_id, word_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_ended ON sessions(user_id, ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_word_strengths_next ON word_strengths(user_id, next_review);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const (
	wordKindLearned  = "learned"
	wordKindReviewed = "reviewed"
)

type progressRow struct {
	UserID          string  `db:"user_id"`
	Date            string  `db:"date"`
	WordsStudied    int     `db:"words_studied"`
	WordsLearned    int     `db:"words_learned"`
	WordsReviewed   int     `db:"words_reviewed"`
	DeepMemoryWords int     `db:"deep_memory_words"`
	MinutesStudied  int     `db:"minutes_studied"`
	Sessions        int     `db:"sessions"`
	Accuracy        float64 `db:"accuracy"`
	StreakDays      int     `db:"streak_days"`
	DailyGoal       int     `db:"daily_goal"`
	GoalAchieved    bool    `db:"goal_achieved"`
}

func (r progressRow) entry() (model.ProgressEntry, error) {
	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		return model.ProgressEntry{}, err
	}
	return model.ProgressEntry{
		UserID:          r.UserID,
		Date:            date,
		WordsStudied:    r.WordsStudied,
		WordsLearned:    r.WordsLearned,
		WordsReviewed:   r.WordsReviewed,
		DeepMemoryWords: r.DeepMemoryWords,
		MinutesStudied:  r.MinutesStudied,
		Sessions:        r.Sessions,
		Accuracy:        r.Accuracy,
		StreakDays:      r.StreakDays,
		DailyGoal:       r.DailyGoal,
		GoalAchieved:    r.GoalAchieved,
	}, nil
}

// UpsertProgress inserts or replaces the user's snapshot for the entry's
// calendar day. The date key is the UTC day, so repeated writes within one
// day update in place.
func (s *Store) UpsertProgress(ctx context.Context, p model.ProgressEntry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (user_id, date, words_studied, words_learned, words_reviewed,
			deep_memory_words, minutes_studied, sessions, accuracy, streak_days, daily_goal, goal_achieved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			words_studied = excluded.words_studied,
			words_learned = excluded.words_learned,
			words_reviewed = excluded.words_reviewed,
			deep_memory_words = excluded.deep_memory_words,
			minutes_studied = excluded.minutes_studied,
			sessions = excluded.sessions,
			accuracy = excluded.accuracy,
			streak_days = excluded.streak_days,
			daily_goal = excluded.daily_goal,
			goal_achieved = excluded.goal_achieved`,
		p.UserID,
		p.Day().Format(time.RFC3339Nano),
		p.WordsStudied,
		p.WordsLearned,
		p.WordsReviewed,
		p.DeepMemoryWords,
		p.MinutesStudied,
		p.Sessions,
		p.Accuracy,
		p.StreakDays,
		p.DailyGoal,
		p.GoalAchieved,
	)
	return err
}

// ListProgress returns the user's daily snapshots in chronological order.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]model.ProgressEntry, error) {
	var rows []progressRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT user_id, date, words_studied, words_learned, words_reviewed,
			deep_memory_words, minutes_studied, sessions, accuracy, streak_days, daily_goal, goal_achieved
		 FROM progress WHERE user_id = ? ORDER BY date ASC`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProgressEntry, 0, len(rows))
	for _, r := range rows {
		p, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("store: corrupt progress row for %s: %w", r.UserID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type sessionRow struct {
	ID             int64   `db:"id"`
	UserID         string  `db:"user_id"`
	StartedAt      string  `db:"started_at"`
	EndedAt        string  `db:"ended_at"`
	CardsCorrect   int     `db:"cards_correct"`
	CardsIncorrect int     `db:"cards_incorrect"`
	CardsTotal     int     `db:"cards_total"`
	AvgResponseSec float64 `db:"avg_response_sec"`
	Difficulty     string  `db:"difficulty"`
	SessionType    string  `db:"session_type"`
}

func (r sessionRow) entry() (model.SessionEntry, error) {
	started, err := time.Parse(time.RFC3339Nano, r.StartedAt)
	if err != nil {
		return model.SessionEntry{}, err
	}
	ended, err := time.Parse(time.RFC3339Nano, r.EndedAt)
	if err != nil {
		return model.SessionEntry{}, err
	}
	return model.SessionEntry{
		ID:             r.ID,
		UserID:         r.UserID,
		StartedAt:      started,
		EndedAt:        ended,
		CardsCorrect:   r.CardsCorrect,
		CardsIncorrect: r.CardsIncorrect,
		CardsTotal:     r.CardsTotal,
		AvgResponseSec: r.AvgResponseSec,
		Difficulty:     model.Difficulty(r.Difficulty),
		Type:           model.SessionType(r.SessionType),
	}, nil
}

// InsertSession stores a completed session and its word lists.
func (s *Store) InsertSession(ctx context.Context, entry model.SessionEntry) (int64, error) {
	if err := entry.Validate(); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (user_id, started_at, ended_at, cards_correct, cards_incorrect,
			cards_total, avg_response_sec, difficulty, session_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.EndedAt.UTC().Format(time.RFC3339Nano),
		entry.CardsCorrect,
		entry.CardsIncorrect,
		entry.CardsTotal,
		entry.AvgResponseSec,
		string(entry.Difficulty),
		string(entry.Type),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(entry.LearnedWords)+len(entry.ReviewedWords) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO session_words (session_id, word_id, kind) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, w := range entry.LearnedWords {
			if _, err = stmt.ExecContext(ctx, id, w, wordKindLearned); err != nil {
				return 0, err
			}
		}
		for _, w := range entry.ReviewedWords {
			if _, err = stmt.ExecContext(ctx, id, w, wordKindReviewed); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns the user's sessions in chronological order, word
// lists included.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]model.SessionEntry, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, started_at, ended_at, cards_correct, cards_incorrect,
			cards_total, avg_response_sec, difficulty, session_type
		 FROM sessions WHERE user_id = ? ORDER BY ended_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.SessionEntry, 0, len(rows))
	for _, r := range rows {
		entry, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("store: corrupt session row %d: %w", r.ID, err)
		}
		entry.LearnedWords, entry.ReviewedWords, err = s.sessionWords(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) sessionWords(ctx context.Context, sessionID int64) (learned, reviewed []string, err error) {
	var rows []struct {
		WordID string `db:"word_id"`
		Kind   string `db:"kind"`
	}
	err = s.db.SelectContext(ctx, &rows,
		`SELECT word_id, kind FROM session_words WHERE session_id = ? ORDER BY word_id ASC`, sessionID)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range rows {
		switch r.Kind {
		case wordKindLearned:
			learned = append(learned, r.WordID)
		case wordKindReviewed:
			reviewed = append(reviewed, r.WordID)
		}
	}
	return learned, reviewed, nil
}

type strengthRow struct {
	UserID               string  `db:"user_id"`
	WordID               string  `db:"word_id"`
	Strength             float64 `db:"strength"`
	Confidence           float64 `db:"confidence"`
	LastReview           *string `db:"last_review"`
	NextReview           string  `db:"next_review"`
	ReviewCount          int     `db:"review_count"`
	ConsecutiveCorrect   int     `db:"consecutive_correct"`
	ConsecutiveIncorrect int     `db:"consecutive_incorrect"`
	DifficultyModifier   float64 `db:"difficulty_modifier"`
	IntervalDays         int     `db:"interval_days"`
	Ease                 float64 `db:"ease"`
	Lapses               int     `db:"lapses"`
	Status               string  `db:"status"`
}

func (r strengthRow) record() (model.WordStrength, error) {
	next, err := time.Parse(time.RFC3339Nano, r.NextReview)
	if err != nil {
		return model.WordStrength{}, err
	}
	w := model.WordStrength{
		UserID:               r.UserID,
		WordID:               r.WordID,
		Strength:             r.Strength,
		Confidence:           r.Confidence,
		NextReview:           next,
		ReviewCount:          r.ReviewCount,
		ConsecutiveCorrect:   r.ConsecutiveCorrect,
		ConsecutiveIncorrect: r.ConsecutiveIncorrect,
		DifficultyModifier:   r.DifficultyModifier,
		IntervalDays:         r.IntervalDays,
		Ease:                 r.Ease,
		Lapses:               r.Lapses,
		Status:               model.Status(r.Status),
	}
	if r.LastReview != nil {
		last, err := time.Parse(time.RFC3339Nano, *r.LastReview)
		if err != nil {
			return model.WordStrength{}, err
		}
		w.LastReview = &last
	}
	return w, nil
}

// PutWordStrength inserts or replaces the per-word memory state.
func (s *Store) PutWordStrength(ctx context.Context, w model.WordStrength) error {
	if err := w.Validate(); err != nil {
		return err
	}
	var lastReview *string
	if w.LastReview != nil {
		v := w.LastReview.UTC().Format(time.RFC3339Nano)
		lastReview = &v
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO word_strengths (user_id, word_id, strength, confidence, last_review, next_review,
			review_count, consecutive_correct, consecutive_incorrect, difficulty_modifier,
			interval_days, ease, lapses, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, word_id) DO UPDATE SET
			strength = excluded.strength,
			confidence = excluded.confidence,
			last_review = excluded.last_review,
			next_review = excluded.next_review,
			review_count = excluded.review_count,
			consecutive_correct = excluded.consecutive_correct,
			consecutive_incorrect = excluded.consecutive_incorrect,
			difficulty_modifier = excluded.difficulty_modifier,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			lapses = excluded.lapses,
			status = excluded.status`,
		w.UserID,
		w.WordID,
		w.Strength,
		w.Confidence,
		lastReview,
		w.NextReview.UTC().Format(time.RFC3339Nano),
		w.ReviewCount,
		w.ConsecutiveCorrect,
		w.ConsecutiveIncorrect,
		w.DifficultyModifier,
		w.IntervalDays,
		w.Ease,
		w.Lapses,
		string(w.Status),
	)
	return err
}

// GetWordStrength returns the memory state for one word, or ErrNotFound.
func (s *Store) GetWordStrength(ctx context.Context, userID, wordID string) (model.WordStrength, error) {
	var row strengthRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, word_id, strength, confidence, last_review, next_review,
			review_count, consecutive_correct, consecutive_incorrect, difficulty_modifier,
			interval_days, ease, lapses, status
		 FROM word_strengths WHERE user_id = ? AND word_id = ?`, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WordStrength{}, fmt.Errorf("%w: word %s/%s", ErrNotFound, userID, wordID)
	}
	if err != nil {
		return model.WordStrength{}, err
	}
	return row.record()
}

// ListWordStrengths returns all memory state for the user, ordered by next
// review time.
func (s *Store) ListWordStrengths(ctx context.Context, userID string) ([]model.WordStrength, error) {
	var rows []strengthRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT user_id, word_id, strength, confidence, last_review, next_review,
			review_count, consecutive_correct, consecutive_incorrect, difficulty_modifier,
			interval_days, ease, lapses, status
		 FROM word_strengths WHERE user_id = ? ORDER BY next_review ASC, word_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.WordStrength, 0, len(rows))
	for _, r := range rows {
		w, err := r.record()
		if err != nil {
			return nil, fmt.Errorf("store: corrupt word strength row %s/%s: %w", r.UserID, r.WordID, err)
		}
		out = append(out, w)
	}
	return out, nil
}
