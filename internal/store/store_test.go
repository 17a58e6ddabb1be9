package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wordpulse/wordpulse/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "wordpulse.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

var t0 = time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

func testProgress(dayOffset int) model.ProgressEntry {
	return model.ProgressEntry{
		UserID:          "u1",
		Date:            t0.AddDate(0, 0, dayOffset),
		WordsStudied:    20,
		WordsLearned:    4,
		WordsReviewed:   16,
		DeepMemoryWords: 100,
		MinutesStudied:  25,
		Sessions:        2,
		Accuracy:        85,
		StreakDays:      dayOffset + 1,
		DailyGoal:       20,
		GoalAchieved:    true,
	}
}

func TestProgressUpsertRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.UpsertProgress(ctx, testProgress(i)); err != nil {
			t.Fatalf("UpsertProgress(%d): %v", i, err)
		}
	}
	// Same calendar day, later clock time: must replace, not duplicate.
	updated := testProgress(1)
	updated.Date = updated.Date.Add(8 * time.Hour)
	updated.WordsLearned = 9
	if err := s.UpsertProgress(ctx, updated); err != nil {
		t.Fatalf("UpsertProgress(update): %v", err)
	}

	got, err := s.ListProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(progress) = %d, want 3", len(got))
	}
	if got[1].WordsLearned != 9 {
		t.Errorf("day 1 WordsLearned = %d, want 9 after upsert", got[1].WordsLearned)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Date.After(got[i-1].Date) {
			t.Errorf("entries out of chronological order at %d", i)
		}
	}
}

func TestProgressRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	bad := testProgress(0)
	bad.Accuracy = -1
	if err := s.UpsertProgress(context.Background(), bad); !errors.Is(err, model.ErrInvalidProgress) {
		t.Errorf("UpsertProgress = %v, want ErrInvalidProgress", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := model.SessionEntry{
		UserID:         "u1",
		StartedAt:      t0,
		EndedAt:        t0.Add(20 * time.Minute),
		CardsCorrect:   15,
		CardsIncorrect: 5,
		CardsTotal:     20,
		LearnedWords:   []string{"haus", "baum"},
		ReviewedWords:  []string{"auto"},
		AvgResponseSec: 3.1,
		Difficulty:     model.DifficultyB1,
		Type:           model.SessionFlashcards,
	}
	id, err := s.InsertSession(ctx, entry)
	if err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	if id == 0 {
		t.Fatal("InsertSession returned zero id")
	}

	later := entry
	later.StartedAt = t0.Add(24 * time.Hour)
	later.EndedAt = later.StartedAt.Add(10 * time.Minute)
	later.LearnedWords = nil
	later.ReviewedWords = nil
	if _, err := s.InsertSession(ctx, later); err != nil {
		t.Fatalf("InsertSession(later): %v", err)
	}

	got, err := s.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(got))
	}
	first := got[0]
	if first.ID != id {
		t.Errorf("first.ID = %d, want %d", first.ID, id)
	}
	if !first.StartedAt.Equal(entry.StartedAt) || !first.EndedAt.Equal(entry.EndedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", first.StartedAt, first.EndedAt, entry.StartedAt, entry.EndedAt)
	}
	if len(first.LearnedWords) != 2 || first.LearnedWords[0] != "baum" {
		t.Errorf("LearnedWords = %v, want sorted [baum haus]", first.LearnedWords)
	}
	if len(first.ReviewedWords) != 1 || first.ReviewedWords[0] != "auto" {
		t.Errorf("ReviewedWords = %v, want [auto]", first.ReviewedWords)
	}
	if first.Difficulty != model.DifficultyB1 || first.Type != model.SessionFlashcards {
		t.Errorf("enums = %s/%s", first.Difficulty, first.Type)
	}
	if !got[1].EndedAt.After(first.EndedAt) {
		t.Error("sessions out of chronological order")
	}
}

func TestSessionRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	bad := model.SessionEntry{
		UserID:         "u1",
		StartedAt:      t0,
		EndedAt:        t0.Add(time.Minute),
		CardsCorrect:   10,
		CardsIncorrect: 5,
		CardsTotal:     20, // 10+5 != 20
		AvgResponseSec: 2,
		Difficulty:     model.DifficultyA1,
		Type:           model.SessionQuiz,
	}
	if _, err := s.InsertSession(context.Background(), bad); !errors.Is(err, model.ErrInvalidSession) {
		t.Errorf("InsertSession = %v, want ErrInvalidSession", err)
	}
}

func TestWordStrengthRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w := model.NewWordStrength("u1", "haus", t0)
	if err := s.PutWordStrength(ctx, w); err != nil {
		t.Fatalf("PutWordStrength: %v", err)
	}

	got, err := s.GetWordStrength(ctx, "u1", "haus")
	if err != nil {
		t.Fatalf("GetWordStrength: %v", err)
	}
	if got.LastReview != nil {
		t.Errorf("LastReview = %v, want nil before first review", got.LastReview)
	}
	if !got.NextReview.Equal(t0) || got.IntervalDays != 1 || got.Ease != 2.5 || got.Status != model.StatusNew {
		t.Errorf("round trip mismatch: %+v", got)
	}

	last := t0.Add(48 * time.Hour)
	w.LastReview = &last
	w.NextReview = last.AddDate(0, 0, 3)
	w.IntervalDays = 3
	w.ReviewCount = 1
	w.ConsecutiveCorrect = 1
	w.Strength = 0.18
	w.Status = model.StatusLearning
	if err := s.PutWordStrength(ctx, w); err != nil {
		t.Fatalf("PutWordStrength(update): %v", err)
	}

	got, err = s.GetWordStrength(ctx, "u1", "haus")
	if err != nil {
		t.Fatalf("GetWordStrength(update): %v", err)
	}
	if got.LastReview == nil || !got.LastReview.Equal(last) {
		t.Errorf("LastReview = %v, want %v", got.LastReview, last)
	}
	if got.IntervalDays != 3 || got.Status != model.StatusLearning {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestGetWordStrengthNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetWordStrength(context.Background(), "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetWordStrength = %v, want ErrNotFound", err)
	}
}

func TestListWordStrengthsOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, word := range []string{"drei", "eins", "zwei"} {
		w := model.NewWordStrength("u1", word, t0)
		w.NextReview = t0.AddDate(0, 0, 2-i)
		if err := s.PutWordStrength(ctx, w); err != nil {
			t.Fatalf("PutWordStrength(%s): %v", word, err)
		}
	}

	got, err := s.ListWordStrengths(ctx, "u1")
	if err != nil {
		t.Fatalf("ListWordStrengths: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].NextReview.Before(got[i-1].NextReview) {
			t.Errorf("out of next-review order at %d", i)
		}
	}
	if got[0].WordID != "zwei" {
		t.Errorf("first due word = %s, want zwei", got[0].WordID)
	}
}
