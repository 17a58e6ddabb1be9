package seed

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateDeterministic(t *testing.T) {
	a, err := New(42).Generate("u1", 30, 20, t0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := New(42).Generate("u1", 30, 20, t0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(a.Progress) != len(b.Progress) || len(a.Sessions) != len(b.Sessions) {
		t.Fatalf("same seed produced different shapes: %d/%d vs %d/%d",
			len(a.Progress), len(a.Sessions), len(b.Progress), len(b.Sessions))
	}
	for i := range a.Progress {
		if a.Progress[i] != b.Progress[i] {
			t.Fatalf("same seed produced different progress at %d", i)
		}
	}

	c, err := New(7).Generate("u1", 30, 20, t0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	same := len(c.Progress) == len(a.Progress)
	if same {
		for i := range c.Progress {
			if c.Progress[i] != a.Progress[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical histories")
	}
}

func TestGenerateAllEntriesValid(t *testing.T) {
	h, err := New(1).Generate("u1", 60, 20, t0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(h.Progress) == 0 || len(h.Sessions) == 0 || len(h.Strengths) == 0 {
		t.Fatalf("empty history: %d/%d/%d", len(h.Progress), len(h.Sessions), len(h.Strengths))
	}
	for i, p := range h.Progress {
		if err := p.Validate(); err != nil {
			t.Errorf("progress[%d]: %v", i, err)
		}
		if i > 0 && !h.Progress[i].Date.After(h.Progress[i-1].Date) {
			t.Errorf("progress out of order at %d", i)
		}
	}
	for i, s := range h.Sessions {
		if err := s.Validate(); err != nil {
			t.Errorf("sessions[%d]: %v", i, err)
		}
	}
	for i, w := range h.Strengths {
		if err := w.Validate(); err != nil {
			t.Errorf("strengths[%d]: %v", i, err)
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := New(1).Generate("", 30, 20, t0); err == nil {
		t.Error("empty user id should fail")
	}
	if _, err := New(1).Generate("u1", 0, 20, t0); err == nil {
		t.Error("zero days should fail")
	}
	if _, err := New(1).Generate("u1", 30, 0, t0); err == nil {
		t.Error("zero daily goal should fail")
	}
}

func TestGenerateHonorsDailyGoal(t *testing.T) {
	h, err := New(3).Generate("u1", 40, 12, t0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, p := range h.Progress {
		if p.DailyGoal != 12 {
			t.Fatalf("progress[%d].DailyGoal = %d, want 12", i, p.DailyGoal)
		}
		if p.GoalAchieved != (p.WordsStudied >= 12) {
			t.Errorf("progress[%d].GoalAchieved = %t for %d studied words against goal 12",
				i, p.GoalAchieved, p.WordsStudied)
		}
	}
}
