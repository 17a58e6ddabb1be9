package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/wordpulse/wordpulse/internal/analytics"
	"github.com/wordpulse/wordpulse/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovingAverage[%d] = %.2f, want %.2f", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Errorf("Sparkline(nil) = %q, want empty", got)
	}
	flat := Sparkline([]float64{5, 5, 5})
	if len(flat) != 3 {
		t.Errorf("flat sparkline = %q, want 3 identical chars", flat)
	}
	ramp := Sparkline([]float64{0, 50, 100})
	if ramp[0] != ' ' || ramp[2] != '@' {
		t.Errorf("ramp sparkline = %q, want to span the full scale", ramp)
	}
}

func TestRenderAnalytics(t *testing.T) {
	a := model.LearningAnalytics{
		UserID:      "u1",
		Period:      model.PeriodWeek,
		Velocity:    model.Velocity{WordsPerWeek: 21, MinutesPerDay: 18.5},
		Retention:   model.Retention{Overall: 82.3, ByDifficulty: map[model.Difficulty]float64{model.DifficultyA2: 90, model.DifficultyB1: 74}},
		Performance: model.Performance{AverageAccuracy: 84.1, ConsistencyScore: 67.9},
		Recommendations: []model.Recommendation{
			{Priority: model.PriorityHigh, Title: "Restart your streak", Body: "A short session today gets it going again."},
		},
	}
	var buf bytes.Buffer
	if err := RenderAnalytics(&buf, a); err != nil {
		t.Fatalf("RenderAnalytics: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Analytics (week)",
		"Words/week: 21.0",
		"Retention: 82.3%",
		"Retention by Level",
		"A2",
		"[high] Restart your streak",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// A2 must come before B1 on the level scale.
	if strings.Index(out, "A2") > strings.Index(out, "B1") {
		t.Error("retention table not in level order")
	}
}

func TestRenderChart(t *testing.T) {
	data := analytics.ChartData{
		Dates:          []time.Time{time.Now(), time.Now().AddDate(0, 0, 1)},
		Labels:         []string{"May 01", "May 02"},
		Primary:        []float64{100, 110},
		Secondary:      []float64{20, 25},
		PrimaryTrend:   model.TrendIncreasing,
		SecondaryTrend: model.TrendIncreasing,
		Correlation:    1,
	}
	var buf bytes.Buffer
	if err := RenderChart(&buf, data, 60, 6, false); err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Progress", "Deep memory", "Minutes", "Deep memory trend: increasing", "Correlation: 1.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	buf.Reset()
	if err := RenderChart(&buf, analytics.ChartData{}, 60, 6, false); err != nil {
		t.Fatalf("RenderChart(empty): %v", err)
	}
	if !strings.Contains(buf.String(), "No progress data found.") {
		t.Errorf("empty chart output = %q", buf.String())
	}
}

func TestRenderWeekly(t *testing.T) {
	buckets := []analytics.WeekBucket{
		{Year: 2025, Week: 18, Start: time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC), Days: 4, WordsLearned: 16, WordsReviewed: 64, MinutesStudied: 92, DeepMemoryWords: 115, AvgAccuracy: 80, GoalsAchieved: 4},
		{Year: 2025, Week: 19, Start: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), Days: 7, WordsLearned: 28, WordsReviewed: 112, MinutesStudied: 182, DeepMemoryWords: 150, AvgAccuracy: 83.5, GoalsAchieved: 6},
	}
	var buf bytes.Buffer
	if err := RenderWeekly(&buf, buckets); err != nil {
		t.Fatalf("RenderWeekly: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Weekly", "2025-04-28", "2025-05-05", "4/4", "6/7", "Minutes:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDue(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDue(&buf, nil); err != nil {
		t.Fatalf("RenderDue(empty): %v", err)
	}
	if !strings.Contains(buf.String(), "Nothing due") {
		t.Errorf("empty queue output = %q", buf.String())
	}

	buf.Reset()
	rows := []DueRow{
		{WordID: "haus", NextReview: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), IntervalDays: 3, Priority: model.PriorityUrgent, PredictedRate: 41.7},
		{WordID: "baum", NextReview: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), IntervalDays: 7, Priority: model.PriorityLow, PredictedRate: 88.2},
	}
	if err := RenderDue(&buf, rows); err != nil {
		t.Fatalf("RenderDue: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Due Words", "haus", "urgent", "2025-05-01", "3d", "42%", "baum", "88%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSessions(t *testing.T) {
	series := analytics.SessionSeries{
		Points: []analytics.SessionPoint{
			{Accuracy: 60, AvgResponseSec: 4},
			{Accuracy: 75, AvgResponseSec: 3.2},
			{Accuracy: 85, AvgResponseSec: 2.5},
		},
		AccuracyTrend: model.TrendIncreasing,
	}
	var buf bytes.Buffer
	if err := RenderSessions(&buf, series, 2, 60, 6, false); err != nil {
		t.Fatalf("RenderSessions: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Session Performance", "Accuracy", "Response (s)", "Accuracy trend: increasing"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
