package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/wordpulse/wordpulse/internal/model"
)

func buildProgress(days int) []model.ProgressEntry {
	out := make([]model.ProgressEntry, days)
	for i := 0; i < days; i++ {
		p := progressEntry(i)
		p.DeepMemoryWords = 100 + i*5
		p.MinutesStudied = 20 + i*2
		out[i] = p
	}
	return out
}

func TestBuildChartData(t *testing.T) {
	data, err := BuildChartData(buildProgress(10))
	if err != nil {
		t.Fatalf("BuildChartData: %v", err)
	}
	if len(data.Labels) != 10 || len(data.Primary) != 10 || len(data.Secondary) != 10 || len(data.Dates) != 10 {
		t.Fatalf("arrays not parallel: %d/%d/%d/%d",
			len(data.Labels), len(data.Primary), len(data.Secondary), len(data.Dates))
	}
	if data.Primary[0] != 100 || data.Primary[9] != 145 {
		t.Errorf("primary series = %.0f..%.0f, want 100..145", data.Primary[0], data.Primary[9])
	}
	if data.PrimaryTrend != model.TrendIncreasing {
		t.Errorf("PrimaryTrend = %s, want increasing", data.PrimaryTrend)
	}
	if data.SecondaryTrend != model.TrendIncreasing {
		t.Errorf("SecondaryTrend = %s, want increasing", data.SecondaryTrend)
	}
	// Both series are linear in the day index, so correlation is perfect.
	if math.Abs(data.Correlation-1) > 1e-9 {
		t.Errorf("Correlation = %.4f, want 1", data.Correlation)
	}
}

func TestBuildChartDataRejectsInvalid(t *testing.T) {
	bad := progressEntry(0)
	bad.MinutesStudied = -10
	if _, err := BuildChartData([]model.ProgressEntry{bad}); err == nil {
		t.Error("BuildChartData should reject invalid entries")
	}
}

func TestBuildChartDataEmpty(t *testing.T) {
	data, err := BuildChartData(nil)
	if err != nil {
		t.Fatalf("BuildChartData: %v", err)
	}
	if len(data.Primary) != 0 {
		t.Errorf("len(Primary) = %d, want 0", len(data.Primary))
	}
	if data.PrimaryTrend != model.TrendStable || data.Correlation != 0 {
		t.Errorf("empty payload = %s / %.2f, want stable / 0", data.PrimaryTrend, data.Correlation)
	}
}

func TestFilterChartDataIsSubset(t *testing.T) {
	original, err := BuildChartData(buildProgress(14))
	if err != nil {
		t.Fatalf("BuildChartData: %v", err)
	}
	r := TimeRange{From: base.AddDate(0, 0, 3), To: base.AddDate(0, 0, 9)}
	filtered := FilterChartData(original, r)

	if len(filtered.Primary) > len(original.Primary) {
		t.Fatalf("filtered %d points > original %d", len(filtered.Primary), len(original.Primary))
	}
	if len(filtered.Primary) != 7 {
		t.Fatalf("len(filtered) = %d, want 7 (days 3..9)", len(filtered.Primary))
	}
	// Every filtered point must exist unchanged in the original.
	for i, d := range filtered.Dates {
		found := false
		for j, od := range original.Dates {
			if !d.Equal(od) {
				continue
			}
			found = true
			if filtered.Labels[i] != original.Labels[j] ||
				filtered.Primary[i] != original.Primary[j] ||
				filtered.Secondary[i] != original.Secondary[j] {
				t.Fatalf("point %s altered by filter", d)
			}
		}
		if !found {
			t.Fatalf("filter invented point %s", d)
		}
	}
}

func TestFilterChartDataOpenRange(t *testing.T) {
	original, err := BuildChartData(buildProgress(5))
	if err != nil {
		t.Fatalf("BuildChartData: %v", err)
	}
	filtered := FilterChartData(original, TimeRange{})
	if len(filtered.Primary) != len(original.Primary) {
		t.Errorf("open range dropped points: %d vs %d", len(filtered.Primary), len(original.Primary))
	}
}

func TestWeeklyRollup(t *testing.T) {
	// 2025-05-01 is a Thursday: days 0..3 close ISO week 18, days 4..10 are week 19.
	rollup := WeeklyRollup(buildProgress(11))
	if len(rollup) != 2 {
		t.Fatalf("len(rollup) = %d, want 2", len(rollup))
	}
	first, second := rollup[0], rollup[1]
	if first.Week >= second.Week && first.Year >= second.Year {
		t.Errorf("buckets out of order: %d/%d before %d/%d", first.Year, first.Week, second.Year, second.Week)
	}
	if first.Days != 4 || second.Days != 7 {
		t.Errorf("bucket days = %d/%d, want 4/7", first.Days, second.Days)
	}
	// Minutes are summed: week one covers offsets 0..3 at 20,22,24,26.
	if first.MinutesStudied != 92 {
		t.Errorf("first.MinutesStudied = %d, want 92", first.MinutesStudied)
	}
	// Deep memory is cumulative, so the bucket keeps the last value.
	if first.DeepMemoryWords != 115 {
		t.Errorf("first.DeepMemoryWords = %d, want 115", first.DeepMemoryWords)
	}
	if math.Abs(first.AvgAccuracy-80) > 1e-9 {
		t.Errorf("first.AvgAccuracy = %.2f, want 80", first.AvgAccuracy)
	}
	if first.Start.Weekday() != time.Monday {
		t.Errorf("bucket start %s is not a Monday", first.Start.Weekday())
	}
}

func TestSessionSeriesAndFilter(t *testing.T) {
	sessions := []model.SessionEntry{
		sessionEntry(0, 10, 20),
		sessionEntry(1, 15, 20),
		sessionEntry(2, 18, 20),
	}
	sessions[1].Difficulty = model.DifficultyA2
	sessions[2].Type = model.SessionQuiz

	series, err := BuildSessionSeries(sessions)
	if err != nil {
		t.Fatalf("BuildSessionSeries: %v", err)
	}
	if len(series.Points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(series.Points))
	}
	if series.Points[0].Accuracy != 50 || series.Points[2].Accuracy != 90 {
		t.Errorf("accuracy series = %.0f..%.0f, want 50..90", series.Points[0].Accuracy, series.Points[2].Accuracy)
	}

	byDiff := FilterSessionSeries(series, TimeRange{}, []model.Difficulty{model.DifficultyA2}, nil)
	if len(byDiff.Points) != 1 || byDiff.Points[0].Difficulty != model.DifficultyA2 {
		t.Errorf("difficulty filter returned %+v", byDiff.Points)
	}

	byType := FilterSessionSeries(series, TimeRange{}, nil, []model.SessionType{model.SessionQuiz})
	if len(byType.Points) != 1 || byType.Points[0].Type != model.SessionQuiz {
		t.Errorf("type filter returned %+v", byType.Points)
	}

	byRange := FilterSessionSeries(series, TimeRange{To: base.Add(36 * time.Hour)}, nil, nil)
	if len(byRange.Points) != 1 {
		t.Errorf("time filter returned %d points, want 1", len(byRange.Points))
	}
}

func TestTrendStableOnFlatSeries(t *testing.T) {
	if got := trendOf([]float64{50, 50, 50, 50}); got != model.TrendStable {
		t.Errorf("trendOf(flat) = %s, want stable", got)
	}
	if got := trendOf([]float64{50, 50.01, 49.99, 50}); got != model.TrendStable {
		t.Errorf("trendOf(noise) = %s, want stable", got)
	}
	if got := trendOf([]float64{90, 70, 50, 30}); got != model.TrendDecreasing {
		t.Errorf("trendOf(falling) = %s, want decreasing", got)
	}
}

func TestPearsonEdgeCases(t *testing.T) {
	if got := pearson([]float64{1, 1, 1}, []float64{2, 5, 9}); got != 0 {
		t.Errorf("pearson(constant, varying) = %.4f, want 0", got)
	}
	if got := pearson([]float64{1, 2}, []float64{1}); got != 0 {
		t.Errorf("pearson(mismatched lengths) = %.4f, want 0", got)
	}
	got := pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if math.Abs(got+1) > 1e-9 {
		t.Errorf("pearson(inverse) = %.4f, want -1", got)
	}
}
