package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wordpulse/wordpulse/internal/analytics"
	"github.com/wordpulse/wordpulse/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderAnalytics prints the aggregated analytics summary and its
// recommendations.
func RenderAnalytics(w io.Writer, a model.LearningAnalytics) error {
	if _, err := fmt.Fprintf(w, "Analytics (%s)\n", a.Period); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Words/week: %.1f\n", a.Velocity.WordsPerWeek); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Minutes/day: %.1f\n", a.Velocity.MinutesPerDay); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Retention: %.1f%%\n", a.Retention.Overall); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg accuracy: %.1f%%\n", a.Performance.AverageAccuracy); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Consistency: %.1f\n", a.Performance.ConsistencyScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if len(a.Retention.ByDifficulty) > 0 {
		if _, err := fmt.Fprintln(w, "Retention by Level"); err != nil {
			return err
		}
		levels := make([]model.Difficulty, 0, len(a.Retention.ByDifficulty))
		for d := range a.Retention.ByDifficulty {
			levels = append(levels, d)
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i].Level() < levels[j].Level() })
		rows := make([][]string, 0, len(levels))
		for _, d := range levels {
			rows = append(rows, []string{string(d), fmt.Sprintf("%.1f%%", a.Retention.ByDifficulty[d])})
		}
		for _, line := range formatTable([]string{"Level", "Retention"}, rows, map[int]bool{1: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}

	if len(a.Recommendations) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recommendations"); err != nil {
		return err
	}
	for _, r := range a.Recommendations {
		if _, err := fmt.Fprintf(w, "[%s] %s\n    %s\n", r.Priority, r.Title, r.Body); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderChart prints the dual-axis progress chart with its trend and
// correlation summary.
func RenderChart(w io.Writer, data analytics.ChartData, totalWidth, height int, useColor bool) error {
	if len(data.Primary) == 0 {
		_, err := fmt.Fprintln(w, "No progress data found.")
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	err := PlotSeriesWithColor(w, "Progress", []Series{
		{Name: "Deep memory", Values: data.Primary},
		{Name: "Minutes", Values: data.Secondary},
	}, width, height, useColor)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Deep memory trend: %s\n", data.PrimaryTrend); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Minutes trend: %s\n", data.SecondaryTrend); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Correlation: %.2f\n", data.Correlation)
	return err
}

// RenderWeekly prints the ISO-week roll-up table with a minutes sparkline.
func RenderWeekly(w io.Writer, buckets []analytics.WeekBucket) error {
	if len(buckets) == 0 {
		_, err := fmt.Fprintln(w, "No progress data found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Weekly"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(buckets))
	minutes := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Start.Format("2006-01-02"),
			fmt.Sprintf("%d", b.WordsLearned),
			fmt.Sprintf("%d", b.WordsReviewed),
			fmt.Sprintf("%d", b.MinutesStudied),
			fmt.Sprintf("%d", b.DeepMemoryWords),
			fmt.Sprintf("%.1f%%", b.AvgAccuracy),
			fmt.Sprintf("%d/%d", b.GoalsAchieved, b.Days),
		})
		minutes = append(minutes, float64(b.MinutesStudied))
	}
	headers := []string{"Week", "Learned", "Reviewed", "Minutes", "Deep", "Accuracy", "Goals"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Minutes: %s\n", Sparkline(minutes)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSessions prints session accuracy over time as a smoothed curve.
func RenderSessions(w io.Writer, series analytics.SessionSeries, window, totalWidth, height int, useColor bool) error {
	if len(series.Points) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	accs := make([]float64, len(series.Points))
	resp := make([]float64, len(series.Points))
	for i, p := range series.Points {
		accs[i] = p.Accuracy
		resp[i] = p.AvgResponseSec
	}
	accs = MovingAverage(accs, window)
	resp = MovingAverage(resp, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	err := PlotSeriesWithColor(w, "Session Performance", []Series{
		{Name: "Accuracy", Values: accs},
		{Name: "Response (s)", Values: resp},
	}, width, height, useColor)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Accuracy trend: %s\n", series.AccuracyTrend)
	return err
}

// DueRow is one line of the due-words table.
type DueRow struct {
	WordID        string
	NextReview    time.Time
	IntervalDays  int
	Priority      model.Priority
	PredictedRate float64
}

// RenderDue prints the due-words queue in review order.
func RenderDue(w io.Writer, rows []DueRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Nothing due. Come back tomorrow.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Due Words"); err != nil {
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.WordID,
			r.Priority.String(),
			r.NextReview.Format("2006-01-02"),
			fmt.Sprintf("%dd", r.IntervalDays),
			fmt.Sprintf("%.0f%%", r.PredictedRate),
		})
	}
	headers := []string{"Word", "Priority", "Due", "Interval", "Recall"}
	rightAlign := map[int]bool{3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
