package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/wordpulse/wordpulse/internal/model"
)

// trendSlopeThreshold is the relative slope magnitude below which a series
// counts as stable.
const trendSlopeThreshold = 0.01

const chartLabelLayout = "Jan 02"

// ChartData is a chart-ready payload for dual-axis rendering: parallel
// label/primary/secondary arrays (deep-memory count vs. study minutes),
// per-series trend classification, and the Pearson correlation between the
// two series.
type ChartData struct {
	Dates          []time.Time   `json:"dates"`
	Labels         []string      `json:"labels"`
	Primary        []float64     `json:"primary_data"`   // deep-memory word count
	Secondary      []float64     `json:"secondary_data"` // study minutes
	PrimaryTrend   model.Trend   `json:"primary_trend"`
	SecondaryTrend model.Trend   `json:"secondary_trend"`
	Correlation    float64       `json:"correlation"`
}

// BuildChartData converts a chronological progress log into a dual-axis chart
// payload.
func BuildChartData(progress []model.ProgressEntry) (ChartData, error) {
	for _, p := range progress {
		if err := p.Validate(); err != nil {
			return ChartData{}, err
		}
	}
	data := ChartData{
		Dates:     make([]time.Time, len(progress)),
		Labels:    make([]string, len(progress)),
		Primary:   make([]float64, len(progress)),
		Secondary: make([]float64, len(progress)),
	}
	for i, p := range progress {
		data.Dates[i] = p.Day()
		data.Labels[i] = p.Day().Format(chartLabelLayout)
		data.Primary[i] = float64(p.DeepMemoryWords)
		data.Secondary[i] = float64(p.MinutesStudied)
	}
	data.PrimaryTrend = trendOf(data.Primary)
	data.SecondaryTrend = trendOf(data.Secondary)
	data.Correlation = pearson(data.Primary, data.Secondary)
	return data, nil
}

// TimeRange bounds a filter; a zero From or To leaves that side open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// FilterChartData narrows an already-computed chart payload to the time
// range. It is a strict subset operation: every surviving point is carried
// over unchanged; only the trend and correlation summaries are recomputed
// over the subset.
func FilterChartData(data ChartData, r TimeRange) ChartData {
	out := ChartData{}
	for i, d := range data.Dates {
		if !r.contains(d) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Labels = append(out.Labels, data.Labels[i])
		out.Primary = append(out.Primary, data.Primary[i])
		out.Secondary = append(out.Secondary, data.Secondary[i])
	}
	out.PrimaryTrend = trendOf(out.Primary)
	out.SecondaryTrend = trendOf(out.Secondary)
	out.Correlation = pearson(out.Primary, out.Secondary)
	return out
}

// WeekBucket is one ISO week's roll-up of daily progress entries.
type WeekBucket struct {
	Year            int       `json:"year"`
	Week            int       `json:"week"`
	Start           time.Time `json:"start"` // Monday of the ISO week
	Days            int       `json:"days"`
	WordsLearned    int       `json:"words_learned"`    // summed
	WordsReviewed   int       `json:"words_reviewed"`   // summed
	MinutesStudied  int       `json:"minutes_studied"`  // summed
	DeepMemoryWords int       `json:"deep_memory_words"` // last value in the week (cumulative metric)
	AvgAccuracy     float64   `json:"avg_accuracy"`     // averaged
	GoalsAchieved   int       `json:"goals_achieved"`
}

// WeeklyRollup buckets daily entries into ISO weeks, summing count metrics
// and averaging accuracy. Buckets are returned in chronological order.
func WeeklyRollup(progress []model.ProgressEntry) []WeekBucket {
	type key struct{ year, week int }
	buckets := map[key]*WeekBucket{}
	accSums := map[key]float64{}

	for _, p := range progress {
		day := p.Day()
		y, w := day.ISOWeek()
		k := key{y, w}
		b, ok := buckets[k]
		if !ok {
			b = &WeekBucket{Year: y, Week: w, Start: isoWeekStart(day)}
			buckets[k] = b
		}
		b.Days++
		b.WordsLearned += p.WordsLearned
		b.WordsReviewed += p.WordsReviewed
		b.MinutesStudied += p.MinutesStudied
		b.DeepMemoryWords = p.DeepMemoryWords
		if p.GoalAchieved {
			b.GoalsAchieved++
		}
		accSums[k] += p.Accuracy
	}

	out := make([]WeekBucket, 0, len(buckets))
	for k, b := range buckets {
		b.AvgAccuracy = accSums[k] / float64(b.Days)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

func isoWeekStart(day time.Time) time.Time {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the week starting the previous Monday
	}
	return day.AddDate(0, 0, 1-wd)
}

// SessionPoint is one session's contribution to a performance series.
type SessionPoint struct {
	At             time.Time         `json:"at"`
	Label          string            `json:"label"`
	Accuracy       float64           `json:"accuracy"`
	AvgResponseSec float64           `json:"avg_response_sec"`
	Difficulty     model.Difficulty  `json:"difficulty"`
	Type           model.SessionType `json:"type"`
}

// SessionSeries is a performance-over-time series derived from session logs.
type SessionSeries struct {
	Points        []SessionPoint `json:"points"`
	AccuracyTrend model.Trend    `json:"accuracy_trend"`
}

// BuildSessionSeries converts a chronological session log into a
// performance-over-time series.
func BuildSessionSeries(sessions []model.SessionEntry) (SessionSeries, error) {
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return SessionSeries{}, err
		}
	}
	series := SessionSeries{Points: make([]SessionPoint, len(sessions))}
	for i, s := range sessions {
		series.Points[i] = SessionPoint{
			At:             s.EndedAt,
			Label:          s.EndedAt.Format(chartLabelLayout),
			Accuracy:       s.Accuracy(),
			AvgResponseSec: s.AvgResponseSec,
			Difficulty:     s.Difficulty,
			Type:           s.Type,
		}
	}
	series.AccuracyTrend = trendOf(accuracyValues(series.Points))
	return series, nil
}

// FilterSessionSeries narrows an already-computed session series by time
// range, difficulty levels, and session types. Empty difficulty or type sets
// leave that dimension unfiltered. Strict subset: points pass through
// unchanged.
func FilterSessionSeries(series SessionSeries, r TimeRange, difficulties []model.Difficulty, types []model.SessionType) SessionSeries {
	diffSet := map[model.Difficulty]struct{}{}
	for _, d := range difficulties {
		diffSet[d] = struct{}{}
	}
	typeSet := map[model.SessionType]struct{}{}
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	out := SessionSeries{}
	for _, p := range series.Points {
		if !r.contains(p.At) {
			continue
		}
		if len(diffSet) > 0 {
			if _, ok := diffSet[p.Difficulty]; !ok {
				continue
			}
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[p.Type]; !ok {
				continue
			}
		}
		out.Points = append(out.Points, p)
	}
	out.AccuracyTrend = trendOf(accuracyValues(out.Points))
	return out
}

func accuracyValues(points []SessionPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Accuracy
	}
	return values
}

// trendOf classifies a series by the sign of its least-squares slope,
// with a threshold relative to the series magnitude so near-flat noise
// reads as stable.
func trendOf(values []float64) model.Trend {
	if len(values) < 2 {
		return model.TrendStable
	}
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return model.TrendStable
	}
	slope := (n*sumXY - sumX*sumY) / den

	magnitude := math.Abs(sumY / n)
	if magnitude < 1 {
		magnitude = 1
	}
	if math.Abs(slope) < trendSlopeThreshold*magnitude {
		return model.TrendStable
	}
	if slope > 0 {
		return model.TrendIncreasing
	}
	return model.TrendDecreasing
}

// pearson returns the Pearson correlation coefficient between the series,
// or 0 when either has no variance or the lengths differ.
func pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / n
	meanB := sumB / n
	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
