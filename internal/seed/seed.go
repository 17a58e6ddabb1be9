// Package seed builds deterministic synthetic learning data for demos and
// local development.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/wordpulse/wordpulse/internal/model"
)

// Generator produces a reproducible synthetic learning history. The same
// seed always yields the same data.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator for the given seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

var wordPool = []string{
	"haus", "baum", "auto", "brot", "wasser", "zeit", "jahr", "tag", "hand", "stadt",
	"kind", "frau", "mann", "weg", "arbeit", "leben", "welt", "frage", "antwort", "buch",
	"schule", "freund", "morgen", "abend", "nacht", "licht", "farbe", "zahl", "sprache", "wort",
	"himmel", "erde", "meer", "berg", "fluss", "regen", "schnee", "sonne", "mond", "stern",
}

// History is one generated learning history.
type History struct {
	Progress  []model.ProgressEntry
	Sessions  []model.SessionEntry
	Strengths []model.WordStrength
}

// Generate builds a history of the given number of days ending at now, with
// goal-achieved flags measured against dailyGoal words per day. The synthetic
// learner improves gradually and occasionally skips a day.
func (g *Generator) Generate(userID string, days, dailyGoal int, now time.Time) (History, error) {
	if userID == "" {
		return History{}, fmt.Errorf("seed: user id is required")
	}
	if days < 1 {
		return History{}, fmt.Errorf("seed: days %d must be >= 1", days)
	}
	if dailyGoal < 1 {
		return History{}, fmt.Errorf("seed: daily goal %d must be >= 1", dailyGoal)
	}

	var h History
	start := now.AddDate(0, 0, -(days - 1))
	deepMemory := 40 + g.rnd.Intn(30)
	streak := 0

	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		// Roughly one rest day per week.
		if g.rnd.Float64() < 0.14 && d != days-1 {
			streak = 0
			continue
		}
		streak++

		// Accuracy drifts upward over the history with day-to-day noise.
		base := 65 + 25*float64(d)/float64(days)
		accuracy := clamp(base+g.rnd.NormFloat64()*6, 40, 100)

		learned := 2 + g.rnd.Intn(5)
		reviewed := 10 + g.rnd.Intn(12)
		minutes := 12 + g.rnd.Intn(30)
		sessionCount := 1 + g.rnd.Intn(2)
		deepMemory += g.rnd.Intn(learned + 1)

		p := model.ProgressEntry{
			UserID:          userID,
			Date:            day,
			WordsStudied:    learned + reviewed,
			WordsLearned:    learned,
			WordsReviewed:   reviewed,
			DeepMemoryWords: deepMemory,
			MinutesStudied:  minutes,
			Sessions:        sessionCount,
			Accuracy:        math.Round(accuracy*10) / 10,
			StreakDays:      streak,
			DailyGoal:       dailyGoal,
			GoalAchieved:    learned+reviewed >= dailyGoal,
		}
		if err := p.Validate(); err != nil {
			return History{}, err
		}
		h.Progress = append(h.Progress, p)

		for sIdx := 0; sIdx < sessionCount; sIdx++ {
			s, err := g.session(userID, day, sIdx, accuracy)
			if err != nil {
				return History{}, err
			}
			h.Sessions = append(h.Sessions, s)
		}
	}

	strengths, err := g.strengths(userID, now)
	if err != nil {
		return History{}, err
	}
	h.Strengths = strengths
	return h, nil
}

func (g *Generator) session(userID string, day time.Time, idx int, accuracy float64) (model.SessionEntry, error) {
	total := 10 + g.rnd.Intn(15)
	correct := int(math.Round(float64(total) * clamp(accuracy+g.rnd.NormFloat64()*5, 30, 100) / 100))
	if correct > total {
		correct = total
	}
	start := day.Add(time.Duration(9+idx*6) * time.Hour)
	types := []model.SessionType{model.SessionFlashcards, model.SessionQuiz, model.SessionListening, model.SessionWriting}
	levels := model.Difficulties()

	s := model.SessionEntry{
		UserID:         userID,
		StartedAt:      start,
		EndedAt:        start.Add(time.Duration(10+g.rnd.Intn(20)) * time.Minute),
		CardsCorrect:   correct,
		CardsIncorrect: total - correct,
		CardsTotal:     total,
		AvgResponseSec: math.Round((1.5+g.rnd.Float64()*3)*10) / 10,
		Difficulty:     levels[g.rnd.Intn(3)+1], // mostly A2..B2
		Type:           types[g.rnd.Intn(len(types))],
	}
	for i := 0; i < 2+g.rnd.Intn(3); i++ {
		s.LearnedWords = append(s.LearnedWords, wordPool[g.rnd.Intn(len(wordPool))])
	}
	for i := 0; i < 4+g.rnd.Intn(5); i++ {
		s.ReviewedWords = append(s.ReviewedWords, wordPool[g.rnd.Intn(len(wordPool))])
	}
	return s, s.Validate()
}

func (g *Generator) strengths(userID string, now time.Time) ([]model.WordStrength, error) {
	out := make([]model.WordStrength, 0, len(wordPool))
	for _, word := range wordPool {
		w := model.NewWordStrength(userID, word, now)
		reviews := g.rnd.Intn(8)
		if reviews > 0 {
			w.ReviewCount = reviews
			w.Strength = clamp(0.15*float64(reviews)+g.rnd.Float64()*0.2, 0, 1)
			w.Confidence = clamp(0.1*float64(reviews)+g.rnd.Float64()*0.2, 0, 1)
			w.IntervalDays = 1 << uint(min(reviews, 5))
			w.Ease = 1.8 + g.rnd.Float64()*0.9
			last := now.AddDate(0, 0, -g.rnd.Intn(w.IntervalDays+3))
			w.LastReview = &last
			w.NextReview = last.AddDate(0, 0, w.IntervalDays)
			if g.rnd.Float64() < 0.2 {
				w.ConsecutiveIncorrect = 1 + g.rnd.Intn(2)
				w.Lapses = w.ConsecutiveIncorrect
				w.Status = model.StatusLearning
			} else {
				w.ConsecutiveCorrect = 1 + g.rnd.Intn(reviews)
				w.Status = model.StatusReview
			}
		}
		if err := w.Validate(); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
