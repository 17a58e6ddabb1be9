package analytics

import "github.com/wordpulse/wordpulse/internal/model"

// ruleInput is the snapshot a recommendation rule is evaluated against.
type ruleInput struct {
	Progress    []model.ProgressEntry
	Sessions    []model.SessionEntry
	Velocity    model.Velocity
	Retention   model.Retention
	Performance model.Performance
}

// rule pairs a trigger predicate with a recommendation template.
type rule struct {
	priority model.Priority
	title    string
	body     string
	when     func(in ruleInput, opts Options) bool
}

// rules is evaluated top to bottom; the table is ordered priority-first
// (urgent > high > medium > low) and the output list preserves that order.
// Each rule emits at most one recommendation, and only when its trigger holds.
var rules = []rule{
	{
		priority: model.PriorityUrgent,
		title:    "Rebuild your foundations",
		body:     "Your retention rate has dropped sharply. Re-study recently failed words before adding new ones.",
		when: func(in ruleInput, opts Options) bool {
			return len(in.Sessions) > 0 && in.Retention.Overall < opts.LowRetention
		},
	},
	{
		priority: model.PriorityHigh,
		title:    "Review the fundamentals",
		body:     "Your average accuracy is below target. Slow down and revisit the basics of your current level.",
		when: func(in ruleInput, opts Options) bool {
			return len(in.Progress) > 0 && in.Performance.AverageAccuracy < opts.MinAccuracy
		},
	},
	{
		priority: model.PriorityHigh,
		title:    "Restart your streak",
		body:     "Your study streak was broken. A short session today gets it going again.",
		when: func(in ruleInput, opts Options) bool {
			if len(in.Progress) == 0 {
				return false
			}
			if in.Progress[len(in.Progress)-1].StreakDays != 0 {
				return false
			}
			best := 0
			for _, p := range in.Progress[:len(in.Progress)-1] {
				if p.StreakDays > best {
					best = p.StreakDays
				}
			}
			return best >= opts.MinStreakBroken
		},
	},
	{
		priority: model.PriorityMedium,
		title:    "Set a fixed schedule",
		body:     "Your study time varies a lot from day to day. Studying at the same time each day improves retention.",
		when: func(in ruleInput, opts Options) bool {
			return len(in.Progress) >= 3 && in.Performance.ConsistencyScore < opts.LowConsistency
		},
	},
	{
		priority: model.PriorityMedium,
		title:    "Add a few minutes a day",
		body:     "Your daily study time is low. Even five extra minutes per day compounds quickly.",
		when: func(in ruleInput, opts Options) bool {
			return len(in.Progress) > 0 && in.Velocity.MinutesPerDay < opts.LowMinutesPerDay
		},
	},
	{
		priority: model.PriorityLow,
		title:    "Keep it up",
		body:     "Accuracy and consistency are both strong. Consider raising your daily goal.",
		when: func(in ruleInput, opts Options) bool {
			return len(in.Progress) > 0 &&
				in.Performance.AverageAccuracy >= opts.StrongAccuracy &&
				in.Performance.ConsistencyScore >= opts.StrongConsistency
		},
	},
}

func recommendations(in ruleInput, opts Options) []model.Recommendation {
	var out []model.Recommendation
	for _, r := range rules {
		if !r.when(in, opts) {
			continue
		}
		out = append(out, model.Recommendation{
			Priority: r.priority,
			Title:    r.title,
			Body:     r.body,
		})
	}
	return out
}
