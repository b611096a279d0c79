// Package results derives scores and topic diagnostics from a finished
// answer history.
package results

import (
	"math"
	"sort"

	"github.com/quizdeck/quizdeck/internal/models"
)

// reviewThreshold is the wrong-answer share above which a topic is flagged.
const reviewThreshold = 0.2

// TopicStat aggregates outcomes for one topic.
type TopicStat struct {
	Topic        string
	Total        int
	Wrong        int
	WrongPercent int
}

// Summary is the scored outcome of one completed session.
type Summary struct {
	Total       int
	Correct     int
	Percent     int
	Message     string
	Wrong       []models.AnsweredEntry
	NeedsReview []TopicStat
}

// Summarize computes the score, the incorrect-answer list and the topics
// where more than 20% of questions were answered wrong, sorted by wrong
// percentage descending.
func Summarize(entries []models.AnsweredEntry) Summary {
	s := Summary{Total: len(entries)}

	stats := make(map[string]*TopicStat)
	order := make([]string, 0)
	for _, entry := range entries {
		if entry.IsCorrect {
			s.Correct++
		} else {
			s.Wrong = append(s.Wrong, entry)
		}

		st, ok := stats[entry.Topic]
		if !ok {
			st = &TopicStat{Topic: entry.Topic}
			stats[entry.Topic] = st
			order = append(order, entry.Topic)
		}
		st.Total++
		if !entry.IsCorrect {
			st.Wrong++
		}
	}

	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	s.Message = scoreMessage(s.Percent)

	for _, topic := range order {
		st := stats[topic]
		if float64(st.Wrong)/float64(st.Total) > reviewThreshold {
			st.WrongPercent = int(math.Round(float64(st.Wrong) / float64(st.Total) * 100))
			s.NeedsReview = append(s.NeedsReview, *st)
		}
	}
	sort.SliceStable(s.NeedsReview, func(i, j int) bool {
		return s.NeedsReview[i].WrongPercent > s.NeedsReview[j].WrongPercent
	})

	return s
}

func scoreMessage(percent int) string {
	switch {
	case percent >= 90:
		return "Excellent! You really know your stuff!"
	case percent >= 70:
		return "Great job! Solid knowledge!"
	case percent >= 50:
		return "Good effort! Keep learning!"
	default:
		return "Keep studying! Practice makes perfect!"
	}
}
