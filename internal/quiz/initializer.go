package quiz

import (
	"math/rand"
	"strings"

	"github.com/quizdeck/quizdeck/internal/models"
)

// Mode selects how the question set for a session is built.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeRandom Mode = "random"
)

// DefaultRandomSize is the question cap applied in random mode.
const DefaultRandomSize = 25

// ParseMode normalizes a raw mode string, defaulting to ModeAll.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(s)) == ModeRandom {
		return ModeRandom
	}
	return ModeAll
}

// Initialize builds the fixed, ordered question sequence for one session.
// The topic filter applies only in "all" mode; random mode always draws from
// the full set and caps the result at randomSize. The shuffle is a
// Fisher-Yates permutation, so every ordering is equally likely.
//
// Initialize runs exactly once per session start; the returned slice must
// not be reordered afterwards.
func Initialize(records []models.QuestionRecord, mode Mode, topicFilter string, randomSize int) []models.QuestionRecord {
	if randomSize <= 0 {
		randomSize = DefaultRandomSize
	}

	filtered := records
	if mode != ModeRandom && topicFilter != "" {
		filtered = nil
		for _, q := range records {
			if strings.HasPrefix(q.Topic, topicFilter) {
				filtered = append(filtered, q)
			}
		}
	}

	set := make([]models.QuestionRecord, len(filtered))
	copy(set, filtered)
	rand.Shuffle(len(set), func(i, j int) {
		set[i], set[j] = set[j], set[i]
	})

	if mode == ModeRandom && len(set) > randomSize {
		set = set[:randomSize]
	}
	return set
}
