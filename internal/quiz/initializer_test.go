package quiz_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

func topicQuestions(counts map[string]int) []models.QuestionRecord {
	var qs []models.QuestionRecord
	id := int64(0)
	for _, topic := range []string{"React - Hooks", "CSS - Layout", "Go - Basics"} {
		for i := 0; i < counts[topic]; i++ {
			id++
			qs = append(qs, models.QuestionRecord{
				ID:   id,
				Text: fmt.Sprintf("Question %d?", id),
				Options: map[models.OptionKey]string{
					models.OptionA: "a", models.OptionB: "b",
					models.OptionC: "c", models.OptionD: "d",
				},
				CorrectKey: models.OptionA,
				Topic:      topic,
			})
		}
	}
	return qs
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, quiz.ModeRandom, quiz.ParseMode("random"))
	assert.Equal(t, quiz.ModeRandom, quiz.ParseMode("RANDOM"))
	assert.Equal(t, quiz.ModeAll, quiz.ParseMode("all"))
	assert.Equal(t, quiz.ModeAll, quiz.ParseMode("anything else"))
}

func TestInitialize_TopicFilter(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 6, "CSS - Layout": 4})

	set := quiz.Initialize(records, quiz.ModeAll, "React", 25)

	require.Len(t, set, 6)
	for _, q := range set {
		assert.Equal(t, "React - Hooks", q.Topic)
	}
}

func TestInitialize_NoFilterKeepsEverything(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 6, "CSS - Layout": 4})

	set := quiz.Initialize(records, quiz.ModeAll, "", 25)
	assert.Len(t, set, 10)
}

func TestInitialize_RandomModeCapsAt25(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 10, "CSS - Layout": 10, "Go - Basics": 10})

	set := quiz.Initialize(records, quiz.ModeRandom, "", 25)
	assert.Len(t, set, 25)
}

func TestInitialize_RandomModeIgnoresTopicFilter(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 10, "CSS - Layout": 10, "Go - Basics": 10})

	set := quiz.Initialize(records, quiz.ModeRandom, "React", 25)

	require.Len(t, set, 25)
	topics := make(map[string]bool)
	for _, q := range set {
		topics[q.Topic] = true
	}
	// 25 of 30 questions cannot all come from a 10-question topic.
	assert.Greater(t, len(topics), 1, "random mode must draw from the full set")
}

func TestInitialize_SmallerSetThanCap(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 3})

	set := quiz.Initialize(records, quiz.ModeRandom, "", 25)
	assert.Len(t, set, 3)
}

func TestInitialize_EmptyFilteredSet(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 6})

	set := quiz.Initialize(records, quiz.ModeAll, "Rust", 25)
	assert.Empty(t, set)
}

func TestInitialize_PreservesQuestionContent(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 8})

	set := quiz.Initialize(records, quiz.ModeAll, "", 25)

	require.Len(t, set, 8)
	seen := make(map[int64]bool)
	for _, q := range set {
		seen[q.ID] = true
	}
	for _, q := range records {
		assert.True(t, seen[q.ID], "question %d lost by shuffle", q.ID)
	}
}

// A no-op or heavily biased shuffle would leave the first question in its
// original slot nearly every time.
func TestInitialize_ShuffleFairness(t *testing.T) {
	records := topicQuestions(map[string]int{"React - Hooks": 4, "CSS - Layout": 4})

	const trials = 40
	firstStays := 0
	for i := 0; i < trials; i++ {
		set := quiz.Initialize(records, quiz.ModeAll, "", 25)
		require.Len(t, set, 8)
		if set[0].ID == records[0].ID {
			firstStays++
		}
	}

	assert.Less(t, firstStays, trials*9/10, "first element stayed in place suspiciously often")
}
