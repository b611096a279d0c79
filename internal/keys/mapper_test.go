package keys_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/keys"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/testutil"
)

func TestMap_SelectionByScreenPosition(t *testing.T) {
	tests := []struct {
		key      string
		position int
	}{
		{"1", 0}, {"a", 0}, {"A", 0},
		{"2", 1}, {"b", 1}, {"B", 1},
		{"3", 2}, {"c", 2}, {"C", 2},
		{"4", 3}, {"d", 3}, {"D", 3},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cmd, ok := keys.Map(tt.key)
			require.True(t, ok)
			assert.Equal(t, keys.ActionSelect, cmd.Action)
			assert.Equal(t, tt.position, cmd.Position)
		})
	}
}

func TestMap_Navigation(t *testing.T) {
	cmd, ok := keys.Map("Enter")
	require.True(t, ok)
	assert.Equal(t, keys.ActionAdvance, cmd.Action)

	cmd, ok = keys.Map("Backspace")
	require.True(t, ok)
	assert.Equal(t, keys.ActionRetreat, cmd.Action)

	cmd, ok = keys.Map(" ")
	require.True(t, ok)
	assert.Equal(t, keys.ActionToggleExplanation, cmd.Action)
}

func TestMap_IgnoresUnknownKeys(t *testing.T) {
	for _, key := range []string{"x", "5", "Escape", "Tab", "ArrowUp", "", "f1"} {
		_, ok := keys.Map(key)
		assert.False(t, ok, "key %q should be ignored", key)
	}
}

func TestApply_SelectsDisplayedOption(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	questions := []models.QuestionRecord{{
		ID:   1,
		Text: "Q?",
		Options: map[models.OptionKey]string{
			models.OptionA: "a", models.OptionB: "b",
			models.OptionC: "c", models.OptionD: "d",
		},
		CorrectKey: models.OptionA,
		Topic:      "Go - Basics",
	}}
	e := quiz.New(ctx, questions, store, "progress:test", nil, nil)

	// Pressing "1" selects whatever option is displayed first, by key.
	cmd, ok := keys.Map("1")
	require.True(t, ok)
	cmd.Apply(ctx, e)

	assert.Equal(t, e.OptionOrder()[0], e.Pending())
}

func TestApply_DrivesNavigation(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	questions := []models.QuestionRecord{
		{
			ID: 1, Text: "Q1?", CorrectKey: models.OptionA, Topic: "Go - Basics",
			Options: map[models.OptionKey]string{
				models.OptionA: "a", models.OptionB: "b",
				models.OptionC: "c", models.OptionD: "d",
			},
		},
		{
			ID: 2, Text: "Q2?", CorrectKey: models.OptionA, Topic: "Go - Basics",
			Options: map[models.OptionKey]string{
				models.OptionA: "a", models.OptionB: "b",
				models.OptionC: "c", models.OptionD: "d",
			},
		},
	}
	e := quiz.New(ctx, questions, store, "progress:test", nil, nil)

	apply := func(key string) {
		cmd, ok := keys.Map(key)
		require.True(t, ok)
		cmd.Apply(ctx, e)
	}

	// Enter without a selection is guarded.
	apply("Enter")
	assert.Equal(t, 0, e.Index())

	apply("2")
	apply("Enter")
	assert.Equal(t, 1, e.Index())

	apply(" ")
	assert.True(t, e.ExplanationVisible())

	apply("Backspace")
	assert.Equal(t, 0, e.Index())
	assert.False(t, e.ExplanationVisible())
}
