package session_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/dataset"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/session"
	"github.com/quizdeck/quizdeck/internal/testutil"
	"github.com/quizdeck/quizdeck/internal/testutil/mocks"
)

func makeDataset(t *testing.T, n int) *dataset.Repository {
	t.Helper()
	records := make([]models.QuestionRecord, n)
	for i := range records {
		records[i] = models.QuestionRecord{
			ID:   int64(i + 1),
			Text: fmt.Sprintf("question %d", i+1),
			Options: map[models.OptionKey]string{
				models.OptionA: "a", models.OptionB: "b",
				models.OptionC: "c", models.OptionD: "d",
			},
			CorrectKey:  models.OptionB,
			Explanation: "because",
			Topic:       "Go - Basics",
		}
	}
	repo, err := dataset.New(records)
	require.NoError(t, err)
	return repo
}

// answerAll walks the session to completion, answering every question with
// its correct key.
func answerAll(t *testing.T, s *session.Session) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		v := s.View()
		if v.Screen != models.ScreenQuiz {
			return
		}
		require.NotNil(t, v.Question)
		s.Select(ctx, v.Question.CorrectKey)
		s.Advance(ctx)
	}
	t.Fatal("quiz did not complete")
}

func TestStart_EntersQuizScreen(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 3), store, nil, 25)

	s := m.Get(ctx, "sess-1")
	assert.Equal(t, models.ScreenWelcome, s.View().Screen)

	s.Start(ctx, quiz.ModeAll, "")
	v := s.View()
	assert.Equal(t, models.ScreenQuiz, v.Screen)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 3, v.Total)
	require.NotNil(t, v.Question)

	// The session record is persisted immediately.
	assert.NotNil(t, store.Get("session:sess-1"))
}

func TestStart_RandomModeDropsTopicFilter(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 3), store, nil, 25)

	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeRandom, "Go")

	v := s.View()
	assert.Equal(t, quiz.ModeRandom, v.Mode)
	assert.Equal(t, "", v.TopicFilter)
}

func TestCompletion_ArchivesAttempt(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	attempts := new(mocks.MockAttemptRepository)
	attempts.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	m := session.NewManager(makeDataset(t, 2), store, attempts, 25)
	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeAll, "")
	answerAll(t, s)

	v := s.View()
	assert.Equal(t, models.ScreenResults, v.Screen)
	require.Len(t, v.History, 2)

	attempts.AssertNumberOfCalls(t, "Insert", 1)
	inserted := attempts.Calls[0].Arguments.Get(1).(models.Attempt)
	assert.Equal(t, "sess-1", inserted.SessionID)
	assert.Equal(t, 2, inserted.Total)
	assert.Equal(t, 2, inserted.Correct)
	assert.Equal(t, 100, inserted.Percent)

	// Progress is cleared; the session record survives on the results screen.
	assert.Nil(t, store.Get("progress:sess-1"))
	assert.NotNil(t, store.Get("session:sess-1"))
}

func TestRestore_MidQuizAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	ds := makeDataset(t, 3)

	m1 := session.NewManager(ds, store, nil, 25)
	s1 := m1.Get(ctx, "sess-1")
	s1.Start(ctx, quiz.ModeAll, "")
	first := s1.View().Question.ID
	s1.Select(ctx, models.OptionB)
	s1.Advance(ctx)
	s1.Select(ctx, models.OptionA)

	// A fresh manager over the same store stands in for a restarted server.
	m2 := session.NewManager(ds, store, nil, 25)
	s2 := m2.Get(ctx, "sess-1")

	v := s2.View()
	assert.Equal(t, models.ScreenQuiz, v.Screen)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, models.OptionA, v.Pending)
	require.Len(t, v.History, 1)
	assert.Equal(t, first, v.History[0].QuestionID)
}

func TestRestore_ResultsAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	ds := makeDataset(t, 2)

	m1 := session.NewManager(ds, store, nil, 25)
	s1 := m1.Get(ctx, "sess-1")
	s1.Start(ctx, quiz.ModeAll, "")
	answerAll(t, s1)

	m2 := session.NewManager(ds, store, nil, 25)
	v := m2.Get(ctx, "sess-1").View()
	assert.Equal(t, models.ScreenResults, v.Screen)
	assert.Len(t, v.History, 2)
}

func TestReset_MidQuiz(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 3), store, nil, 25)

	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeAll, "")
	s.Select(ctx, models.OptionB)
	s.Advance(ctx)

	s.Reset(ctx)

	v := s.View()
	assert.Equal(t, models.ScreenWelcome, v.Screen)
	assert.Empty(t, v.History)
	assert.Nil(t, store.Get("progress:sess-1"))
	assert.Nil(t, store.Get("session:sess-1"))
}

func TestReset_FromResults(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 2), store, nil, 25)

	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeAll, "")
	answerAll(t, s)
	require.Equal(t, models.ScreenResults, s.View().Screen)

	s.Reset(ctx)

	assert.Equal(t, models.ScreenWelcome, s.View().Screen)
	assert.Nil(t, store.Get("session:sess-1"))
}

func TestApplyKey_DrivesEngine(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 2), store, nil, 25)

	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeAll, "")

	s.ApplyKey(ctx, "1")
	v := s.View()
	assert.Equal(t, v.OptionOrder[0], v.Pending)

	s.ApplyKey(ctx, "enter")
	assert.Equal(t, 1, s.View().Index)

	s.ApplyKey(ctx, "backspace")
	assert.Equal(t, 0, s.View().Index)

	// Unknown keys are ignored.
	s.ApplyKey(ctx, "x")
	assert.Equal(t, 0, s.View().Index)
}

func TestGet_ReusesLiveSession(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	m := session.NewManager(makeDataset(t, 2), store, nil, 25)

	s1 := m.Get(ctx, "sess-1")
	s1.Start(ctx, quiz.ModeAll, "")
	s2 := m.Get(ctx, "sess-1")

	assert.Same(t, s1, s2)
}

func TestStart_EmptyDatasetCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeProgressStore()
	ds, err := dataset.New(nil)
	require.NoError(t, err)
	m := session.NewManager(ds, store, nil, 25)

	s := m.Get(ctx, "sess-1")
	s.Start(ctx, quiz.ModeAll, "")

	v := s.View()
	assert.Equal(t, models.ScreenResults, v.Screen)
	assert.Empty(t, v.History)
}
