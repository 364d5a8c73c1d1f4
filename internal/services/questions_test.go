package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"github.com/stretchr/testify/require"
)

// seedQuestions creates n questions for the user, one hour apart, newest
// first in the returned slice.
func seedQuestions(t *testing.T, repository *repo.Repo, user entity.User, n int) []entity.Question {
	t.Helper()

	base := time.Now().UTC().Truncate(time.Second)
	questions := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		q := entity.Question{
			Body:      fmt.Sprintf("question %d", i),
			Answer:    fmt.Sprintf("answer %d", i),
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
			UserID:    user.ID,
		}
		require.NoError(t, repository.SaveQuestion(context.Background(), &q))
		questions = append(questions, q)
	}
	return questions
}

func TestQuestionCreate_DefaultTimestamp(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	user := createTestUser(t, repository, "alice")

	before := time.Now().UTC()
	q, err := questions.Create(context.Background(), user, "what is a goroutine?", "a lightweight thread", nil)
	require.NoError(t, err)
	require.Equal(t, user.ID, q.UserID)
	require.False(t, q.Timestamp.Before(before))
}

func TestQuestionUpdate_OwnerOnly(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	author := createTestUser(t, repository, "alice")
	other := createTestUser(t, repository, "bob")

	q, err := questions.Create(context.Background(), author, "original body", "original answer", nil)
	require.NoError(t, err)

	_, err = questions.Update(context.Background(), other, q.ID, QuestionPatch{
		Body: strptr("hijacked"),
	})
	require.ErrorIs(t, err, ErrAccessDenied)

	// the record is unchanged
	kept, err := questions.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, "original body", kept.Body)

	// the author can apply a partial update
	updated, err := questions.Update(context.Background(), author, q.ID, QuestionPatch{
		Answer: strptr("revised answer"),
	})
	require.NoError(t, err)
	require.Equal(t, "original body", updated.Body)
	require.Equal(t, "revised answer", updated.Answer)
}

func TestQuestionDelete_OwnerOnly(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	author := createTestUser(t, repository, "alice")
	other := createTestUser(t, repository, "bob")

	q, err := questions.Create(context.Background(), author, "body", "answer", nil)
	require.NoError(t, err)

	err = questions.Delete(context.Background(), other, q.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = questions.Get(context.Background(), q.ID)
	require.NoError(t, err)

	require.NoError(t, questions.Delete(context.Background(), author, q.ID))

	_, err = questions.Get(context.Background(), q.ID)
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionList_OffsetWindows(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	user := createTestUser(t, repository, "alice")
	seeded := seedQuestions(t, repository, user, 25)

	got, total, err := questions.List(context.Background(), pagination.Params{Limit: 10, Offset: 10})
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, got, 10)
	for i, q := range got {
		require.Equal(t, seeded[10+i].ID, q.ID)
	}

	got, total, err = questions.List(context.Background(), pagination.Params{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, got, 5)

	got, total, err = questions.List(context.Background(), pagination.Params{Limit: 10, Offset: 100})
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Empty(t, got)
}

func TestQuestionList_AfterCursor(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	user := createTestUser(t, repository, "alice")
	seeded := seedQuestions(t, repository, user, 10)

	// items strictly older than the fourth item, newest first
	after := seeded[3].Timestamp.Format(time.RFC3339)
	got, total, err := questions.List(context.Background(), pagination.Params{Limit: 25, After: after})
	require.NoError(t, err)
	require.EqualValues(t, 10, total)
	require.Len(t, got, 6)
	for i, q := range got {
		require.Equal(t, seeded[4+i].ID, q.ID)
		require.True(t, q.Timestamp.Before(seeded[3].Timestamp))
	}
}

func TestQuestionList_MalformedCursor(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	user := createTestUser(t, repository, "alice")
	seedQuestions(t, repository, user, 3)

	_, _, err := questions.List(context.Background(), pagination.Params{Limit: 10, After: "yesterday"})
	require.ErrorIs(t, err, pagination.ErrInvalidParam)
}

func TestQuestionListByUser(t *testing.T) {
	t.Parallel()

	repository := newTestRepo(t)
	questions := NewQuestions(slog.Default(), repository)
	alice := createTestUser(t, repository, "alice")
	bob := createTestUser(t, repository, "bob")
	seedQuestions(t, repository, alice, 4)
	seedQuestions(t, repository, bob, 2)

	got, total, err := questions.ListByUser(context.Background(), alice.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, got, 4)
	for _, q := range got {
		require.Equal(t, alice.ID, q.UserID)
	}

	_, _, err = questions.ListByUser(context.Background(), 9999, pagination.Params{Limit: 10})
	require.ErrorIs(t, err, ErrUserNotFound)
}
