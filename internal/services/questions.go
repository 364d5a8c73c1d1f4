package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
)

// QuestionPatch enumerates the fields a partial update may touch.
type QuestionPatch struct {
	Body   *string
	Answer *string
}

type Questions struct {
	log  *slog.Logger
	repo *repo.Repo
}

func NewQuestions(log *slog.Logger, repository *repo.Repo) *Questions {
	return &Questions{log: log, repo: repository}
}

// Create stores a question authored by the given user. The timestamp
// defaults to the creation time.
func (q *Questions) Create(ctx context.Context, author entity.User, body, answer string, timestamp *time.Time) (entity.Question, error) {
	const op = "questions.Create"

	question := entity.Question{
		Body:      body,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
		UserID:    author.ID,
	}
	if timestamp != nil {
		question.Timestamp = timestamp.UTC()
	}

	if err := q.repo.SaveQuestion(ctx, &question); err != nil {
		q.log.Error("failed to save question", "op", op, "error", err)
		return entity.Question{}, fmt.Errorf("%s: %w", op, err)
	}

	return question, nil
}

func (q *Questions) Get(ctx context.Context, id uint) (entity.Question, error) {
	question, err := q.repo.GetQuestionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrQuestionNotFound) {
			return entity.Question{}, ErrQuestionNotFound
		}
		return entity.Question{}, err
	}
	return question, nil
}

// List pages over questions newest first. The after cursor, when present,
// must be an RFC 3339 timestamp and selects strictly older questions.
func (q *Questions) List(ctx context.Context, p pagination.Params) ([]entity.Question, int64, error) {
	return q.list(ctx, 0, p)
}

// ListByUser pages over one author's questions. Unknown authors are an
// ErrUserNotFound, not an empty page.
func (q *Questions) ListByUser(ctx context.Context, userID uint, p pagination.Params) ([]entity.Question, int64, error) {
	if _, err := q.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}
	return q.list(ctx, userID, p)
}

func (q *Questions) list(ctx context.Context, userID uint, p pagination.Params) ([]entity.Question, int64, error) {
	if p.After != "" {
		after, err := p.AfterTime()
		if err != nil {
			return nil, 0, err
		}
		return q.repo.ListQuestionsAfter(ctx, userID, after, p.Limit)
	}
	return q.repo.ListQuestions(ctx, userID, p.Limit, p.Offset)
}

// Update applies a partial update. Only the author may edit a question.
func (q *Questions) Update(ctx context.Context, actor entity.User, id uint, patch QuestionPatch) (entity.Question, error) {
	const op = "questions.Update"

	question, err := q.Get(ctx, id)
	if err != nil {
		return entity.Question{}, err
	}

	if question.UserID != actor.ID {
		q.log.Info("question edit denied", "op", op,
			slog.Uint64("question_id", uint64(id)), slog.Uint64("actor_id", uint64(actor.ID)))
		return entity.Question{}, ErrAccessDenied
	}

	if patch.Body != nil {
		question.Body = *patch.Body
	}
	if patch.Answer != nil {
		question.Answer = *patch.Answer
	}

	if err := q.repo.UpdateQuestion(ctx, &question); err != nil {
		q.log.Error("failed to update question", "op", op, "error", err)
		return entity.Question{}, fmt.Errorf("%s: %w", op, err)
	}

	return question, nil
}

// Delete removes a question. Only the author may delete it.
func (q *Questions) Delete(ctx context.Context, actor entity.User, id uint) error {
	const op = "questions.Delete"

	question, err := q.Get(ctx, id)
	if err != nil {
		return err
	}

	if question.UserID != actor.ID {
		return ErrAccessDenied
	}

	if err := q.repo.DeleteQuestion(ctx, question.ID); err != nil {
		q.log.Error("failed to delete question", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
