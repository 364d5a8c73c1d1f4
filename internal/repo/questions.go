package repo

import (
	"context"
	"errors"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"gorm.io/gorm"
)

func (r *Repo) SaveQuestion(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *Repo) UpdateQuestion(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *Repo) DeleteQuestion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Question{}, id).Error
}

func (r *Repo) GetQuestionByID(ctx context.Context, id uint) (entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Question{}, ErrQuestionNotFound
		}
		return entity.Question{}, err
	}
	return question, nil
}

// questionQuery scopes question reads to one author when userID is set.
func (r *Repo) questionQuery(ctx context.Context, userID uint) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&entity.Question{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	return q
}

// ListQuestions returns a window of questions in timestamp DESC order plus
// the total row count. userID of zero means the unscoped collection.
func (r *Repo) ListQuestions(ctx context.Context, userID uint, limit, offset int) ([]entity.Question, int64, error) {
	var total int64
	if err := r.questionQuery(ctx, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []entity.Question
	err := r.questionQuery(ctx, userID).
		Order("timestamp desc").
		Limit(limit).
		Offset(offset).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// ListQuestionsAfter returns questions strictly older than the cursor
// timestamp, newest first.
func (r *Repo) ListQuestionsAfter(ctx context.Context, userID uint, after time.Time, limit int) ([]entity.Question, int64, error) {
	var total int64
	if err := r.questionQuery(ctx, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []entity.Question
	err := r.questionQuery(ctx, userID).
		Where("timestamp < ?", after).
		Order("timestamp desc").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}
