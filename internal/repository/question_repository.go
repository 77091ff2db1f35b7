package repository

import (
	"context"

	"github.com/lshigami/psytest/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	WithTx(tx *gorm.DB) QuestionRepository
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	FindByTestID(ctx context.Context, testID uint) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uint) error
	DeleteByTestID(ctx context.Context, testID uint) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) WithTx(tx *gorm.DB) QuestionRepository {
	return &questionRepository{db: tx}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByTestID(ctx context.Context, testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("question_number ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) Update(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Question{}, id).Error
}

func (r *questionRepository) DeleteByTestID(ctx context.Context, testID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("test_id = ?", testID).Delete(&model.Question{})
	return res.RowsAffected, res.Error
}
