package repository

import (
	"context"

	"github.com/lshigami/psytest/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	WithTx(tx *gorm.DB) TestRepository
	Create(ctx context.Context, test *model.Test) error
	FindByID(ctx context.Context, id uint) (*model.Test, error)
	FindByIDWithQuestions(ctx context.Context, id uint) (*model.Test, error)
	FindActive(ctx context.Context) ([]model.Test, error)
	FindAll(ctx context.Context) ([]model.Test, error)
	Update(ctx context.Context, test *model.Test) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	// RecountQuestions refreshes the denormalized question count and returns it.
	RecountQuestions(ctx context.Context, id uint) (int, error)
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) WithTx(tx *gorm.DB) TestRepository {
	return &testRepository{db: tx}
}

func (r *testRepository) Create(ctx context.Context, test *model.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) FindByID(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.question_number ASC, questions.id ASC")
	}).First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindActive(ctx context.Context) ([]model.Test, error) {
	var tests []model.Test
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&tests).Error
	return tests, err
}

func (r *testRepository) FindAll(ctx context.Context) ([]model.Test, error) {
	var tests []model.Test
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&tests).Error
	return tests, err
}

func (r *testRepository) Update(ctx context.Context, test *model.Test) error {
	return r.db.WithContext(ctx).Omit("Questions").Save(test).Error
}

func (r *testRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Test{}, id).Error
}

func (r *testRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Test{}).Count(&n).Error
	return n, err
}

func (r *testRepository) RecountQuestions(ctx context.Context, id uint) (int, error) {
	var n int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Question{}).Where("test_id = ?", id).Count(&n).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.Test{}).Where("id = ?", id).Update("total_questions", n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
