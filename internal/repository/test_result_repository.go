package repository

import (
	"context"

	"github.com/lshigami/psytest/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Qualifying restricts a query on test_results to completed, saved attempts.
func Qualifying(db *gorm.DB) *gorm.DB {
	return db.Where("test_results.status = ? AND test_results.is_saved = ?", model.StatusCompleted, true)
}

// TestAttemptCount is one row of the per-test qualifying attempt tally.
type TestAttemptCount struct {
	TestID        uint
	Name          string
	DisplayName   string
	AttemptsCount int64
}

type TestResultRepository interface {
	WithTx(tx *gorm.DB) TestResultRepository
	Create(ctx context.Context, result *model.TestResult) error
	FindByID(ctx context.Context, id uint) (*model.TestResult, error)
	// FindByIDForUpdate loads the attempt and holds a row lock until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.TestResult, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.TestResult, error)
	Update(ctx context.Context, result *model.TestResult) error
	FindQualifyingByTest(ctx context.Context, testID uint) ([]model.TestResult, error)
	FindQualifyingByUser(ctx context.Context, userID uint) ([]model.TestResult, error)
	FindAllQualifying(ctx context.Context) ([]model.TestResult, error)
	CountQualifying(ctx context.Context) (int64, error)
	CountQualifyingPerTest(ctx context.Context) ([]TestAttemptCount, error)
	Delete(ctx context.Context, id uint) error
	DeleteByTestID(ctx context.Context, testID uint) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type testResultRepository struct {
	db *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) WithTx(tx *gorm.DB) TestResultRepository {
	return &testResultRepository{db: tx}
}

func (r *testResultRepository) Create(ctx context.Context, result *model.TestResult) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(result).Error
}

func (r *testResultRepository) FindByID(ctx context.Context, id uint) (*model.TestResult, error) {
	var result model.TestResult
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.db.WithContext(ctx).
		Preload("Test").
		Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.id ASC")
		}).
		Preload("Answers.Question").
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) Update(ctx context.Context, result *model.TestResult) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(result).Error
}

func (r *testResultRepository) FindQualifyingByTest(ctx context.Context, testID uint) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.db.WithContext(ctx).
		Scopes(Qualifying).
		Preload("User").
		Where("test_results.test_id = ?", testID).
		Order("test_results.completed_at DESC, test_results.id DESC").
		Find(&results).Error
	return results, err
}

func (r *testResultRepository) FindQualifyingByUser(ctx context.Context, userID uint) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.db.WithContext(ctx).
		Scopes(Qualifying).
		Preload("Test").
		Where("test_results.user_id = ?", userID).
		Order("test_results.completed_at DESC, test_results.id DESC").
		Find(&results).Error
	return results, err
}

func (r *testResultRepository) FindAllQualifying(ctx context.Context) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.db.WithContext(ctx).
		Scopes(Qualifying).
		Preload("Test").
		Preload("User").
		Order("test_results.completed_at DESC, test_results.id DESC").
		Find(&results).Error
	return results, err
}

func (r *testResultRepository) CountQualifying(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TestResult{}).Scopes(Qualifying).Count(&n).Error
	return n, err
}

func (r *testResultRepository) CountQualifyingPerTest(ctx context.Context) ([]TestAttemptCount, error) {
	var rows []TestAttemptCount
	err := r.db.WithContext(ctx).
		Model(&model.Test{}).
		Select("tests.id AS test_id, tests.name AS name, tests.display_name AS display_name, COUNT(test_results.id) AS attempts_count").
		Joins("LEFT JOIN test_results ON test_results.test_id = tests.id AND test_results.status = ? AND test_results.is_saved = ?",
			model.StatusCompleted, true).
		Group("tests.id, tests.name, tests.display_name").
		Order("tests.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *testResultRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.TestResult{}, id).Error
}

func (r *testResultRepository) DeleteByTestID(ctx context.Context, testID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("test_id = ?", testID).Delete(&model.TestResult{})
	return res.RowsAffected, res.Error
}

func (r *testResultRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.TestResult{})
	return res.RowsAffected, res.Error
}
