package repository

import (
	"context"

	"github.com/lshigami/psytest/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	// Upsert inserts the answer or overwrites the existing row for its (attempt, question) pair.
	Upsert(ctx context.Context, answer *model.Answer) error
	FindByResultAndQuestion(ctx context.Context, resultID, questionID uint) (*model.Answer, error)
	FindByResultID(ctx context.Context, resultID uint) ([]model.Answer, error)
	CountCorrect(ctx context.Context, resultID uint) (int64, error)
	DeleteByResultID(ctx context.Context, resultID uint) (int64, error)
	DeleteByTestID(ctx context.Context, testID uint) (int64, error)
	DeleteByQuestionID(ctx context.Context, questionID uint) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) Upsert(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_result_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "is_correct", "updated_at"}),
	}).Omit("Question").Create(answer).Error
}

func (r *answerRepository) FindByResultAndQuestion(ctx context.Context, resultID, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.WithContext(ctx).
		Where("test_result_id = ? AND question_id = ?", resultID, questionID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) FindByResultID(ctx context.Context, resultID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).Where("test_result_id = ?", resultID).Order("id ASC").Find(&answers).Error
	return answers, err
}

func (r *answerRepository) CountCorrect(ctx context.Context, resultID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Answer{}).
		Where("test_result_id = ? AND is_correct = ?", resultID, true).
		Count(&n).Error
	return n, err
}

func (r *answerRepository) DeleteByResultID(ctx context.Context, resultID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("test_result_id = ?", resultID).Delete(&model.Answer{})
	return res.RowsAffected, res.Error
}

// DeleteByTestID removes answers of every attempt at the test and every answer
// pointing at one of its questions.
func (r *answerRepository) DeleteByTestID(ctx context.Context, testID uint) (int64, error) {
	db := r.db.WithContext(ctx)
	results := db.Model(&model.TestResult{}).Select("id").Where("test_id = ?", testID)
	questions := db.Model(&model.Question{}).Select("id").Where("test_id = ?", testID)
	res := db.Where("test_result_id IN (?) OR question_id IN (?)", results, questions).Delete(&model.Answer{})
	return res.RowsAffected, res.Error
}

func (r *answerRepository) DeleteByQuestionID(ctx context.Context, questionID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&model.Answer{})
	return res.RowsAffected, res.Error
}

func (r *answerRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Answer{})
	return res.RowsAffected, res.Error
}
