package model

import (
	"time"
)

// Answer is unique per (TestResultID, QuestionID); resubmission overwrites the row.
type Answer struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	TestResultID   uint      `json:"test_result_id" gorm:"not null;uniqueIndex:idx_answer_result_question"`
	QuestionID     uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_result_question;index"`
	Question       Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE;"`
	SelectedAnswer int       `json:"selected_answer" gorm:"not null"`
	IsCorrect      bool      `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
