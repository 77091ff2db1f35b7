package model

import (
	"time"
)

const (
	MinOptions = 2
	MaxOptions = 8
)

type Question struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	TestID          uint      `json:"test_id" gorm:"not null;index"`
	QuestionNumber  int       `json:"question_number" gorm:"not null"` // 1-based, not unique per test
	ImagePath       *string   `json:"image_path,omitempty"`
	QuestionText    *string   `json:"question_text,omitempty" gorm:"type:text"`
	NumberOfOptions int       `json:"number_of_options" gorm:"not null"`
	CorrectAnswer   int       `json:"correct_answer" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsCorrect reports whether the given option matches the current correct answer.
func (q *Question) IsCorrect(selected int) bool {
	return selected == q.CorrectAnswer
}
