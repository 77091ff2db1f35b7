package dto

import (
	"encoding/json"
	"time"
)

type StartAttemptRequest struct {
	TestID uint `json:"test_id" binding:"required"`
}

type StartAttemptResponse struct {
	Message      string `json:"message"`
	TestResultID uint   `json:"test_result_id"`
}

type SubmitAnswerRequest struct {
	TestResultID   uint `json:"test_result_id" binding:"required"`
	QuestionID     uint `json:"question_id" binding:"required"`
	SelectedAnswer int  `json:"selected_answer" binding:"required"`
}

type SubmitAnswerResponse struct {
	Message   string `json:"message"`
	IsCorrect *bool  `json:"is_correct,omitempty"` // privileged callers only
}

type CompleteAttemptRequest struct {
	TestResultID uint `json:"test_result_id" binding:"required"`
	TimeSpent    *int `json:"time_spent"` // seconds
	ShouldSave   bool `json:"should_save"`
}

type CompletedResultDTO struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	TimeSpent      *int    `json:"time_spent,omitempty"`
}

type CompleteAttemptResponse struct {
	Message string             `json:"message"`
	Result  CompletedResultDTO `json:"result"`
}

// ResultSummaryDTO is one row in any list of results.
type ResultSummaryDTO struct {
	ID              uint       `json:"id"`
	TestID          uint       `json:"test_id"`
	TestName        *string    `json:"test_name,omitempty"`
	TestDisplayName string     `json:"test_display_name"`
	UserID          *uint      `json:"user_id,omitempty"`
	UserName        string     `json:"user_name,omitempty"`
	Score           int        `json:"score"`
	TotalQuestions  int        `json:"total_questions"`
	Percentage      float64    `json:"percentage"`
	TimeSpent       *int       `json:"time_spent,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type ResultListResponse struct {
	Results []ResultSummaryDTO `json:"results"`
}

// AnswerView is a recorded answer; correctness fields are withheld from plain users.
type AnswerView struct {
	QuestionID     uint  `json:"question_id"`
	QuestionNumber int   `json:"question_number"`
	SelectedAnswer int   `json:"selected_answer"`
	CorrectAnswer  *int  `json:"correct_answer,omitempty"`
	IsCorrect      *bool `json:"is_correct,omitempty"`
}

type AttemptDetailDTO struct {
	ID             uint            `json:"id"`
	Test           TestView        `json:"test"`
	UserID         *uint           `json:"user_id,omitempty"`
	Status         string          `json:"status"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Percentage     float64         `json:"percentage"`
	IsSaved        bool            `json:"is_saved"`
	TimeSpent      *int            `json:"time_spent,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Interpretation json.RawMessage `json:"interpretation,omitempty"`
	Answers        []AnswerView    `json:"answers"`
	CreatedAt      time.Time       `json:"created_at"`
}
