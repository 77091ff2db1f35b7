package dto

import "time"

// TestView is a test as seen by a particular caller. Pointer fields are nil
// (and omitted from JSON) when the caller's role may not see them.
type TestView struct {
	ID                        uint       `json:"id"`
	Name                      *string    `json:"name,omitempty"`
	DisplayName               string     `json:"display_name"`
	Description               string     `json:"description"`
	MethodicalRecommendations *string    `json:"methodical_recommendations,omitempty"`
	TotalQuestions            int        `json:"total_questions"`
	TimeLimit                 int        `json:"time_limit"`
	IsActive                  *bool      `json:"is_active,omitempty"`
	CreatedAt                 *time.Time `json:"created_at,omitempty"`
}

// QuestionView is a question as seen by a particular caller.
type QuestionView struct {
	ID              uint    `json:"id"`
	TestID          *uint   `json:"test_id,omitempty"`
	QuestionNumber  int     `json:"question_number"`
	ImagePath       *string `json:"image_path,omitempty"`
	QuestionText    *string `json:"question_text,omitempty"`
	NumberOfOptions int     `json:"number_of_options"`
	CorrectAnswer   *int    `json:"correct_answer,omitempty"`
}

type TestListResponse struct {
	Tests []TestView `json:"tests"`
}

type TestWithQuestionsDTO struct {
	Test      TestView       `json:"test"`
	Questions []QuestionView `json:"questions"`
}

// CreateTestRequest is the admin payload for a new test; questions are added separately.
type CreateTestRequest struct {
	Name                      string  `json:"name" binding:"required"`
	DisplayName               string  `json:"display_name" binding:"required"`
	Description               string  `json:"description" binding:"required"`
	MethodicalRecommendations *string `json:"methodical_recommendations"`
	TimeLimit                 *int    `json:"time_limit"` // minutes, defaults to 60, 0 = unlimited
}

type UpdateTestRequest struct {
	Name                      *string `json:"name"`
	DisplayName               *string `json:"display_name"`
	Description               *string `json:"description"`
	MethodicalRecommendations *string `json:"methodical_recommendations"`
	TimeLimit                 *int    `json:"time_limit"`
	IsActive                  *bool   `json:"is_active"`
}

// CreateQuestionRequest arrives as multipart form fields next to an optional "image" file.
type CreateQuestionRequest struct {
	TestID          uint    `form:"test_id" json:"test_id" binding:"required"`
	QuestionNumber  int     `form:"question_number" json:"question_number" binding:"required"`
	QuestionText    *string `form:"question_text" json:"question_text"`
	NumberOfOptions int     `form:"number_of_options" json:"number_of_options" binding:"required"`
	CorrectAnswer   int     `form:"correct_answer" json:"correct_answer" binding:"required"`
}

type UpdateQuestionRequest struct {
	QuestionNumber  *int    `form:"question_number" json:"question_number"`
	QuestionText    *string `form:"question_text" json:"question_text"`
	NumberOfOptions *int    `form:"number_of_options" json:"number_of_options"`
	CorrectAnswer   *int    `form:"correct_answer" json:"correct_answer"`
	RemoveImage     bool    `form:"remove_image" json:"remove_image"`
}
