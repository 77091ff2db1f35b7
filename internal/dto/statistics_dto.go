package dto

import "time"

type TestHeaderDTO struct {
	ID                        uint    `json:"id"`
	Name                      string  `json:"name"`
	DisplayName               string  `json:"display_name"`
	MethodicalRecommendations *string `json:"methodical_recommendations,omitempty"`
}

type TestStatisticsSummary struct {
	TotalAttempts     int     `json:"total_attempts"`
	AverageScore      float64 `json:"average_score"`
	AveragePercentage float64 `json:"average_percentage"`
	AverageTime       float64 `json:"average_time"` // seconds, missing times count as 0
	MaxScore          int     `json:"max_score"`
	MinScore          int     `json:"min_score"`
}

type TestStatisticsDTO struct {
	Test       TestHeaderDTO         `json:"test"`
	Statistics TestStatisticsSummary `json:"statistics"`
	Results    []ResultSummaryDTO    `json:"results"`
}

type UserHeaderDTO struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type UserStatisticsSummary struct {
	TotalTests        int     `json:"total_tests"`
	AveragePercentage float64 `json:"average_percentage"`
}

type UserStatisticsDTO struct {
	User       UserHeaderDTO         `json:"user"`
	Statistics UserStatisticsSummary `json:"statistics"`
	Results    []ResultSummaryDTO    `json:"results"`
}

type TestAttemptCountDTO struct {
	TestID          uint   `json:"test_id"`
	TestName        string `json:"test_name"`
	TestDisplayName string `json:"test_display_name"`
	AttemptsCount   int64  `json:"attempts_count"`
}

type OverallStatisticsDTO struct {
	TotalTests     int64                 `json:"total_tests"`
	TotalUsers     int64                 `json:"total_users"`
	TotalResults   int64                 `json:"total_results"`
	TestStatistics []TestAttemptCountDTO `json:"test_statistics"`
}

type DetailedAnswerDTO struct {
	QuestionID     uint `json:"question_id"`
	QuestionNumber int  `json:"question_number"`
	SelectedAnswer int  `json:"selected_answer"`
	CorrectAnswer  int  `json:"correct_answer"`
	IsCorrect      bool `json:"is_correct"`
}

type DetailedResultDTO struct {
	ID                        uint                `json:"id"`
	TestID                    uint                `json:"test_id"`
	TestName                  string              `json:"test_name"`
	TestDisplayName           string              `json:"test_display_name"`
	MethodicalRecommendations *string             `json:"methodical_recommendations,omitempty"`
	UserID                    *uint               `json:"user_id,omitempty"`
	UserName                  string              `json:"user_name"`
	IsGuest                   bool                `json:"is_guest"`
	Status                    string              `json:"status"`
	Score                     int                 `json:"score"`
	TotalQuestions            int                 `json:"total_questions"`
	Percentage                float64             `json:"percentage"`
	TimeSpent                 *int                `json:"time_spent,omitempty"`
	CompletedAt               *time.Time          `json:"completed_at,omitempty"`
	Answers                   []DetailedAnswerDTO `json:"answers"`
}
