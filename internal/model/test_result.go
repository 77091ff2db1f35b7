package model

import (
	"time"

	"gorm.io/datatypes"
)

type TestStatus string

const (
	StatusInProgress TestStatus = "in_progress"
	StatusCompleted  TestStatus = "completed"
	// StatusAbandoned is representable but not produced by any attempt operation.
	StatusAbandoned TestStatus = "abandoned"
)

// TestResult is one attempt at a test. UserID is nil for guest attempts.
type TestResult struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	UserID         *uint          `json:"user_id,omitempty" gorm:"index"`
	User           *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	TestID         uint           `json:"test_id" gorm:"not null;index"`
	Test           Test           `json:"test,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE;"`
	Status         TestStatus     `json:"status" gorm:"type:varchar(20);not null;default:'in_progress';index"`
	Score          int            `json:"score" gorm:"not null;default:0"`
	TotalQuestions int            `json:"total_questions" gorm:"not null;default:0"` // snapshot taken at start
	Percentage     float64        `json:"percentage" gorm:"not null;default:0"`
	IsSaved        bool           `json:"is_saved" gorm:"not null;default:false;index"`
	TimeSpent      *int           `json:"time_spent,omitempty"` // seconds
	Answers        []Answer       `json:"answers,omitempty" gorm:"foreignKey:TestResultID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Interpretation datatypes.JSON `json:"interpretation,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Percentage returns score/total*100, or 0 for an empty test.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
