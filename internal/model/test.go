package model

import (
	"time"
)

// DefaultTimeLimit is applied when a test is created without an explicit limit.
const DefaultTimeLimit = 60

type Test struct {
	ID                        uint       `gorm:"primarykey" json:"id"`
	Name                      string     `json:"name" gorm:"not null"`         // internal name, psychologists and admins only
	DisplayName               string     `json:"display_name" gorm:"not null"` // "Test 1"
	Description               string     `json:"description" gorm:"type:text;not null"`
	MethodicalRecommendations *string    `json:"methodical_recommendations,omitempty" gorm:"type:text"`
	IsActive                  bool       `json:"is_active" gorm:"not null;index"`
	TotalQuestions            int        `json:"total_questions" gorm:"not null;default:0"`
	TimeLimit                 int        `json:"time_limit" gorm:"not null;default:60"` // minutes, 0 = unlimited
	Questions                 []Question `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE;"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}
