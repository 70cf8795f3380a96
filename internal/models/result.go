package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is an append-only record of one graded submission. Rows are never
// updated after creation; retaking a test inserts a new row.
type Result struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	UserID   uint           `json:"user_id" gorm:"not null;index"`
	TestID   uint           `json:"test_id" gorm:"not null;index"`
	Score    float64        `json:"score" gorm:"not null"` // percentage, 0..100
	Answers  datatypes.JSON `json:"answers" gorm:"not null"`
	Correct  int            `json:"correct" gorm:"not null"`
	Total    int            `json:"total" gorm:"not null"`
	TakenAt  time.Time      `json:"taken_at" gorm:"not null;index"`
	TestName string         `json:"test_name" gorm:"size:200"` // snapshot, survives test deletion

	// Relations. No Test relation on purpose: results outlive their test,
	// TestID and the TestName snapshot are all that remains.
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Result) TableName() string {
	return "results"
}

// SubmittedAnswer is one entry of the Answers blob: the answer the user
// picked for a question.
type SubmittedAnswer struct {
	QuestionID int64 `json:"question_id"`
	AnswerID   int64 `json:"answer_id"`
}
