package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Test struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	AuthorID    uint           `json:"author_id" gorm:"not null;index"`
	CategoryID  *uint          `json:"category_id" gorm:"index"`
	IsPrivate   bool           `json:"is_private" gorm:"not null;default:false;index"`
	Questions   datatypes.JSON `json:"questions" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author   User      `json:"author" gorm:"foreignKey:AuthorID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	// Computed fields (not stored)
	LikesCount int64 `json:"likes_count" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}

// Answer is one selectable option of a question.
type Answer struct {
	ID   int64  `json:"id" validate:"required"`
	Text string `json:"text" validate:"required,max=500"`
}

// Question is stored inside Test.Questions as part of a single JSON blob,
// never as its own row.
type Question struct {
	ID        int64    `json:"id" validate:"required"`
	Text      string   `json:"text" validate:"required,max=1000"`
	Answers   []Answer `json:"answers" validate:"required,min=2,dive"`
	CorrectID *int64   `json:"correct_id"`
}

// EncodeQuestions marshals questions into the stored blob form.
func EncodeQuestions(questions []Question) (datatypes.JSON, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	return datatypes.JSON(data), nil
}

// DecodeQuestions unmarshals the stored blob back into question values.
func (t *Test) DecodeQuestions() ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal(t.Questions, &questions); err != nil {
		return nil, fmt.Errorf("decode questions for test %d: %w", t.ID, err)
	}
	return questions, nil
}

// AnswerKey maps question ID to the ID of its correct answer. Questions
// without a correct answer configured are omitted and can never be matched.
func AnswerKey(questions []Question) map[int64]int64 {
	key := make(map[int64]int64, len(questions))
	for _, q := range questions {
		if q.CorrectID != nil {
			key[q.ID] = *q.CorrectID
		}
	}
	return key
}
