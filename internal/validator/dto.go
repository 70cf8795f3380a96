package validator

import "github.com/4brn/stddy-bddy/internal/models"

// RegisterRequest represents the request structure for self registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password_strength"`
}

// LoginRequest represents the request structure for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AnswerRequest represents one answer option inside a question
type AnswerRequest struct {
	ID   int64  `json:"id" validate:"required"`
	Text string `json:"text" validate:"required,max=500"`
}

// QuestionRequest represents one question of a test being created or updated
type QuestionRequest struct {
	ID        int64           `json:"id" validate:"required"`
	Text      string          `json:"text" validate:"required,max=1000"`
	Answers   []AnswerRequest `json:"answers" validate:"required,min=2,dive"`
	CorrectID *int64          `json:"correct_id"`
}

// TestCreateRequest represents the request structure for creating tests
type TestCreateRequest struct {
	Title       string            `json:"title" validate:"required,test_title"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *uint             `json:"category_id"`
	IsPrivate   bool              `json:"is_private"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// TestUpdateRequest represents the request structure for updating tests
type TestUpdateRequest struct {
	Title       *string           `json:"title" validate:"omitempty,test_title"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *uint             `json:"category_id"`
	IsPrivate   *bool             `json:"is_private"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,min=1,dive"`
}

// SubmittedAnswerRequest represents one picked answer in a submission
type SubmittedAnswerRequest struct {
	QuestionID int64 `json:"question_id" validate:"required"`
	AnswerID   int64 `json:"answer_id" validate:"required"`
}

// SubmitResultRequest represents the request structure for submitting a test
type SubmitResultRequest struct {
	TestID  uint                     `json:"test_id" validate:"required"`
	Answers []SubmittedAnswerRequest `json:"answers" validate:"dive"`
}

// UserCreateRequest represents admin-side user creation
type UserCreateRequest struct {
	Username string          `json:"username" validate:"required,username"`
	Password string          `json:"password" validate:"required,password_strength"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

// UserUpdateRequest represents admin-side user updates
type UserUpdateRequest struct {
	Username *string          `json:"username" validate:"omitempty,username"`
	Password *string          `json:"password" validate:"omitempty,password_strength"`
	Role     *models.UserRole `json:"role" validate:"omitempty,user_role"`
}

// CategoryCreateRequest represents the request structure for creating categories
type CategoryCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CategoryUpdateRequest represents the request structure for renaming categories
type CategoryUpdateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// QuestionsToModel converts request questions into the stored model form
func QuestionsToModel(reqs []QuestionRequest) []models.Question {
	questions := make([]models.Question, len(reqs))
	for i, q := range reqs {
		answers := make([]models.Answer, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = models.Answer{ID: a.ID, Text: a.Text}
		}
		questions[i] = models.Question{
			ID:        q.ID,
			Text:      q.Text,
			Answers:   answers,
			CorrectID: q.CorrectID,
		}
	}
	return questions
}
