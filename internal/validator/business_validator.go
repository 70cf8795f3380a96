package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/4brn/stddy-bddy/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// ValidateTestCreate validates test creation business rules
func (bv *BusinessValidator) ValidateTestCreate(req *TestCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateQuestionSet(req.Questions)...)

	return errors
}

// ValidateTestUpdate validates test update business rules
func (bv *BusinessValidator) ValidateTestUpdate(req *TestUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.Questions != nil {
		errors = append(errors, bv.validateQuestionSet(req.Questions)...)
	}

	return errors
}

// ValidateSubmit validates a result submission
func (bv *BusinessValidator) ValidateSubmit(req *SubmitResultRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Each question may be answered at most once
	seen := make(map[int64]bool, len(req.Answers))
	for i, answer := range req.Answers {
		if seen[answer.QuestionID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("answers[%d]", i),
				Message: "question answered more than once",
				Value:   answer.QuestionID,
				Rule:    "business_logic",
			})
		}
		seen[answer.QuestionID] = true
	}

	return errors
}

// validateQuestionSet checks cross-field rules the struct tags cannot express:
// unique question IDs, unique answer IDs inside a question, and correct
// answers referencing an existing option.
func (bv *BusinessValidator) validateQuestionSet(questions []QuestionRequest) ValidationErrors {
	var errors ValidationErrors

	seenQuestions := make(map[int64]bool, len(questions))
	for i, q := range questions {
		if seenQuestions[q.ID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: "duplicate question id",
				Value:   q.ID,
				Rule:    "business_logic",
			})
		}
		seenQuestions[q.ID] = true

		seenAnswers := make(map[int64]bool, len(q.Answers))
		for j, a := range q.Answers {
			if seenAnswers[a.ID] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].answers[%d].id", i, j),
					Message: "duplicate answer id",
					Value:   a.ID,
					Rule:    "business_logic",
				})
			}
			seenAnswers[a.ID] = true
		}

		if q.CorrectID != nil && !seenAnswers[*q.CorrectID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].correct_id", i),
				Message: "does not reference an answer of this question",
				Value:   *q.CorrectID,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Username validation (3-50 characters, alphanumeric and underscore)
	bv.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		username := strings.TrimSpace(fl.Field().String())
		return len(username) >= 3 && len(username) <= 50 && usernameRe.MatchString(username)
	})

	// Password strength validation (8-72 characters, bcrypt caps at 72 bytes)
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return len(password) >= 8 && len(password) <= 72
	})

	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("test_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Role validation
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role == models.RoleUser || role == models.RoleAdmin
	})
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "username":
		return "must be 3-50 characters of letters, digits or underscore"
	case "password_strength":
		return "must be between 8 and 72 characters"
	case "test_title":
		return "must be between 1 and 200 characters"
	case "user_role":
		return "must be a valid user role"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

// Validator wraps the business validator for service layer use
type Validator struct {
	business *BusinessValidator
}

// New creates a validator with all business rules registered
func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate validates a struct and returns ValidationErrors or nil
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator exposes the underlying business validator
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
