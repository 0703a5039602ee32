package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-portal/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// whole rejects numbers with a fractional part, e.g. marks of 2.5.
	_ = v.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	return v
}

type questionRequest struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options" validate:"len=4"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,min=0,max=3"`
	Marks         *float64 `json:"marks" validate:"required,whole,min=1,max=10"`
}

type quizRequest struct {
	Title     string            `json:"title"`
	Questions []questionRequest `json:"questions" validate:"required,min=1,dive"`
	TimeLimit *int              `json:"timeLimit"`
}

func (r quizRequest) toInput() domain.QuizInput {
	questions := make([]domain.Question, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = domain.Question{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: *q.CorrectAnswer,
			Marks:         int(*q.Marks),
		}
	}
	return domain.QuizInput{Title: r.Title, Questions: questions, TimeLimit: r.TimeLimit}
}

type startQuizRequest struct {
	Username string `json:"username"`
	QuizID   string `json:"quizId"`
}

type submitAnswerRequest struct {
	AccessCode     string `json:"accessCode" validate:"required"`
	QuestionID     string `json:"questionId" validate:"required"`
	SelectedOption *int   `json:"selectedOption" validate:"required"`
}

type submitQuizRequest struct {
	AccessCode string `json:"accessCode" validate:"required"`
}

var errInvalidBody = domain.NewValidationError("", "invalid json body")

// decodeJSON reads the request body into dst and runs struct validation.
// Failures come back as *domain.ValidationError.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// a mark sent as a string or object is still a bad mark
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.HasSuffix(typeErr.Field, "marks") {
			return domain.NewValidationError(typeErr.Field, domain.ErrInvalidMarks)
		}
		return errInvalidBody
	}
	return validationError(validate.Struct(dst))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("", "invalid input")
	}
	// a bad mark always wins so clients get the same message as the core check
	for _, fe := range fieldErrs {
		if fe.Field() == "marks" {
			return domain.NewValidationError(fieldPath(fe), domain.ErrInvalidMarks)
		}
	}
	fe := fieldErrs[0]
	return domain.NewValidationError(fieldPath(fe), describe(fe))
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	path := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", path, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s", path, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", path)
	}
}
