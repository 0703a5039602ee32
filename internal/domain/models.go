package domain

import "time"

const (
	// OptionsPerQuestion is the fixed number of choices on every question.
	OptionsPerQuestion = 4
	// MinMarks and MaxMarks bound the points a question is worth.
	MinMarks = 1
	MaxMarks = 10
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Marks         int      `json:"marks"`
}

// Quiz is an ordered collection of questions authored by the administrator.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	TimeLimit *int       `json:"timeLimit,omitempty"` // minutes
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalMarks is the highest score a session can reach on this quiz.
func (q Quiz) TotalMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}

// QuizInput carries the admin-editable fields of a quiz.
type QuizInput struct {
	Title     string
	Questions []Question
	TimeLimit *int
}

// QuizSummary is a quiz annotated with statistics over completed sessions.
type QuizSummary struct {
	Quiz
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
}

// Session is one participant's attempt at one quiz.
type Session struct {
	ID          string         `json:"id"`
	AccessCode  string         `json:"accessCode"`
	Username    string         `json:"username"`
	QuizID      string         `json:"quizId"`
	Responses   map[string]int `json:"responses"` // questionID -> selected option
	Score       *int           `json:"score,omitempty"`
	Completed   bool           `json:"completed"`
	CreatedAt   time.Time      `json:"createdAt"`
	StartTime   time.Time      `json:"startTime"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// Answer is a single stored response.
type Answer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
}

// SessionView is what a participant sees when resuming via access code. Quiz
// is nil when the session references a quiz that no longer exists.
type SessionView struct {
	Quiz      *Quiz      `json:"quiz"`
	Session   Session    `json:"userResponse"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// QuizReport gathers everything the admin export needs for a single quiz.
type QuizReport struct {
	Quiz         Quiz      `json:"quiz"`
	TotalMarks   int       `json:"totalMarks"`
	Attempts     int       `json:"attempts"`
	AverageScore float64   `json:"averageScore"`
	Sessions     []Session `json:"sessions"`
}
