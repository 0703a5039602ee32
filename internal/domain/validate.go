package domain

import "fmt"

// ValidMarks reports whether marks is within [MinMarks, MaxMarks].
func ValidMarks(marks int) bool {
	return marks >= MinMarks && marks <= MaxMarks
}

// Validate checks quiz content before it is stored. Marks are checked for
// every question first so a bad mark is always reported as such. Title,
// question text and time limit are free-form.
func (in QuizInput) Validate() error {
	for i, q := range in.Questions {
		if !ValidMarks(q.Marks) {
			return NewValidationError(fmt.Sprintf("questions[%d].marks", i), ErrInvalidMarks)
		}
	}
	if len(in.Questions) == 0 {
		return NewValidationError("questions", "Quiz must have at least one question")
	}
	seen := make(map[string]struct{}, len(in.Questions))
	for i, q := range in.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if len(q.Options) != OptionsPerQuestion {
			return NewValidationError(field+".options", fmt.Sprintf("Each question needs exactly %d options", OptionsPerQuestion))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return NewValidationError(field+".correctAnswer", "Correct answer must point at one of the options")
		}
		if q.ID == "" {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			return NewValidationError(field+".id", "Question ids must be unique within a quiz")
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
