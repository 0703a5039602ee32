package app

import (
	"math"

	"quiz-portal/internal/domain"
)

// Score replays responses against the quiz in question order. A question adds
// its marks only when a response exists and matches the correct answer.
func Score(quiz domain.Quiz, responses map[string]int) int {
	score := 0
	for _, question := range quiz.Questions {
		selected, ok := responses[question.ID]
		if ok && selected == question.CorrectAnswer {
			score += question.Marks
		}
	}
	return score
}

// Stats folds sessions into the attempt count and average score over the
// completed ones. The average is rounded to two decimals and is 0 without attempts.
func Stats(sessions []domain.Session) (attempts int, average float64) {
	total := 0
	for _, session := range sessions {
		if !session.Completed {
			continue
		}
		attempts++
		if session.Score != nil {
			total += *session.Score
		}
	}
	if attempts == 0 {
		return 0, 0
	}
	return attempts, math.Round(float64(total)/float64(attempts)*100) / 100
}
