package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
	"quiz-portal/internal/infra/memory"
)

func TestCreateAssignsIDsAndTimestamps(t *testing.T) {
	ctx := context.Background()
	quizzes, _, service := newTestQuizService()

	created, err := service.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected quiz id")
	}
	for _, q := range created.Questions {
		if q.ID == "" {
			t.Fatalf("expected question ids, got %+v", created.Questions)
		}
	}
	if !created.CreatedAt.Equal(fixedNow) || !created.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("expected timestamps %v, got %v/%v", fixedNow, created.CreatedAt, created.UpdatedAt)
	}
	if _, err := quizzes.GetQuiz(ctx, created.ID); err != nil {
		t.Fatalf("expected quiz stored: %v", err)
	}
}

func TestCreateRejectsInvalidMarks(t *testing.T) {
	ctx := context.Background()
	quizzes, _, service := newTestQuizService()

	for _, marks := range []int{0, -1, 11, 100} {
		in := validInput()
		in.Questions[1].Marks = marks
		_, err := service.Create(ctx, in)
		if !domain.IsValidation(err) {
			t.Fatalf("marks %d: expected validation error, got %v", marks, err)
		}
	}
	for _, marks := range []int{1, 10} {
		in := validInput()
		in.Questions[0].Marks = marks
		if _, err := service.Create(ctx, in); err != nil {
			t.Fatalf("marks %d: expected success, got %v", marks, err)
		}
	}

	all, err := quizzes.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected only the two valid quizzes stored, got %d", len(all))
	}
}

func TestCreateAcceptsFreeFormFields(t *testing.T) {
	ctx := context.Background()
	_, _, service := newTestQuizService()

	zero := 0
	in := validInput()
	in.Title = ""
	in.Questions[0].Text = ""
	in.TimeLimit = &zero
	quiz, err := service.Create(ctx, in)
	if err != nil {
		t.Fatalf("expected quiz with valid marks to be created, got %v", err)
	}
	if quiz.Title != "" || quiz.TimeLimit == nil || *quiz.TimeLimit != 0 {
		t.Fatalf("expected fields stored as sent, got %+v", quiz)
	}
	if app.Deadline(quiz, domain.Session{StartTime: fixedNow}) != nil {
		t.Fatalf("expected no deadline for a zero time limit")
	}
}

func TestUpdateReplacesFieldsAndKeepsQuestionIDs(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	service := app.NewQuizServiceWithClock(memory.NewQuizStore(), memory.NewSessionStore(), func() time.Time { return now })

	created := mustCreate(t, service, validInput())
	later := fixedNow.Add(time.Hour)
	now = later

	in := validInput()
	in.Title = "Renamed"
	in.Questions[0].ID = created.Questions[0].ID
	updated, err := service.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" || updated.Questions[0].ID != created.Questions[0].ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Questions[1].ID == "" || updated.Questions[1].ID == created.Questions[1].ID {
		t.Fatalf("expected fresh id for question without one, got %q", updated.Questions[1].ID)
	}
	if !updated.CreatedAt.Equal(fixedNow) || !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected createdAt kept and updatedAt stamped, got %v/%v", updated.CreatedAt, updated.UpdatedAt)
	}

	bad := validInput()
	bad.Questions[0].Marks = 11
	if _, err := service.Update(ctx, created.ID, bad); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	stored, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Renamed" {
		t.Fatalf("expected failed update to leave quiz untouched, got %q", stored.Title)
	}

	if _, err := service.Update(ctx, "missing", validInput()); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCascadesToSessions(t *testing.T) {
	ctx := context.Background()
	quizzes, sessions, service := newTestQuizService()
	tracker := app.NewSessionService(sessions, quizzes)

	quiz := mustCreate(t, service, validInput())
	other := mustCreate(t, service, validInput())
	codeA := startWithAnswers(t, tracker, "alice", quiz.ID, nil)
	codeB := startWithAnswers(t, tracker, "bob", quiz.ID, nil)
	codeC := startWithAnswers(t, tracker, "carol", other.ID, nil)

	if err := service.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, code := range []string{codeA, codeB} {
		if _, err := tracker.GetByAccessCode(ctx, code); err != domain.ErrSessionNotFound {
			t.Fatalf("expected session %s removed, got %v", code, err)
		}
	}
	if _, err := tracker.GetByAccessCode(ctx, codeC); err != nil {
		t.Fatalf("expected other quiz's session kept, got %v", err)
	}
	if err := service.Delete(ctx, quiz.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListAggregatesCompletedSessions(t *testing.T) {
	ctx := context.Background()
	quizzes, sessions, service := newTestQuizService()

	in := domain.QuizInput{
		Title: "Eight marks",
		Questions: []domain.Question{
			{Text: "a", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 0, Marks: 4},
			{Text: "b", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1, Marks: 2},
			{Text: "c", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 2, Marks: 2},
		},
	}
	quiz, err := service.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tracker := app.NewSessionService(sessions, quizzes)

	// 4 points: first question only.
	first := startWithAnswers(t, tracker, "alice", quiz.ID, map[string]int{quiz.Questions[0].ID: 0})
	// 6 points: first and second.
	second := startWithAnswers(t, tracker, "bob", quiz.ID, map[string]int{quiz.Questions[0].ID: 0, quiz.Questions[1].ID: 1})
	// never submitted, must not count
	startWithAnswers(t, tracker, "carol", quiz.ID, map[string]int{quiz.Questions[2].ID: 2})

	for code, want := range map[string]int{first: 4, second: 6} {
		score, err := tracker.SubmitQuiz(ctx, code)
		if err != nil {
			t.Fatalf("submit %s: %v", code, err)
		}
		if score != want {
			t.Fatalf("expected %d, got %d", want, score)
		}
	}

	summaries, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one quiz, got %d", len(summaries))
	}
	if summaries[0].Attempts != 2 || summaries[0].AverageScore != 5.0 {
		t.Fatalf("expected 2 attempts averaging 5.0, got %d/%v", summaries[0].Attempts, summaries[0].AverageScore)
	}

	report, err := service.Report(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalMarks != 8 || len(report.Sessions) != 3 || report.Attempts != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestListWithoutAttempts(t *testing.T) {
	ctx := context.Background()
	_, _, service := newTestQuizService()

	if _, err := service.Create(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	summaries, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summaries[0].Attempts != 0 || summaries[0].AverageScore != 0 {
		t.Fatalf("expected zero stats, got %+v", summaries[0])
	}
}

func newTestQuizService() (*memory.QuizStore, *memory.SessionStore, *app.QuizService) {
	quizzes := memory.NewQuizStore()
	sessions := memory.NewSessionStore()
	return quizzes, sessions, app.NewQuizServiceWithClock(quizzes, sessions, func() time.Time { return fixedNow })
}

func validInput() domain.QuizInput {
	return domain.QuizInput{
		Title: "Capitals",
		Questions: []domain.Question{
			{Text: "France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectAnswer: 0, Marks: 2},
			{Text: "Italy?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectAnswer: 1, Marks: 3},
		},
	}
}

func startWithAnswers(t *testing.T, tracker *app.SessionService, username, quizID string, answers map[string]int) string {
	t.Helper()
	ctx := context.Background()
	code, err := tracker.Start(ctx, username, quizID)
	if err != nil {
		t.Fatalf("start for %s: %v", username, err)
	}
	for questionID, option := range answers {
		if err := tracker.SubmitAnswer(ctx, code, questionID, option); err != nil {
			t.Fatalf("answer %s for %s: %v", questionID, username, err)
		}
	}
	return code
}

func mustCreate(t *testing.T, service *app.QuizService, in domain.QuizInput) domain.Quiz {
	t.Helper()
	quiz, err := service.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return quiz
}
