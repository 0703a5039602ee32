package http

import (
	"errors"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
)

// ParticipantHandler serves the access-code flow for quiz takers.
type ParticipantHandler struct {
	sessions *app.SessionService
}

func NewParticipantHandler(sessions *app.SessionService) *ParticipantHandler {
	return &ParticipantHandler{sessions: sessions}
}

func (h *ParticipantHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/start-quiz", h.StartQuizFunc).Methods(http.MethodPost)
	r.HandleFunc("/quiz/{accessCode}", h.GetSessionFunc).Methods(http.MethodGet)
	r.HandleFunc("/submit-answer", h.SubmitAnswerFunc).Methods(http.MethodPost)
	r.HandleFunc("/submit-quiz", h.SubmitQuizFunc).Methods(http.MethodPost)
	glog.V(2).Infof("set up participant routes")
}

func (h *ParticipantHandler) StartQuizFunc(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := h.sessions.Start(r.Context(), req.Username, req.QuizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	glog.V(2).Infof("started session %s for quiz %s", code, req.QuizID)
	writeJSON(w, http.StatusOK, map[string]string{"accessCode": code})
}

func (h *ParticipantHandler) GetSessionFunc(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.GetByAccessCode(r.Context(), mux.Vars(r)["accessCode"])
	if errors.Is(err, domain.ErrSessionNotFound) {
		// participants resume by code, so an unknown code reads as a missing quiz
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Quiz not found"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ParticipantHandler) SubmitAnswerFunc(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.sessions.SubmitAnswer(r.Context(), req.AccessCode, req.QuestionID, *req.SelectedOption); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ParticipantHandler) SubmitQuizFunc(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	score, err := h.sessions.SubmitQuiz(r.Context(), req.AccessCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"score": score})
}
