package http

import (
	"bytes"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	"quiz-portal/internal/app"
)

// AdminHandler serves quiz authoring and reporting.
type AdminHandler struct {
	quizzes *app.QuizService
}

func NewAdminHandler(quizzes *app.QuizService) *AdminHandler {
	return &AdminHandler{quizzes: quizzes}
}

func (h *AdminHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/admin/quizzes", h.ListQuizzesFunc).Methods(http.MethodGet)
	r.HandleFunc("/admin/quizzes", h.CreateQuizFunc).Methods(http.MethodPost)
	r.HandleFunc("/admin/quizzes/{id}", h.GetQuizFunc).Methods(http.MethodGet)
	r.HandleFunc("/admin/quizzes/{id}", h.UpdateQuizFunc).Methods(http.MethodPut)
	r.HandleFunc("/admin/quizzes/{id}", h.DeleteQuizFunc).Methods(http.MethodDelete)
	r.HandleFunc("/admin/quizzes/{id}/report", h.ReportFunc).Methods(http.MethodGet)
	r.HandleFunc("/admin/quizzes/{id}/export", h.ExportFunc).Methods(http.MethodGet)
	glog.V(2).Infof("set up admin routes")
}

func (h *AdminHandler) ListQuizzesFunc(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.quizzes.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *AdminHandler) CreateQuizFunc(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	glog.V(2).Infof("created quiz %s with %d questions", quiz.ID, len(quiz.Questions))
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *AdminHandler) GetQuizFunc(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *AdminHandler) UpdateQuizFunc(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), mux.Vars(r)["id"], req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *AdminHandler) DeleteQuizFunc(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.quizzes.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	glog.V(2).Infof("deleted quiz %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted successfully"})
}

func (h *AdminHandler) ReportFunc(w http.ResponseWriter, r *http.Request) {
	report, err := h.quizzes.Report(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) ExportFunc(w http.ResponseWriter, r *http.Request) {
	report, err := h.quizzes.Report(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := writeWorkbook(&buf, report); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(report.Quiz.Title)+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		glog.Warningf("writing export for quiz %s: %v", report.Quiz.ID, err)
	}
}
