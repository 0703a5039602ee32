package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golang/glog"

	"quiz-portal/internal/domain"
)

const genericErrorMessage = "Something went wrong!"

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		glog.Errorf("encoding response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Anything unexpected is
// logged here and reported to the client only as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		glog.V(4).Infof("%s %s: %d %v", r.Method, r.URL.Path, status, err)
	}
	writeJSON(w, status, errorBody{Error: message})
}

func classify(err error) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "Quiz not found"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "Quiz session not found"
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrOptionOutOfRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSessionCompleted):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, genericErrorMessage
	}
}
