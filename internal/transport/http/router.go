package http

import (
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"quiz-portal/internal/app"
)

// RouterOptions configures the outer HTTP surface.
type RouterOptions struct {
	// Prefix is mounted in front of every API route, e.g. "/api".
	Prefix         string
	AllowedOrigins []string
	// AccessLog disables the combined access log when false.
	AccessLog bool
}

// NewRouter wires the admin, participant and play handlers behind CORS,
// panic recovery and access logging.
func NewRouter(quizzes *app.QuizService, sessions *app.SessionService, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r
	if prefix := strings.TrimRight(opts.Prefix, "/"); prefix != "" {
		api = r.PathPrefix(prefix).Subrouter()
	}
	NewAdminHandler(quizzes).SetupRoutes(api)
	NewParticipantHandler(sessions).SetupRoutes(api)
	NewPlayHandler(sessions).SetupRoutes(api)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHeaders := handlers.AllowedHeaders([]string{"Content-Type", "Authorization"})
	corsOrigins := handlers.AllowedOrigins(origins)
	corsMethods := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	var h http.Handler = handlers.CORS(corsHeaders, corsOrigins, corsMethods)(r)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	if opts.AccessLog {
		h = handlers.CombinedLoggingHandler(os.Stderr, h)
	}
	return h
}
