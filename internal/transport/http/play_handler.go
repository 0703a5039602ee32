package http

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
)

const maxFrameBytes = 64 << 10

// PlayHandler exposes the participant flow over a websocket so a client can
// answer and submit without a request per click. Every inbound frame gets
// exactly one reply; nothing is pushed unprompted.
type PlayHandler struct {
	sessions *app.SessionService
	upgrader websocket.Upgrader
}

func NewPlayHandler(sessions *app.SessionService) *PlayHandler {
	return &PlayHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *PlayHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/quiz/{accessCode}/ws", h.ServeWS).Methods(http.MethodGet)
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type resultPayload struct {
	Score int `json:"score"`
}

// ServeWS upgrades the request and replays the REST participant operations
// for the session named in the path.
func (h *PlayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	accessCode := mux.Vars(r)["accessCode"]
	view, err := h.sessions.GetByAccessCode(r.Context(), accessCode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	if err := conn.WriteJSON(outboundMessage[domain.SessionView]{Type: "session", Payload: view}); err != nil {
		glog.Warningf("ws write error: %v", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.V(2).Infof("ws session %s closed: %v", accessCode, err)
			}
			return
		}
		if err := conn.WriteJSON(h.handle(r, accessCode, inbound)); err != nil {
			glog.Warningf("ws write error: %v", err)
			return
		}
	}
}

func (h *PlayHandler) handle(r *http.Request, accessCode string, inbound inboundMessage) interface{} {
	switch inbound.Type {
	case "answer":
		var payload struct {
			QuestionID     string `json:"questionId"`
			SelectedOption *int   `json:"selectedOption"`
		}
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" || payload.SelectedOption == nil {
			return errorFrame("invalid answer payload")
		}
		if err := h.sessions.SubmitAnswer(r.Context(), accessCode, payload.QuestionID, *payload.SelectedOption); err != nil {
			return errorFrameFor(r, err)
		}
		return outboundMessage[domain.Answer]{Type: "answerAck", Payload: domain.Answer{
			QuestionID:     payload.QuestionID,
			SelectedOption: *payload.SelectedOption,
		}}
	case "submit":
		score, err := h.sessions.SubmitQuiz(r.Context(), accessCode)
		if err != nil {
			return errorFrameFor(r, err)
		}
		return outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{Score: score}}
	default:
		return errorFrame("unsupported message type")
	}
}

func errorFrame(message string) outboundMessage[errorPayload] {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}}
}

func errorFrameFor(r *http.Request, err error) outboundMessage[errorPayload] {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		glog.Errorf("ws %s: %v", r.URL.Path, err)
	}
	return errorFrame(message)
}
