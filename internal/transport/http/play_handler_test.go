package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketPlayFlow(t *testing.T) {
	server := newTestServer(t, "")
	defer server.Close()

	quiz := createQuiz(t, server)
	code := startQuiz(t, server, "alice", quiz.ID)

	u := "ws" + server.URL[len("http"):] + "/quiz/" + code + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the session snapshot first.
	msgType, payload := readNext(conn, t)
	if msgType != "session" {
		t.Fatalf("expected session, got %s", msgType)
	}
	if _, ok := payload["quiz"]; !ok {
		t.Fatalf("expected quiz in session payload, got %v", payload)
	}

	send(t, conn, "answer", map[string]any{"questionId": "q1", "selectedOption": 1})
	msgType, payload = readNext(conn, t)
	if msgType != "answerAck" || payload["questionId"] != "q1" {
		t.Fatalf("expected answerAck for q1, got %s %v", msgType, payload)
	}

	send(t, conn, "answer", map[string]any{"questionId": "q2"})
	if msgType, _ = readNext(conn, t); msgType != "error" {
		t.Fatalf("expected error for missing option, got %s", msgType)
	}

	send(t, conn, "bogus", nil)
	if msgType, _ = readNext(conn, t); msgType != "error" {
		t.Fatalf("expected error for unknown type, got %s", msgType)
	}

	send(t, conn, "submit", nil)
	msgType, payload = readNext(conn, t)
	if msgType != "result" {
		t.Fatalf("expected result, got %s", msgType)
	}
	if score, _ := payload["score"].(float64); score != 5 {
		t.Fatalf("expected score 5, got %v", payload["score"])
	}
}

func TestWebSocketUnknownCodeRejected(t *testing.T) {
	server := newTestServer(t, "")
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/quiz/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(inboundMessage{Type: typ, Payload: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}
