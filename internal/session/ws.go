package session

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WSTransport renders prompts over a websocket connection. Writes are
// serialized because prompts come from both the reader loop and session
// teardown.
type WSTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (t *WSTransport) send(m wsMsg) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteJSON(m)
}

func (t *WSTransport) Render(p Prompt) error {
	return t.send(wsMsg{Type: "prompt", Data: p})
}

func (t *WSTransport) Close(reason string) {
	_ = t.send(wsMsg{Type: "closed", Data: map[string]string{"reason": reason}})
	_ = t.conn.Close()
}

// WSHandler upgrades the connection and runs the reader loop. The first
// message must be a hello binding the user id; after that only action and
// command messages from that user are accepted.
func WSHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		t := &WSTransport{conn: conn}

		var hello clientIn
		if err := conn.ReadJSON(&hello); err != nil || hello.Type != "hello" {
			_ = t.send(wsMsg{Type: "error", Data: "expected hello"})
			_ = conn.Close()
			return
		}
		var who struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(hello.Data, &who); err != nil || who.ID == "" {
			_ = t.send(wsMsg{Type: "error", Data: "hello needs a user id"})
			_ = conn.Close()
			return
		}
		userID := who.ID
		log.Printf("ws: connect id=%s from=%s", userID, r.RemoteAddr)
		_ = t.send(wsMsg{Type: "you", Data: map[string]string{"id": userID}})

		go wsReader(m, t, userID)
	}
}

func wsReader(m *Manager, t *WSTransport, userID string) {
	open := false
	defer func() {
		log.Printf("ws: closed id=%s", userID)
		if open {
			m.CloseSession(userID, "connection closed")
		} else {
			_ = t.conn.Close()
		}
	}()
	for {
		var in clientIn
		if err := t.conn.ReadJSON(&in); err != nil {
			log.Printf("ws: read error id=%s: %v", userID, err)
			return
		}
		switch in.Type {
		case "open":
			p, err := m.Open(userID, t)
			if err != nil {
				_ = t.send(wsMsg{Type: "error", Data: "not registered; use the register command first"})
				continue
			}
			open = true
			if err := t.Render(p); err != nil {
				return
			}
		case "action":
			var a struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(in.Data, &a)
			p, err := m.HandleAction(userID, a.ID)
			if err != nil {
				_ = t.send(wsMsg{Type: "error", Data: err.Error()})
				continue
			}
			if err := t.Render(p); err != nil {
				return
			}
		case "command":
			var c struct {
				Text string `json:"text"`
			}
			_ = json.Unmarshal(in.Data, &c)
			reply, err := m.HandleCommand(userID, c.Text)
			if err != nil {
				_ = t.send(wsMsg{Type: "error", Data: err.Error()})
				continue
			}
			_ = t.send(wsMsg{Type: "reply", Data: reply})
		default:
			log.Printf("ws: unknown message type %q from %s", in.Type, userID)
		}
	}
}
