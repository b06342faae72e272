package diagrams

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/internal/shared/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 16
)

// Client message types.
const (
	msgOps  = "ops"
	msgLoad = "load"
	msgSave = "save"
	msgPing = "ping"
)

type clientMessage struct {
	Type  string `json:"type"`
	Ops   []Op   `json:"ops,omitempty"`
	State *State `json:"state,omitempty"`
}

type serverMessage struct {
	Type      string     `json:"type"`
	State     *State     `json:"state,omitempty"`
	ID        string     `json:"id,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Message   string     `json:"message,omitempty"`
	Index     *int       `json:"index,omitempty"`
}

// liveSession is one connection's editor. Messages are handled one at a time
// by the connection's read loop.
type liveSession struct {
	svc    *Service
	userID string
	guest  bool
	editor *Editor
}

func (s *liveSession) stateMessage() serverMessage {
	st := s.editor.State()
	return serverMessage{Type: "state", State: &st}
}

func errorMessage(msg string) serverMessage {
	return serverMessage{Type: "error", Message: msg}
}

// handle processes one client message and returns the replies to send.
func (s *liveSession) handle(ctx context.Context, raw []byte) []serverMessage {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return []serverMessage{errorMessage("invalid message")}
	}
	switch msg.Type {
	case msgOps:
		if err := s.editor.ApplyAll(msg.Ops); err != nil {
			out := errorMessage(err.Error())
			var opErr *OpError
			if errors.As(err, &opErr) {
				out.Index = &opErr.Index
			}
			return []serverMessage{out, s.stateMessage()}
		}
		return []serverMessage{s.stateMessage()}
	case msgLoad:
		if msg.State == nil {
			return []serverMessage{errorMessage("state is required")}
		}
		editor, err := Load(*msg.State)
		if err != nil {
			return []serverMessage{errorMessage(err.Error())}
		}
		s.editor = editor
		return []serverMessage{s.stateMessage()}
	case msgSave:
		if s.guest {
			return []serverMessage{errorMessage("Sign in to save diagrams")}
		}
		saved, err := s.svc.Save(ctx, s.userID, s.editor.Diagram())
		if err != nil {
			return []serverMessage{errorMessage("failed to save diagram")}
		}
		return []serverMessage{{Type: "saved", ID: saved.ID, CreatedAt: &saved.CreatedAt}}
	case msgPing:
		return []serverMessage{{Type: "pong"}}
	default:
		return []serverMessage{errorMessage("unknown message type")}
	}
}

// live upgrades to a websocket editing session. ?id= starts from a saved diagram.
func (h *Handler) live(c *gin.Context) {
	ctx := c.Request.Context()
	sess := &liveSession{
		svc:    h.Svc,
		userID: middleware.UserIDFromContext(c),
		guest:  middleware.IsGuest(c),
		editor: NewEditor(),
	}
	if id := c.Query("id"); id != "" {
		saved, err := h.Svc.Get(ctx, sess.userID, id)
		if err != nil {
			writeError(c, err, "failed to load diagram")
			return
		}
		editor, err := Load(State{Diagram: saved.Diagram})
		if err != nil {
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_diagram", err.Error(), nil)
			return
		}
		sess.editor = editor
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("diagram.ws_upgrade_failed", map[string]any{"user_id": sess.userID, "error": err})
		return
	}
	telemetry.Info("diagram.ws_open", map[string]any{"user_id": sess.userID})

	send := make(chan []byte, sendBuffer)
	done := make(chan struct{})
	go writePump(conn, send, done)

	enqueue := func(msgs ...serverMessage) bool {
		for _, m := range msgs {
			data, err := json.Marshal(m)
			if err != nil {
				continue
			}
			select {
			case send <- data:
			case <-done:
				return false
			}
		}
		return true
	}

	readPump(conn, func(raw []byte) bool {
		return enqueue(sess.handle(ctx, raw)...)
	}, func() bool {
		return enqueue(sess.stateMessage())
	})
	close(send)
	<-done
	telemetry.Info("diagram.ws_closed", map[string]any{"user_id": sess.userID})
}

func readPump(conn *websocket.Conn, onMessage func([]byte) bool, onOpen func() bool) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	if !onOpen() {
		return
	}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				telemetry.Warn("diagram.ws_read_failed", map[string]any{"error": err})
			}
			return
		}
		if !onMessage(raw) {
			return
		}
	}
}

// writePump owns all writes to conn. It closes done and the connection when
// send is closed or a write fails.
func writePump(conn *websocket.Conn, send <-chan []byte, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
