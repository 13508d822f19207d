package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/pipeline"
)

// Websocket message types
const (
	MessageStage  = "stage"
	MessageResult = "result"
	MessageError  = "error"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Any origin may connect; access is gated by requireAuth when enabled.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMessage is one frame sent on /ws/generate
type StreamMessage struct {
	Type     string                      `json:"type"`
	Stage    *pipeline.StageEvent        `json:"stage,omitempty"`
	Response *chatbot.GenerationResponse `json:"response,omitempty"`
	Error    string                      `json:"error,omitempty"`
}

// streamGenerate reads one GenerationRequest, streams stage events while the
// run progresses, sends the final response and closes the connection.
func (s *Server) streamGenerate(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	send := func(msg StreamMessage) {
		mu.Lock()
		defer mu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
		}
	}

	var req chatbot.GenerationRequest
	if err := conn.ReadJSON(&req); err != nil {
		send(StreamMessage{Type: MessageError, Error: "invalid request: " + err.Error()})
		return
	}

	ctx := pipeline.WithObserver(c.Request.Context(), func(ev pipeline.StageEvent) {
		send(StreamMessage{Type: MessageStage, Stage: &ev})
	})
	resp, err := s.opts.Generator.Run(ctx, &req)
	if err != nil {
		send(StreamMessage{Type: MessageError, Error: "generation not started: " + err.Error()})
		return
	}
	send(StreamMessage{Type: MessageResult, Response: resp})

	mu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
	mu.Unlock()
}
