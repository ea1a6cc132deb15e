package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lenslate/lenslate/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong to the deployment's proxy layer.
		return true
	},
}

// wsRequest is one annotation request over the socket. Image carries the
// encoded photo bytes (base64 in JSON).
type wsRequest struct {
	Image     []byte                    `json:"image"`
	Lines     []pipeline.RecognizedLine `json:"lines"`
	ImageID   string                    `json:"imageId,omitempty"`
	Source    string                    `json:"source,omitempty"`
	Target    string                    `json:"target,omitempty"`
	Debug     bool                      `json:"debug,omitempty"`
	RequestID string                    `json:"requestId,omitempty"`
}

// wsMessage is a frame sent to the client. Type is "progress", "result", or
// "error".
type wsMessage struct {
	Type      string           `json:"type"`
	Stage     string           `json:"stage,omitempty"`
	Lines     int              `json:"lines,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	RequestID string           `json:"requestId,omitempty"`
}

// websocketHandler streams per-stage progress while annotating photos sent
// over the socket.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	s.logger.Info("websocket connected", "remote", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// One session per connection: a new frame on this socket supersedes the
	// previous one without touching other clients.
	session := s.engine.NewSession()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("websocket read", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType != websocket.TextMessage {
			continue
		}
		s.handleWebsocketRequest(r.Context(), conn, session, data)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

func (s *Server) handleWebsocketRequest(ctx context.Context, conn *websocket.Conn, session *pipeline.Session, data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWS(conn, wsMessage{Type: "error", Error: "invalid request payload"})
		return
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.sendWS(conn, wsMessage{Type: "error", Error: "invalid image", RequestID: req.RequestID})
		return
	}

	opts := pipeline.Options{
		ImageID: req.ImageID,
		Source:  s.source,
		Target:  s.target,
		Debug:   req.Debug,
		Progress: func(stage string, lines int) {
			s.sendWS(conn, wsMessage{
				Type:      "progress",
				Stage:     stage,
				Lines:     lines,
				RequestID: req.RequestID,
			})
		},
	}
	if err := parseTagInto(req.Source, &opts.Source); err != nil {
		s.sendWS(conn, wsMessage{Type: "error", Error: err.Error(), RequestID: req.RequestID})
		return
	}
	if err := parseTagInto(req.Target, &opts.Target); err != nil {
		s.sendWS(conn, wsMessage{Type: "error", Error: err.Error(), RequestID: req.RequestID})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	annotated, err := session.Annotate(ctx, img, req.Lines, opts)
	if err != nil {
		s.sendWS(conn, wsMessage{
			Type:      "error",
			Error:     fmt.Sprintf("annotation failed: %v", err),
			RequestID: req.RequestID,
		})
		return
	}

	bounds := img.Bounds()
	s.sendWS(conn, wsMessage{
		Type:      "result",
		RequestID: req.RequestID,
		Result: &pipeline.Result{
			ImageID: req.ImageID,
			Width:   bounds.Dx(),
			Height:  bounds.Dy(),
			Lines:   annotated,
		},
	})
}

func (s *Server) sendWS(conn *websocket.Conn, msg wsMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal websocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.logger.Error("write websocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
