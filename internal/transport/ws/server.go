package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/config"
	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/service"
)

const requestTimeout = 30 * time.Second

// Server upgrades HTTP requests and pumps frames between clients, the hub
// and the service.
type Server struct {
	cfg      config.WSConfig
	hub      *Hub
	service  *service.Service
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg config.WSConfig, h *Hub, svc *service.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		hub:     h,
		service: svc,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles GET /v1/ws.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Info("websocket closed", zap.String("conn_id", conn.ID), zap.Error(err))
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Debug("websocket write failed", zap.String("conn_id", conn.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *Connection, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case TypeUserMessage:
		s.handleUserMessage(conn, data)
	case TypeMood:
		s.handleMood(conn, data)
	case TypePing:
		s.hub.SendJSON(conn, BaseMessage{Type: TypePong, Ts: time.Now().UnixMilli()})
	default:
		s.sendError(conn, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleUserMessage runs the turn off the read loop. Typing and turn frames
// reach the client through the hub.
func (s *Server) handleUserMessage(conn *Connection, data []byte) {
	var msg UserMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid user_message")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if _, err := s.service.ProcessUserMessage(ctx, msg.Text); err != nil {
			s.sendServiceError(conn, err)
		}
	}()
}

func (s *Server) handleMood(conn *Connection, data []byte) {
	var msg MoodMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid mood message")
		return
	}
	emotions := make([]domain.EmotionType, 0, len(msg.Emotions))
	for _, e := range msg.Emotions {
		emotion := domain.EmotionType(e)
		if !emotion.Valid() {
			s.sendError(conn, ErrorCodeInvalidInput, "unknown emotion: "+e)
			return
		}
		emotions = append(emotions, emotion)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		current, _, err := s.service.TrackMood(ctx, domain.MoodState(msg.Mood), emotions, msg.Intensity)
		if err != nil {
			s.sendServiceError(conn, err)
			return
		}
		if current == nil {
			s.sendServiceError(conn, domain.ErrSessionNotActive)
		}
	}()
}

func (s *Server) sendServiceError(conn *Connection, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotActive):
		s.sendError(conn, ErrorCodeSessionNotActive, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		s.sendError(conn, ErrorCodeInvalidInput, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.sendError(conn, ErrorCodeBusy, "another operation is in progress")
	default:
		s.log.Error("websocket request failed", zap.String("conn_id", conn.ID), zap.Error(err))
		s.sendError(conn, ErrorCodeInternal, "internal error")
	}
}

func (s *Server) sendError(conn *Connection, code, message string) {
	if err := s.hub.SendJSON(conn, ErrorMessage{
		BaseMessage: BaseMessage{Type: TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	}); err != nil {
		s.log.Warn("send error frame failed", zap.String("conn_id", conn.ID), zap.Error(err))
	}
}
