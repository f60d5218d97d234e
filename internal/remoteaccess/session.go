package remoteaccess

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Frame types exchanged on /connect.
const (
	FrameHello    = "hello"
	FrameLaunch   = "launch"
	FrameLaunched = "launched"
	FramePing     = "ping"
	FramePong     = "pong"
	FrameError    = "error"
)

// Frame is one JSON message on a session.
type Frame struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Message string `json:"message,omitempty"`
}

type session struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
}

func (s *session) send(f Frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) close() error {
	var err error
	s.once.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "host suspending"),
			time.Now().Add(closeWriteTimeout))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Service) handleConnect(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	sess := &session{id: uuid.NewString(), conn: conn}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		sess.close()
		return
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log := s.logger.With(zap.String("session", sess.id))
	log.Info("Session opened", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
		sess.close()
		log.Info("Session closed")
	}()

	if err := sess.send(Frame{Type: FrameHello, Session: sess.id}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f Frame
		if err := sonic.Unmarshal(data, &f); err != nil {
			sess.send(Frame{Type: FrameError, Message: "malformed frame"})
			continue
		}

		switch f.Type {
		case FrameLaunch:
			log.Info("Connection request, launching")
			s.launcher.Launch()
			err = sess.send(Frame{Type: FrameLaunched, Session: sess.id})
		case FramePing:
			err = sess.send(Frame{Type: FramePong})
		default:
			err = sess.send(Frame{Type: FrameError, Message: "unknown frame type " + f.Type})
		}
		if err != nil {
			return
		}
	}
}
