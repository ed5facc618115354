package signal

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/tracing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	MessageSnapshot = "snapshot"
	MessageProgress = "progress"
	MessageDone     = "done"
)

// ProgressMessage is one frame sent to the dashboard while it watches a job.
type ProgressMessage struct {
	Type     string           `json:"type"`
	JobID    domain.JobID     `json:"jobId"`
	Status   domain.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Step     string           `json:"step,omitempty"`
	Toast    *domain.Toast    `json:"toast,omitempty"`
	Job      *domain.Job      `json:"job,omitempty"`
}

// ConnectionObserver is told when progress sockets open and close.
type ConnectionObserver interface {
	WebSocketOpened()
	WebSocketClosed()
}

type JobStreamConfig struct {
	PingInterval   time.Duration
	PongTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// JobStreamServer pushes job progress to browsers over WebSocket.
type JobStreamServer struct {
	jobs     ports.JobRunner
	observer ConnectionObserver
	cfg      JobStreamConfig
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active map[*websocket.Conn]struct{}

	logger *zap.SugaredLogger
}

func NewJobStreamServer(jobs ports.JobRunner, cfg JobStreamConfig, observer ConnectionObserver, logger *zap.SugaredLogger) *JobStreamServer {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.PongTimeout <= cfg.PingInterval {
		cfg.PongTimeout = 2 * cfg.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &JobStreamServer{
		jobs:     jobs,
		observer: observer,
		cfg:      cfg,
		active:   make(map[*websocket.Conn]struct{}),
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *JobStreamServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Serve streams the job to the connection until it finishes or the client goes away.
func (s *JobStreamServer) Serve(w http.ResponseWriter, r *http.Request, caller *domain.User, id domain.JobID) {
	events, unsubscribe := s.jobs.Subscribe(id)
	defer unsubscribe()

	snapshot, err := s.jobs.Get(r.Context(), caller, id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "job_id", id, "error", err)
		return
	}
	s.track(conn)
	defer s.untrack(conn)

	s.logger.Debugw("job stream opened", "job_id", id, "user_id", caller.ID)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	// The client never sends data; reading only services pongs and close frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debugw("job stream read error", "job_id", id, "error", err)
				}
				return
			}
		}
	}()

	if err := s.write(r.Context(), conn, ProgressMessage{
		Type:     MessageSnapshot,
		JobID:    snapshot.ID,
		Status:   snapshot.Status,
		Progress: snapshot.Progress,
		Step:     snapshot.Step,
		Toast:    snapshot.Toast,
		Job:      snapshot,
	}); err != nil {
		return
	}

	sent := snapshot.Progress
	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				s.closeNormally(conn)
				return
			}
			// events queued before the snapshot was taken can be older than it
			if !event.Status.Terminal() && event.Progress < sent {
				continue
			}
			sent = event.Progress
			msg := ProgressMessage{
				Type:     MessageProgress,
				JobID:    event.JobID,
				Status:   event.Status,
				Progress: event.Progress,
				Step:     event.Step,
				Toast:    event.Toast,
			}
			if event.Status.Terminal() {
				msg.Type = MessageDone
				if job, err := s.jobs.Get(r.Context(), caller, id); err == nil {
					msg.Job = job
				}
			}
			if err := s.write(r.Context(), conn, msg); err != nil {
				return
			}

		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debugw("job stream ping failed", "job_id", id, "error", err)
				return
			}

		case <-closed:
			return
		}
	}
}

func (s *JobStreamServer) write(ctx context.Context, conn *websocket.Conn, msg ProgressMessage) error {
	_, span := tracing.TraceWebSocketMessage(ctx, msg.Type, string(msg.JobID))
	defer span.End()

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debugw("job stream write failed", "job_id", msg.JobID, "error", err)
		return err
	}
	return nil
}

func (s *JobStreamServer) closeNormally(conn *websocket.Conn) {
	deadline := time.Now().Add(s.cfg.WriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"), deadline)
}

func (s *JobStreamServer) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.active[conn] = struct{}{}
	s.mu.Unlock()
	if s.observer != nil {
		s.observer.WebSocketOpened()
	}
}

func (s *JobStreamServer) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.active, conn)
	s.mu.Unlock()
	conn.Close()
	if s.observer != nil {
		s.observer.WebSocketClosed()
	}
}

// ActiveConnections returns the number of open progress sockets.
func (s *JobStreamServer) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// CloseAll drops every open socket with a going-away frame, for shutdown.
func (s *JobStreamServer) CloseAll() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.active))
	for c := range s.active {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	deadline := time.Now().Add(s.cfg.WriteTimeout)
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		c.Close()
	}
}
