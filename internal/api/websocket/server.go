package websocket

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/logging"
	"github.com/fortuna/hoops/internal/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ScheduleSource supplies the records streamed to clients.
type ScheduleSource interface {
	GetAllSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error)
	GetTeamSchedule(ctx context.Context, team string, season int) ([]models.ScheduleEntry, error)
}

// Message is one frame sent to a client.
type Message struct {
	Type  string                `json:"type"` // "schedule", "done" or "error"
	Entry *models.ScheduleEntry `json:"entry,omitempty"`
	Count int                   `json:"count,omitempty"`
	Error string                `json:"error,omitempty"`
}

// Server streams a season's schedule one entry per message.
type Server struct {
	source  ScheduleSource
	logger  *zap.Logger
	router  *mux.Router
	clients atomic.Int32
}

// NewServer creates a streaming handler for /ws/ routes.
func NewServer(source ScheduleSource, logger *zap.Logger) *Server {
	s := &Server{
		source: source,
		logger: logging.OrNop(logger).Named("websocket"),
		router: mux.NewRouter(),
	}
	s.router.HandleFunc("/ws/schedule/{season:[0-9]{4}}", s.handleSchedule)
	s.router.HandleFunc("/ws/health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleSchedule upgrades the connection, sends every entry of the season
// (optionally one team's, via ?team=) and closes.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	season, _ := strconv.Atoi(mux.Vars(r)["season"])
	team := r.URL.Query().Get("team")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	s.clients.Add(1)
	defer s.clients.Add(-1)

	log := s.logger.With(zap.Int("season", season), zap.String("team", team))

	var games []models.ScheduleEntry
	if team != "" {
		games, err = s.source.GetTeamSchedule(r.Context(), team, season)
	} else {
		games, err = s.source.GetAllSchedule(r.Context(), season)
	}
	if err != nil {
		log.Warn("schedule stream failed", zap.Error(err))
		_ = s.send(conn, Message{Type: "error", Error: err.Error()})
		s.close(conn, websocket.CloseInternalServerErr, "schedule unavailable")
		return
	}

	for i := range games {
		if err := s.send(conn, Message{Type: "schedule", Entry: &games[i]}); err != nil {
			log.Debug("client went away", zap.Int("sent", i), zap.Error(err))
			return
		}
	}
	if err := s.send(conn, Message{Type: "done", Count: len(games)}); err != nil {
		return
	}
	s.close(conn, websocket.CloseNormalClosure, "")
	log.Debug("schedule streamed", zap.Int("entries", len(games)))
}

func (s *Server) send(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) close(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.clients.Load(),
	})
}

// ClientCount reports connections currently streaming.
func (s *Server) ClientCount() int {
	return int(s.clients.Load())
}
