package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ProgressEvent is one progress update pushed to websocket subscribers.
type ProgressEvent struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Error   string `json:"error,omitempty"`
}

// hub fans progress events out to the websocket clients watching a job.
type hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]bool
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// subscribe registers the connection and pushes the current job state to
// it. The initial write happens under the hub mutex: gorilla allows only
// one concurrent writer per connection, and publish writes under the same
// lock.
func (h *hub) subscribe(jobID string, conn *websocket.Conn, current ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[jobID] == nil {
		h.clients[jobID] = make(map[*websocket.Conn]bool)
	}
	h.clients[jobID][conn] = true

	if err := conn.WriteJSON(current); err != nil {
		h.logger.Debug("dropping websocket client on initial write", zap.Error(err))
		delete(h.clients[jobID], conn)
		conn.Close()
	}
}

func (h *hub) unsubscribe(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	if conns, ok := h.clients[jobID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, jobID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

func (h *hub) publish(event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[event.JobID] {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping slow websocket client", zap.Error(err))
			delete(h.clients[event.JobID], conn)
			conn.Close()
		}
	}
}
