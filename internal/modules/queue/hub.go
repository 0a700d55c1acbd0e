package queue

import (
	"sync"

	"github.com/gorilla/websocket"

	"cutline/internal/domain"
)

// QueueUpdate is the frame pushed to watchers whenever a salon's queue
// changes.
type QueueUpdate struct {
	SalonID string              `json:"salon_id"`
	Entries []domain.QueueEntry `json:"entries"`
}

// watcher pairs a connection with its write lock. gorilla/websocket
// allows only one concurrent writer per connection, and broadcasts
// from trigger handlers can race the sweep.
type watcher struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (w *watcher) send(update QueueUpdate) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	return w.conn.WriteJSON(update)
}

// Hub fans queue updates out to websocket watchers, keyed by salon.
type Hub struct {
	watchers map[string]map[*websocket.Conn]*watcher
	mutex    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*websocket.Conn]*watcher),
	}
}

func (h *Hub) Register(salonID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, exists := h.watchers[salonID]
	if !exists {
		set = make(map[*websocket.Conn]*watcher)
		h.watchers[salonID] = set
	}
	set[conn] = &watcher{conn: conn}
}

func (h *Hub) Unregister(salonID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if set, exists := h.watchers[salonID]; exists {
		if set[conn] != nil {
			_ = conn.Close()
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.watchers, salonID)
		}
	}
}

// Broadcast writes the update to every watcher of the salon and drops
// connections that fail. Returns how many watchers received it.
func (h *Hub) Broadcast(salonID string, update QueueUpdate) int {
	h.mutex.RLock()
	targets := make([]*watcher, 0, len(h.watchers[salonID]))
	for _, w := range h.watchers[salonID] {
		targets = append(targets, w)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, w := range targets {
		if err := w.send(update); err != nil {
			h.Unregister(salonID, w.conn)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) WatcherCount(salonID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.watchers[salonID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for salonID, set := range h.watchers {
		for conn := range set {
			_ = conn.Close()
		}
		delete(h.watchers, salonID)
	}
}
