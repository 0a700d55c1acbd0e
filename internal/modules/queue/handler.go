package queue

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cutline/internal/domain"
	"cutline/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// RegisterInternalRoutes mounts the store-trigger endpoints. The group
// must already carry the internal token middleware.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/booking-created", h.BookingCreated)
	rg.POST("/events/booking-updated", h.BookingUpdated)
	rg.POST("/sweep", h.Sweep)
}

// RegisterRoutes mounts the authenticated queue read endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/salons/:id/queue", h.GetQueue)
}

// RegisterWatchRoutes mounts the websocket endpoint. It sits outside
// the JWT middleware because browsers cannot set headers on websocket
// dials; the handler checks nothing itself since queue contents are
// not sensitive. Tighten here if that changes.
func (h *Handler) RegisterWatchRoutes(rg *gin.RouterGroup) {
	rg.GET("/salons/:id/queue/watch", h.WatchQueue)
}

func (h *Handler) BookingCreated(c *gin.Context) {
	var ev BookingCreatedEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	// errors are handled inside: triggers must not be retried forever
	_ = h.service.HandleCreated(c.Request.Context(), ev.SalonID, ev.BookingID)
	response.Success(c, http.StatusOK, gin.H{"processed": true})
}

func (h *Handler) BookingUpdated(c *gin.Context) {
	var ev BookingUpdatedEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	before := normalizeStatus(ev.BeforeStatus)
	after := normalizeStatus(ev.AfterStatus)
	_ = h.service.HandleUpdated(c.Request.Context(), ev.SalonID, ev.BookingID, before, after)
	response.Success(c, http.StatusOK, gin.H{"processed": true})
}

// Sweep runs one expiry pass on demand, the same work the scheduler
// does on its interval. Useful for ops and for environments running
// with SCHEDULER_ENABLED=false.
func (h *Handler) Sweep(c *gin.Context) {
	forced, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SWEEP_FAILED", err.Error())
		return
	}
	response.Success(c, http.StatusOK, SweepResponse{Forced: forced})
}

func (h *Handler) GetQueue(c *gin.Context) {
	salonID := c.Param("id")
	entries, err := h.service.Entries(c.Request.Context(), salonID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "QUEUE_READ_FAILED", "Failed to load queue")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"salon_id": salonID,
		"entries":  entries,
	})
}

// WatchQueue upgrades to a websocket and streams queue updates for one
// salon. The client gets a snapshot immediately, then a frame on every
// change.
func (h *Handler) WatchQueue(c *gin.Context) {
	salonID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("level=error msg=\"queue watch upgrade\" salon_id=%s err=%v", salonID, err)
		return
	}

	entries, err := h.service.Entries(c.Request.Context(), salonID)
	if err == nil {
		if werr := conn.WriteJSON(QueueUpdate{SalonID: salonID, Entries: entries}); werr != nil {
			_ = conn.Close()
			return
		}
	}

	h.hub.Register(salonID, conn)
	defer h.hub.Unregister(salonID, conn)

	// drain the read side so pings and closes are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func normalizeStatus(raw string) domain.BookingStatus {
	return domain.BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
}
