package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

const heartbeatInterval = 25 * time.Second

type EventsHandler struct {
	feed    ports.ChangeFeed
	logger  ports.LoggerPort
	metrics ports.MetricsPort
}

func NewEventsHandler(feed ports.ChangeFeed, logger ports.LoggerPort, metrics ports.MetricsPort) *EventsHandler {
	return &EventsHandler{feed: feed, logger: logger, metrics: metrics}
}

// @Summary Subscribe to row changes
// @Description Server-sent events stream of change events. Views refetch on every event.
// @Tags events
// @Security BearerAuth
// @Produce text/event-stream
// @Param tables query string false "Comma separated table names, all tables when empty"
// @Param events query string false "Comma separated event types (INSERT, UPDATE, DELETE, *), all types when empty"
// @Success 200 {object} domain.ChangeEvent "Stream of change events"
// @Failure 400 {object} errorResponse "Unknown event type"
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var tables []string
	for _, t := range strings.Split(c.Query("tables"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}

	var types []domain.ChangeType
	for _, raw := range strings.Split(c.Query("events"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ct, err := domain.ParseChangeType(raw)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid events filter, expected INSERT, UPDATE, DELETE or *")
			return
		}
		types = append(types, ct)
	}

	events, cancel, err := h.feed.Subscribe(c.Request.Context(), tables, types)
	if err != nil {
		h.logger.Error("Failed to subscribe to change feed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusServiceUnavailable, "Change feed unavailable")
		return
	}
	defer cancel()

	h.logger.Debug("Change feed subscriber connected", map[string]interface{}{
		"tables": tables,
		"events": types,
		"ip":     c.ClientIP(),
	})

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
