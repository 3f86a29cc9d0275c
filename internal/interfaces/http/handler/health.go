package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/interfaces/http/dto"
)

// WorkerStatus reports the persistence worker's state.
type WorkerStatus interface {
	State() dispatch.State
}

// ChannelStatus reports channel counters.
type ChannelStatus interface {
	Stats() dispatch.ChannelStats
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	BaseHandler
	worker    WorkerStatus
	channel   ChannelStatus
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(worker WorkerStatus, channel ChannelStatus) *HealthHandler {
	return &HealthHandler{
		worker:    worker,
		channel:   channel,
		startTime: time.Now(),
	}
}

// Health answers 200 while the worker runs and 503 before it starts or
// once it has stopped.
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.worker.State()
	resp := dto.HealthResponse{
		Status:      "ok",
		WorkerState: state.String(),
		Channel:     h.channel.Stats(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	}

	if state == dispatch.StateStopped || state == dispatch.StateNotStarted {
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "worker " + state.String()},
		})
		return
	}
	h.Success(c, resp)
}
