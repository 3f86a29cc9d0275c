package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/infrastructure/logger"
	"github.com/tallyzap/inventory/internal/interfaces/http/dto"
	"github.com/tallyzap/inventory/internal/interfaces/http/middleware"
)

// CommandSubmitter queues a command by action name.
type CommandSubmitter interface {
	SubmitNamed(name string, params map[string]string) (uuid.UUID, error)
}

// ResultHistory returns recent execution results, newest first.
type ResultHistory interface {
	Recent(n int) []dispatch.Result
}

// CommandHandler serves command submission and inspection.
type CommandHandler struct {
	BaseHandler
	submitter   CommandSubmitter
	history     ResultHistory
	recentLimit int
}

// NewCommandHandler creates a CommandHandler. recentLimit caps
// GET /commands/recent.
func NewCommandHandler(submitter CommandSubmitter, history ResultHistory, recentLimit int) *CommandHandler {
	if recentLimit <= 0 {
		recentLimit = dispatch.DefaultHistoryLimit
	}
	return &CommandHandler{
		submitter:   submitter,
		history:     history,
		recentLimit: recentLimit,
	}
}

// RegisterRoutes implements router.RouteRegistrar.
func (h *CommandHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/commands", h.Submit)
	rg.GET("/commands/recent", h.Recent)
	rg.GET("/actions", h.ListActions)
}

// Submit queues a command. The response only acknowledges the handoff;
// execution results appear under /commands/recent.
func (h *CommandHandler) Submit(c *gin.Context) {
	var req dto.SubmitCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &verrs):
			middleware.HandleValidationError(c, err)
		case errors.As(err, &maxErr):
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		case errors.Is(err, io.EOF):
			h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body is empty")
		default:
			h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		}
		return
	}

	id, err := h.submitter.SubmitNamed(req.Action, req.Params)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Debug("command queued",
		zap.String("command_id", id.String()),
		zap.String("action", req.Action),
	)

	action, _ := command.ParseAction(req.Action)
	h.Accepted(c, dto.SubmitCommandResponse{
		ID:     id,
		Action: action.String(),
		Status: dto.StatusQueued,
	})
}

// Recent lists the latest execution results. ?limit=N narrows the list.
func (h *CommandHandler) Recent(c *gin.Context) {
	limit := h.recentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, dto.ErrCodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = min(n, h.recentLimit)
	}

	results := h.history.Recent(limit)
	out := make([]dto.CommandResult, 0, len(results))
	for _, r := range results {
		out = append(out, dto.NewCommandResult(r))
	}
	h.Success(c, out)
}

// ListActions lists every action a command may carry.
func (h *CommandHandler) ListActions(c *gin.Context) {
	actions := command.Actions()
	out := make([]dto.ActionInfo, 0, len(actions))
	for _, a := range actions {
		out = append(out, dto.NewActionInfo(a))
	}
	h.Success(c, out)
}
