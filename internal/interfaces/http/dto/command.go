package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/domain/command"
)

// SubmitCommandRequest is the body of POST /commands.
type SubmitCommandRequest struct {
	Action string            `json:"action" binding:"required,max=64"`
	Params map[string]string `json:"params" binding:"omitempty,max=32,dive,keys,required,max=64,endkeys,max=500"`
}

// SubmitCommandResponse acknowledges a queued command.
type SubmitCommandResponse struct {
	ID     uuid.UUID `json:"id"`
	Action string    `json:"action"`
	Status string    `json:"status"`
}

// StatusQueued is the only status a submit can report; execution is
// asynchronous.
const StatusQueued = "queued"

// ActionInfo describes one action a command may carry.
type ActionInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Action categories.
const (
	CategoryCustomer = "customer"
	CategoryFinance  = "finance"
	CategoryMaterial = "material"
)

// NewActionInfo describes a.
func NewActionInfo(a command.Action) ActionInfo {
	category := CategoryFinance
	switch {
	case a.IsCustomer():
		category = CategoryCustomer
	case a.IsMaterial():
		category = CategoryMaterial
	}
	return ActionInfo{Name: a.String(), Category: category}
}

// CommandResult is one finished execution.
type CommandResult struct {
	ID          uuid.UUID         `json:"id"`
	Action      string            `json:"action"`
	Params      map[string]string `json:"params"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	DurationMS  float64           `json:"duration_ms"`
	SubmittedAt time.Time         `json:"submitted_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewCommandResult converts a worker result.
func NewCommandResult(r dispatch.Result) CommandResult {
	out := CommandResult{
		ID:          r.Command.ID,
		Action:      r.Command.Action.String(),
		Params:      r.Command.Params.Map(),
		Success:     r.Succeeded(),
		DurationMS:  float64(r.Duration) / float64(time.Millisecond),
		SubmittedAt: r.Command.SubmittedAt,
		CompletedAt: r.CompletedAt,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string                `json:"status"`
	WorkerState string                `json:"worker_state"`
	Channel     dispatch.ChannelStats `json:"channel"`
	Uptime      string                `json:"uptime"`
}
