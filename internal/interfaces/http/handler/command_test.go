package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/interfaces/http/dto"
)

type commandFixture struct {
	channel *dispatch.Channel
	history *dispatch.History
	handler *CommandHandler
}

func newCommandFixture(recentLimit int) *commandFixture {
	ch := dispatch.NewChannel()
	history := dispatch.NewHistory(10)
	return &commandFixture{
		channel: ch,
		history: history,
		handler: NewCommandHandler(dispatch.NewDispatcher(ch, zap.NewNop()), history, recentLimit),
	}
}

func (f *commandFixture) engine() *gin.Engine {
	e := newTestEngine()
	f.handler.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestCommandHandler_Submit(t *testing.T) {
	f := newCommandFixture(0)
	engine := f.engine()

	w := do(engine, http.MethodPost, "/api/v1/commands",
		`{"action":"Add Customer","params":{"id":"C100","name":"Acme"}}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	var got dto.SubmitCommandResponse
	resp := decode(t, w, &got)
	assert.True(t, resp.Success)
	assert.Equal(t, "add customer", got.Action)
	assert.Equal(t, dto.StatusQueued, got.Status)

	cmd, ok := f.channel.TakeIfPresent()
	require.True(t, ok)
	assert.Equal(t, got.ID, cmd.ID)
	assert.Equal(t, command.ActionAddCustomer, cmd.Action)
	assert.Equal(t, map[string]string{"id": "C100", "name": "Acme"}, cmd.Params.Map())
}

func TestCommandHandler_SubmitWithoutParams(t *testing.T) {
	f := newCommandFixture(0)

	w := do(f.engine(), http.MethodPost, "/api/v1/commands", `{"action":"reserve material"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, f.channel.Pending())
}

func TestCommandHandler_SubmitRejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unknown action", `{"action":"sell widgets"}`, http.StatusBadRequest, dto.ErrCodeUnknownAction},
		{"missing action", `{"params":{"id":"1"}}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"empty param key", `{"action":"add customer","params":{"":"x"}}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed json", `{"action":`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"empty body", ``, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"non-string param", `{"action":"add customer","params":{"id":1}}`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"oversized value", `{"action":"add customer","params":{"name":"` + strings.Repeat("x", 501) + `"}}`, http.StatusBadRequest, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommandFixture(0)
			w := do(f.engine(), http.MethodPost, "/api/v1/commands", tt.body)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.False(t, f.channel.Pending(), "rejected requests never reach the channel")
		})
	}
}

func TestCommandHandler_Recent(t *testing.T) {
	f := newCommandFixture(3)
	for _, n := range []string{"1", "2", "3", "4"} {
		cmd := command.New(command.ActionCreateInvoice, map[string]string{"number": n})
		var err error
		if n == "4" {
			err = errors.New("customer missing")
		}
		f.history.CommandCompleted(dispatch.Result{Command: cmd, Err: err})
	}
	engine := f.engine()

	w := do(engine, http.MethodGet, "/api/v1/commands/recent", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []dto.CommandResult
	decode(t, w, &got)
	require.Len(t, got, 3, "capped at the configured limit")
	assert.Equal(t, "4", got[0].Params["number"])
	assert.False(t, got[0].Success)
	assert.Equal(t, "customer missing", got[0].Error)
	assert.True(t, got[1].Success)

	w = do(engine, http.MethodGet, "/api/v1/commands/recent?limit=1", "")
	got = nil
	decode(t, w, &got)
	assert.Len(t, got, 1)

	for _, bad := range []string{"0", "-2", "many"} {
		w = do(engine, http.MethodGet, "/api/v1/commands/recent?limit="+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestCommandHandler_ListActions(t *testing.T) {
	f := newCommandFixture(0)

	w := do(f.engine(), http.MethodGet, "/api/v1/actions", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []dto.ActionInfo
	decode(t, w, &got)
	require.Len(t, got, len(command.Actions()))
	assert.Contains(t, got, dto.ActionInfo{Name: "transfer material", Category: dto.CategoryMaterial})
	assert.Contains(t, got, dto.ActionInfo{Name: "delete customer", Category: dto.CategoryCustomer})
}
