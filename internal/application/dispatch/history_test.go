package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyzap/inventory/internal/domain/command"
)

func resultFor(number string, err error) Result {
	return Result{
		Command: command.New(command.ActionCreateInvoice, map[string]string{"number": number}),
		Err:     err,
	}
}

func numbers(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Command.Field("number"))
	}
	return out
}

func TestHistory_NewestFirst(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, h.Recent(0))

	h.CommandCompleted(resultFor("1", nil))
	h.CommandCompleted(resultFor("2", errors.New("boom")))

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"2", "1"}, numbers(h.Recent(0)))
	assert.Equal(t, []string{"2"}, numbers(h.Recent(1)))
	assert.Equal(t, []string{"2", "1"}, numbers(h.Recent(10)))
}

func TestHistory_WrapsAtLimit(t *testing.T) {
	h := NewHistory(3)
	for _, n := range []string{"1", "2", "3", "4", "5"} {
		h.CommandCompleted(resultFor(n, nil))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"5", "4", "3"}, numbers(h.Recent(0)))
}

func TestHistory_DefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for range DefaultHistoryLimit + 5 {
		h.CommandCompleted(resultFor("x", nil))
	}
	assert.Equal(t, DefaultHistoryLimit, h.Len())
}

func TestHistory_AsWorkerObserver(t *testing.T) {
	gw := newRecordingGateway()
	h := NewHistory(5)
	w, _, d := newTestWorker(t, gw, &recordingReporter{}, DefaultWorkerConfig(), WithObserver(h))
	require.NoError(t, w.Start(context.Background()))

	d.Submit(command.ActionMakePayment, map[string]string{"amount": "10"})
	waitExecuted(t, gw)

	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)
	got := h.Recent(1)[0]
	assert.True(t, got.Succeeded())
	assert.Equal(t, command.ActionMakePayment, got.Command.Action)
}
