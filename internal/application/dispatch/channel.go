package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/tallyzap/inventory/internal/domain/command"
)

// WakeReason tells why AwaitSignalOrTimeout returned.
type WakeReason int

const (
	WakeSignaled WakeReason = iota
	WakeTimedOut
	WakeCancelled
)

func (r WakeReason) String() string {
	switch r {
	case WakeSignaled:
		return "signaled"
	case WakeTimedOut:
		return "timed_out"
	case WakeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ChannelStats is a point-in-time view of a Channel.
type ChannelStats struct {
	Published   uint64 `json:"published"`
	Overwritten uint64 `json:"overwritten"`
	Taken       uint64 `json:"taken"`
	Pending     bool   `json:"pending"`
}

// Channel is a single-slot handoff between any number of publishers and one
// consumer.
//
// The slot holds nothing or exactly one command. wake carries at most one
// token: Publish drops a token in after filling the slot, and the consumer
// drains it while waiting. A token can outlive the command it announced
// (the consumer may take the command before it waits), so a wake does not
// guarantee that anything is pending.
type Channel struct {
	mu    sync.Mutex
	slot  *command.Command
	stats ChannelStats

	wake chan struct{}
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{wake: make(chan struct{}, 1)}
}

// Publish stores cmd in the slot, replacing any command still pending, and
// wakes the consumer. It never blocks. The return value reports whether a
// pending command was replaced and thereby dropped.
func (c *Channel) Publish(cmd command.Command) bool {
	c.mu.Lock()
	replaced := c.slot != nil
	c.slot = &cmd
	c.stats.Published++
	if replaced {
		c.stats.Overwritten++
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return replaced
}

// TakeIfPresent removes the pending command, if any, and returns a copy of
// it that shares no storage with the published value.
func (c *Channel) TakeIfPresent() (command.Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot == nil {
		return command.Command{}, false
	}
	cmd := c.slot.Copy()
	c.slot = nil
	c.stats.Taken++
	return cmd, true
}

// AwaitSignalOrTimeout blocks until Publish signals, d elapses or ctx is
// done. A non-positive d waits without a deadline. Callers must re-check the
// slot with TakeIfPresent after every return.
func (c *Channel) AwaitSignalOrTimeout(ctx context.Context, d time.Duration) WakeReason {
	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-c.wake:
		return WakeSignaled
	case <-timeout:
		return WakeTimedOut
	case <-ctx.Done():
		return WakeCancelled
	}
}

// Pending reports whether a command is waiting in the slot.
func (c *Channel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot != nil
}

// Stats returns a snapshot of the channel counters.
func (c *Channel) Stats() ChannelStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Pending = c.slot != nil
	return s
}
