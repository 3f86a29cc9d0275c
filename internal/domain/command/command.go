package command

import (
	"time"

	"github.com/google/uuid"
)

// Command is one requested action with its parameters.
//
// A Command is immutable by convention once it has been published: producers
// must not modify it afterwards. Consumers only ever see copies.
type Command struct {
	ID          uuid.UUID
	Action      Action
	Params      Params
	SubmittedAt time.Time
}

// New builds a Command for action from fields. fields is copied, so the
// caller may reuse or modify its map after New returns.
func New(action Action, fields map[string]string) Command {
	return Command{
		ID:          uuid.New(),
		Action:      action,
		Params:      ParamsFromMap(fields),
		SubmittedAt: time.Now(),
	}
}

// Copy returns a deep copy of c.
func (c Command) Copy() Command {
	return Command{
		ID:          c.ID,
		Action:      c.Action,
		Params:      c.Params.Clone(),
		SubmittedAt: c.SubmittedAt,
	}
}

// Field returns the parameter stored under key, or "".
func (c Command) Field(key string) string {
	return c.Params.Value(key)
}
