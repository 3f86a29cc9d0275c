// Package command defines the payloads the views hand to the persistence
// worker: a closed set of action kinds and the Command record carrying one
// requested action with its string parameters.
package command

import (
	"fmt"
	"strings"

	"github.com/tallyzap/inventory/internal/domain/shared"
)

// Action enumerates the requests a view can make of the persistence layer.
type Action int

const (
	ActionAddCustomer Action = iota + 1
	ActionUpdateCustomer
	ActionDeleteCustomer
	ActionCreateInvoice
	ActionMakePayment
	ActionReceiveMaterial
	ActionShipMaterial
	ActionMoveMaterial
	ActionTransferMaterial
	ActionReserveMaterial
)

var actionNames = map[Action]string{
	ActionAddCustomer:      "add customer",
	ActionUpdateCustomer:   "update customer",
	ActionDeleteCustomer:   "delete customer",
	ActionCreateInvoice:    "create invoice",
	ActionMakePayment:      "make payment",
	ActionReceiveMaterial:  "receive material",
	ActionShipMaterial:     "ship material",
	ActionMoveMaterial:     "move material",
	ActionTransferMaterial: "transfer material",
	ActionReserveMaterial:  "reserve material",
}

// Actions returns every known action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for a := ActionAddCustomer; a <= ActionReserveMaterial; a++ {
		out = append(out, a)
	}
	return out
}

// String returns the canonical action name used by the views.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// IsValid reports whether a is one of the declared actions.
func (a Action) IsValid() bool {
	_, ok := actionNames[a]
	return ok
}

// IsCustomer reports whether the action targets the customer records.
func (a Action) IsCustomer() bool {
	switch a {
	case ActionAddCustomer, ActionUpdateCustomer, ActionDeleteCustomer:
		return true
	}
	return false
}

// IsMaterial reports whether the action is a material movement.
func (a Action) IsMaterial() bool {
	switch a {
	case ActionReceiveMaterial, ActionShipMaterial, ActionMoveMaterial,
		ActionTransferMaterial, ActionReserveMaterial:
		return true
	}
	return false
}

// ParseAction maps a view-supplied name onto an Action. Matching ignores case
// and surrounding or repeated whitespace.
func ParseAction(name string) (Action, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	for a, n := range actionNames {
		if n == normalized {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, shared.ErrUnknownAction)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("%d: %w", int(a), shared.ErrUnknownAction)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
