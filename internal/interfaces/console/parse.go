package console

import (
	"fmt"
	"strings"

	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/domain/shared"
)

// Input is one parsed command line.
type Input struct {
	Action command.Action
	Params map[string]string
}

// ParseLine parses "<action>; key=value; key=value". Keys are lower-cased
// and trimmed; values are trimmed. A repeated key keeps its last value.
func ParseLine(line string) (Input, error) {
	parts := strings.Split(line, ";")

	action, err := command.ParseAction(parts[0])
	if err != nil {
		return Input{}, err
	}

	params := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Input{}, fmt.Errorf("%q is not key=value: %w", part, shared.ErrInvalidInput)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return Input{}, fmt.Errorf("%q has an empty key: %w", part, shared.ErrInvalidInput)
		}
		params[key] = strings.TrimSpace(value)
	}

	return Input{Action: action, Params: params}, nil
}
