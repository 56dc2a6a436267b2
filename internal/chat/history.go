// Package chat implements the interactive conversation surface: the message
// history, the event dispatcher that renders runtime events to the terminal,
// and the read-eval loop that ties them to a [runtime.Runner].
package chat

import (
	"github.com/MrWong99/tubesage/pkg/types"
)

// History is the ordered conversation record for one session. It grows
// append-only; items are never reordered or removed. History is not safe for
// concurrent use; the interaction loop owns it and mutates it between turns
// only.
type History struct {
	items []types.Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds msg to the end of the history.
func (h *History) Append(msg types.Message) {
	h.items = append(h.items, msg)
}

// Snapshot returns a copy of the history in insertion order. Mutating the
// returned slice does not affect the history.
func (h *History) Snapshot() []types.Message {
	out := make([]types.Message, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of items in the history.
func (h *History) Len() int {
	return len(h.items)
}
