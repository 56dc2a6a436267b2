package chat

import (
	"fmt"
	"io"

	"github.com/MrWong99/tubesage/internal/runtime"
	"github.com/MrWong99/tubesage/pkg/types"
)

// User-facing notices printed around a transcript fetch.
const (
	fetchStartedNotice  = "\n-- Fetching transcript...\n"
	fetchFinishedNotice = "-- Transcript fetched.\n"
)

// Dispatcher routes runtime events to the terminal and the history. It holds
// the single routing table for all event types: streamed text is written as
// it arrives, tool activity is announced with short notices, tool output is
// recorded into the history as a system item, and completed assistant
// messages are appended verbatim. Unrecognised events are ignored.
type Dispatcher struct {
	w       io.Writer
	history *History
}

// NewDispatcher returns a dispatcher writing user-visible output to w and
// recording conversation items into history.
func NewDispatcher(w io.Writer, history *History) *Dispatcher {
	return &Dispatcher{w: w, history: history}
}

// Dispatch handles a single event. Write errors to the terminal are
// deliberately not propagated; a broken stdout ends the session at the read
// side of the loop instead.
func (d *Dispatcher) Dispatch(ev runtime.Event) {
	switch ev := ev.(type) {
	case runtime.TextDelta:
		fmt.Fprint(d.w, ev.Text)
	case runtime.ToolCallStarted:
		fmt.Fprint(d.w, fetchStartedNotice)
	case runtime.ToolCallCompleted:
		fmt.Fprint(d.w, fetchFinishedNotice)
		d.history.Append(types.Message{
			Role:    types.RoleSystem,
			Content: "Transcript:\n" + ev.Output,
		})
	case runtime.MessageOutput:
		d.history.Append(types.Message{
			Role:    types.RoleAssistant,
			Content: ev.Content,
		})
	case runtime.TurnError:
		fmt.Fprintf(d.w, "\n-- Error: %v\n", ev.Err)
	}
}

// DrainAll dispatches every event from events until the channel closes.
func (d *Dispatcher) DrainAll(events <-chan runtime.Event) {
	for ev := range events {
		d.Dispatch(ev)
	}
}
