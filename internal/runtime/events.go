// Package runtime drives conversational turns against an LLM provider.
//
// A [Runner] owns the provider, the agent instructions and the tool set. One
// call to [Runner.Run] executes one turn: it streams the model's response,
// executes any tool calls synchronously, feeds tool output back to the model
// and emits a strictly ordered stream of [Event] values describing everything
// that happened. Consumers switch on the concrete event type; the set of
// types is closed.
package runtime

// Event is one occurrence during a conversational turn. The concrete types
// are [TextDelta], [AgentUpdated], [ToolCallStarted], [ToolCallCompleted],
// [MessageOutput] and [TurnError]; no other implementations exist.
type Event interface {
	isEvent()
}

// TextDelta carries one incremental fragment of the model's streamed text.
type TextDelta struct {
	Text string
}

// AgentUpdated signals that an agent became active for the turn. Emitted once
// at turn start.
type AgentUpdated struct {
	Name string
}

// ToolCallStarted signals that a tool invocation is about to run.
type ToolCallStarted struct {
	Tool string
}

// ToolCallCompleted carries the output of a finished tool invocation. When
// the tool failed, Output holds the error message so the model can relay it.
type ToolCallCompleted struct {
	Tool   string
	Output string
}

// MessageOutput carries the complete text of one assistant message, emitted
// after the message's deltas.
type MessageOutput struct {
	Content string
}

// TurnError signals that the turn failed and no further events follow.
type TurnError struct {
	Err error
}

func (TextDelta) isEvent()         {}
func (AgentUpdated) isEvent()      {}
func (ToolCallStarted) isEvent()   {}
func (ToolCallCompleted) isEvent() {}
func (MessageOutput) isEvent()     {}
func (TurnError) isEvent()         {}
