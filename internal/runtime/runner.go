package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/tubesage/internal/observe"
	"github.com/MrWong99/tubesage/pkg/provider/llm"
	"github.com/MrWong99/tubesage/pkg/types"
)

// defaultMaxToolRounds bounds the number of tool-call round trips within one
// turn. A model that keeps requesting tools beyond this is cut off with a
// TurnError rather than looping forever.
const defaultMaxToolRounds = 8

// defaultEventBuf is the buffer depth of the event channel returned by
// [Runner.Run]. Sized to absorb a burst of text deltas without blocking the
// streaming goroutine on a slow consumer.
const defaultEventBuf = 64

// Tool is an executable capability offered to the model. Invoke receives the
// raw JSON argument payload from the model's tool call.
type Tool interface {
	Definition() types.ToolDefinition
	Invoke(ctx context.Context, arguments string) (string, error)
}

// Runner executes conversational turns. It is safe for concurrent use as long
// as the underlying provider is; tubesage runs turns sequentially.
type Runner struct {
	name          string
	provider      llm.Provider
	tools         map[string]Tool
	defs          []types.ToolDefinition
	maxToolRounds int
	metrics       *observe.Metrics

	mu           sync.RWMutex
	instructions string
}

// Option is a functional option for configuring a Runner during construction.
type Option func(*Runner)

// WithMaxToolRounds overrides the per-turn tool round-trip limit. Default is 8.
func WithMaxToolRounds(n int) Option {
	return func(r *Runner) { r.maxToolRounds = n }
}

// NewRunner constructs a Runner for the named agent backed by the given
// provider. The instructions string becomes the system prompt for every turn.
func NewRunner(name string, provider llm.Provider, instructions string, tools []Tool, opts ...Option) *Runner {
	r := &Runner{
		name:          name,
		provider:      provider,
		instructions:  instructions,
		tools:         make(map[string]Tool, len(tools)),
		maxToolRounds: defaultMaxToolRounds,
		metrics:       observe.DefaultMetrics(),
	}
	for _, t := range tools {
		def := t.Definition()
		r.tools[def.Name] = t
		r.defs = append(r.defs, def)
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one conversational turn over the given message history and
// returns a channel of events. The channel is closed when the turn completes;
// a [TurnError] is always the final event when the turn fails. The caller
// owns the history; Run never mutates the input slice.
func (r *Runner) Run(ctx context.Context, messages []types.Message) <-chan Event {
	out := make(chan Event, defaultEventBuf)

	go func() {
		defer close(out)

		ctx, span := observe.StartSpan(ctx, "runtime.Run",
			trace.WithAttributes(attribute.String("agent", r.name)),
		)
		defer span.End()

		start := time.Now()
		outcome := "ok"
		defer func() {
			r.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
			r.metrics.Turns.Add(ctx, 1,
				metric.WithAttributes(attribute.String("outcome", outcome)),
			)
		}()

		if !emit(ctx, out, AgentUpdated{Name: r.name}) {
			outcome = "canceled"
			return
		}

		convo := make([]types.Message, len(messages))
		copy(convo, messages)

		for round := 0; ; round++ {
			if round > r.maxToolRounds {
				outcome = "error"
				emit(ctx, out, TurnError{Err: fmt.Errorf("tool round limit (%d) exceeded", r.maxToolRounds)})
				return
			}

			text, toolCalls, err := r.streamOnce(ctx, convo, out)
			if err != nil {
				outcome = "error"
				emit(ctx, out, TurnError{Err: err})
				return
			}

			if len(toolCalls) == 0 {
				emit(ctx, out, MessageOutput{Content: text})
				return
			}

			convo = append(convo, types.Message{
				Role:      types.RoleAssistant,
				Content:   text,
				ToolCalls: toolCalls,
			})
			for _, tc := range toolCalls {
				result, ok := r.invokeTool(ctx, out, tc)
				if !ok {
					outcome = "canceled"
					return
				}
				convo = append(convo, types.Message{
					Role:       types.RoleTool,
					Content:    result,
					ToolCallID: tc.ID,
				})
			}
		}
	}()

	return out
}

// SetInstructions replaces the system prompt used for subsequent turns. Safe
// to call concurrently with a running turn; the running turn keeps the old
// instructions.
func (r *Runner) SetInstructions(instructions string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instructions = instructions
}

// streamOnce performs a single provider stream over convo, forwarding text
// deltas to out. Returns the accumulated text and any tool calls the model
// requested.
func (r *Runner) streamOnce(ctx context.Context, convo []types.Message, out chan<- Event) (string, []types.ToolCall, error) {
	r.mu.RLock()
	instructions := r.instructions
	r.mu.RUnlock()

	req := llm.CompletionRequest{
		Messages:     convo,
		Tools:        r.defs,
		SystemPrompt: instructions,
	}

	streamStart := time.Now()
	ch, err := r.provider.StreamCompletion(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("completion stream failed: %w", err)
	}

	var (
		buf       strings.Builder
		toolCalls []types.ToolCall
	)
	for {
		select {
		case <-ctx.Done():
			go drainChunks(ch)
			return "", nil, ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				r.metrics.LLMStreamDuration.Record(ctx, time.Since(streamStart).Seconds())
				return buf.String(), toolCalls, nil
			}

			if chunk.FinishReason == llm.FinishReasonError {
				go drainChunks(ch)
				return "", nil, errors.New(chunk.Text)
			}

			if chunk.Text != "" {
				buf.WriteString(chunk.Text)
				if !emit(ctx, out, TextDelta{Text: chunk.Text}) {
					go drainChunks(ch)
					return "", nil, ctx.Err()
				}
			}
			if len(chunk.ToolCalls) > 0 {
				toolCalls = chunk.ToolCalls
			}
		}
	}
}

// invokeTool runs one tool call synchronously, emitting the started and
// completed events around it. A tool error becomes the tool output so the
// model can explain the failure to the user. Returns false when the context
// was canceled mid-emission.
func (r *Runner) invokeTool(ctx context.Context, out chan<- Event, tc types.ToolCall) (string, bool) {
	if !emit(ctx, out, ToolCallStarted{Tool: tc.Name}) {
		return "", false
	}

	var result string
	tool, known := r.tools[tc.Name]
	if !known {
		result = fmt.Sprintf("unknown tool %q", tc.Name)
		r.metrics.RecordToolCall(ctx, tc.Name, "unknown")
	} else if output, err := tool.Invoke(ctx, tc.Arguments); err != nil {
		result = err.Error()
		observe.Logger(ctx).Warn("tool invocation failed",
			"tool", tc.Name, "error", err)
	} else {
		result = output
	}

	if !emit(ctx, out, ToolCallCompleted{Tool: tc.Name, Output: result}) {
		return "", false
	}
	return result, true
}

// emit sends ev to out unless ctx is canceled. Reports whether the send
// happened.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// drainChunks discards all remaining chunks from ch so the provider's
// streaming goroutine does not block on an abandoned channel.
func drainChunks(ch <-chan llm.Chunk) {
	for range ch {
	}
}
