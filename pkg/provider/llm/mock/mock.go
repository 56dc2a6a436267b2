// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the agent runtime sends correct
// CompletionRequests and to feed controlled chunk streams without a live LLM
// backend. All fields are safe to set before calling any method; mutating them
// during a concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Scripts: [][]llm.Chunk{{{Text: "Hello!", FinishReason: "stop"}}},
//	}
//	ch, err := p.StreamCompletion(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/tubesage/pkg/provider/llm"
	"github.com/MrWong99/tubesage/pkg/types"
)

// StreamCall records a single invocation of StreamCompletion.
type StreamCall struct {
	// Ctx is the context passed to StreamCompletion.
	Ctx context.Context
	// Req is the CompletionRequest passed to StreamCompletion.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
//
// Each StreamCompletion call plays back the next script in Scripts; a turn
// that involves a tool call consumes two scripts (the tool-call stream and the
// follow-up stream). When Scripts is exhausted, further calls return an empty,
// immediately-closed channel.
type Provider struct {
	mu sync.Mutex

	// Scripts is the sequence of chunk streams to play back, one per
	// StreamCompletion call, in order.
	Scripts [][]llm.Chunk

	// StreamErr, if non-nil, is returned as the error from every
	// StreamCompletion call instead of opening a channel.
	StreamErr error

	// ModelCapabilities is returned by Capabilities.
	ModelCapabilities types.ModelCapabilities

	// StreamCalls records every invocation of StreamCompletion in order.
	StreamCalls []StreamCall

	next int
}

// StreamCompletion records the call and plays back the next script.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	p.mu.Lock()
	p.StreamCalls = append(p.StreamCalls, StreamCall{Ctx: ctx, Req: req})
	if p.StreamErr != nil {
		err := p.StreamErr
		p.mu.Unlock()
		return nil, err
	}
	var script []llm.Chunk
	if p.next < len(p.Scripts) {
		script = make([]llm.Chunk, len(p.Scripts[p.next]))
		copy(script, p.Scripts[p.next])
		p.next++
	}
	p.mu.Unlock()

	ch := make(chan llm.Chunk, len(script))
	go func() {
		defer close(ch)
		for _, c := range script {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
	}()
	return ch, nil
}

// Capabilities returns ModelCapabilities.
func (p *Provider) Capabilities() types.ModelCapabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ModelCapabilities
}

// Reset clears recorded calls and rewinds the script playback position.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StreamCalls = nil
	p.next = 0
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
