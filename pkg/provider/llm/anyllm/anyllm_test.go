package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/tubesage/pkg/provider/llm"
	"github.com/MrWong99/tubesage/pkg/types"
)

// TestConvertMessage_Roles checks that each role maps through unchanged.
func TestConvertMessage_Roles(t *testing.T) {
	for _, role := range []string{"system", "user", "assistant", "tool"} {
		got := convertMessage(types.Message{Role: role, Content: "hi"})
		if got.Role != role {
			t.Errorf("expected role %q, got %q", role, got.Role)
		}
		if got.Content != "hi" {
			t.Errorf("%s: expected content hi, got %q", role, got.Content)
		}
	}
}

// TestConvertMessage_AssistantWithToolCalls checks tool call conversion.
func TestConvertMessage_AssistantWithToolCalls(t *testing.T) {
	m := types.Message{
		Role: "assistant",
		ToolCalls: []types.ToolCall{
			{ID: "call_1", Name: "fetch_youtube_transcript", Arguments: `{"url":"https://youtu.be/x"}`},
		},
	}
	got := convertMessage(m)
	if len(got.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(got.ToolCalls))
	}
	tc := got.ToolCalls[0]
	if tc.ID != "call_1" {
		t.Errorf("expected ID call_1, got %q", tc.ID)
	}
	if tc.Type != "function" {
		t.Errorf("expected type function, got %q", tc.Type)
	}
	if tc.Function.Name != "fetch_youtube_transcript" {
		t.Errorf("expected function name fetch_youtube_transcript, got %q", tc.Function.Name)
	}
	if tc.Function.Arguments != `{"url":"https://youtu.be/x"}` {
		t.Errorf("unexpected arguments: %q", tc.Function.Arguments)
	}
}

// TestConvertMessage_Tool checks tool-result message conversion.
func TestConvertMessage_Tool(t *testing.T) {
	got := convertMessage(types.Message{Role: "tool", Content: "[00:00] hello", ToolCallID: "call_1"})
	if got.ToolCallID != "call_1" {
		t.Errorf("expected ToolCallID call_1, got %q", got.ToolCallID)
	}
}

// TestConvertMessage_EmptyToolCalls checks that zero tool calls yield no ToolCalls slice.
func TestConvertMessage_EmptyToolCalls(t *testing.T) {
	got := convertMessage(types.Message{Role: "assistant", Content: "No tools here."})
	if len(got.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(got.ToolCalls))
	}
}

// TestBuildParams checks request conversion: system prompt first, tools
// attached, temperature and max tokens only set when non-zero.
func TestBuildParams(t *testing.T) {
	p := &Provider{model: "claude-3-5-sonnet-latest"}
	params := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You help with YouTube videos.",
		Messages: []types.Message{
			{Role: "user", Content: "Summarise this video."},
		},
		Tools: []types.ToolDefinition{
			{Name: "fetch_youtube_transcript", Description: "Fetch a transcript.", Parameters: map[string]any{"type": "object"}},
		},
	})

	if params.Model != "claude-3-5-sonnet-latest" {
		t.Errorf("expected model passthrough, got %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("expected system message first, got role %q", params.Messages[0].Role)
	}
	if len(params.Tools) != 1 || params.Tools[0].Function.Name != "fetch_youtube_transcript" {
		t.Errorf("unexpected tools: %+v", params.Tools)
	}
	if params.Temperature != nil {
		t.Error("expected nil Temperature when unset")
	}
	if params.MaxTokens != nil {
		t.Error("expected nil MaxTokens when unset")
	}
}

// TestBuildParams_Limits checks that explicit sampling limits propagate.
func TestBuildParams_Limits(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.CompletionRequest{
		Messages:    []types.Message{{Role: "user", Content: "hi"}},
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if params.Temperature == nil || *params.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 512 {
		t.Errorf("MaxTokens = %v, want 512", params.MaxTokens)
	}
}

// TestCapabilities_Baseline checks the conservative defaults reported when the
// backend exposes no per-model metadata.
func TestCapabilities_Baseline(t *testing.T) {
	p := &Provider{model: "whatever"}
	caps := p.Capabilities()
	if !caps.SupportsStreaming || !caps.SupportsToolCalling {
		t.Errorf("expected streaming and tool calling, got %+v", caps)
	}
	if caps.ContextWindow <= 0 || caps.MaxOutputTokens <= 0 {
		t.Errorf("expected positive limits, got %+v", caps)
	}
}

// TestNew_EmptyProviderName checks that an empty provider name returns an error.
func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty providerName")
	}
}

// TestNew_EmptyModel checks that an empty model name returns an error.
func TestNew_EmptyModel(t *testing.T) {
	_, err := New("openai", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_UnsupportedProvider checks that an unsupported provider returns an error.
func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestNew_WithAPIKey checks that hosted backends construct with an explicit key.
func TestNew_WithAPIKey(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		p, err := New(name, "some-model", anyllmlib.WithAPIKey("sk-test"))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if p.model != "some-model" {
			t.Errorf("%s: expected model passthrough, got %q", name, p.model)
		}
	}
}

// TestNew_LocalBackendsNoAPIKey checks that local backends need no key.
func TestNew_LocalBackendsNoAPIKey(t *testing.T) {
	for _, name := range []string{"ollama", "llamacpp", "llamafile"} {
		if _, err := New(name, "llama3"); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
}
