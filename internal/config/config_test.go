package config_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/tubesage/internal/config"
	"github.com/MrWong99/tubesage/pkg/provider/llm"
	"github.com/MrWong99/tubesage/pkg/types"
)

const sampleYAML = `
agent:
  name: YouTube Transcript Agent
  instructions: You are a helpful assistant that answers questions about YouTube videos.

provider:
  name: openai
  api_key: sk-test
  model: gpt-4o

transcript:
  languages:
    - en

server:
  log_level: info
  metrics_addr: ":9090"
`

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Agent.Name != "YouTube Transcript Agent" {
		t.Errorf("agent.name: got %q", cfg.Agent.Name)
	}
	if cfg.Provider.Name != "openai" {
		t.Errorf("provider.name: got %q, want %q", cfg.Provider.Name, "openai")
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Errorf("provider.api_key: got %q", cfg.Provider.APIKey)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogInfo)
	}
	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("server.metrics_addr: got %q", cfg.Server.MetricsAddr)
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	valid := []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError}
	for _, l := range valid {
		if !l.IsValid() {
			t.Errorf("LogLevel(%q).IsValid() = false, want true", l)
		}
	}
	if config.LogLevel("verbose").IsValid() {
		t.Error("LogLevel(\"verbose\").IsValid() = true, want false")
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_UnknownLLM(t *testing.T) {
	reg := config.NewRegistry()
	_, err := reg.CreateLLM(config.ProviderEntry{Name: "nonexistent"})
	if err == nil {
		t.Fatal("expected error for unknown LLM provider")
	}
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_RegisteredLLM(t *testing.T) {
	reg := config.NewRegistry()
	want := &stubLLM{}
	reg.RegisterLLM("stub", func(e config.ProviderEntry) (llm.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateLLM(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_OverwriteRegistration(t *testing.T) {
	reg := config.NewRegistry()
	first, second := &stubLLM{}, &stubLLM{}
	reg.RegisterLLM("stub", func(config.ProviderEntry) (llm.Provider, error) { return first, nil })
	reg.RegisterLLM("stub", func(config.ProviderEntry) (llm.Provider, error) { return second, nil })

	got, err := reg.CreateLLM(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != second {
		t.Error("later registration should overwrite the earlier one")
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	reg := config.NewRegistry()
	wantErr := errors.New("factory boom")
	reg.RegisterLLM("broken", func(e config.ProviderEntry) (llm.Provider, error) {
		return nil, wantErr
	})
	_, err := reg.CreateLLM(config.ProviderEntry{Name: "broken"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error %v, got %v", wantErr, err)
	}
}

// stubLLM implements llm.Provider with no-op methods.
type stubLLM struct{}

func (s *stubLLM) StreamCompletion(_ context.Context, _ llm.CompletionRequest) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk)
	close(ch)
	return ch, nil
}
func (s *stubLLM) Capabilities() types.ModelCapabilities { return types.ModelCapabilities{} }
