package youtube_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/tubesage/internal/youtube"
)

// fakeFetcher records Fetch calls and plays back a fixed result.
type fakeFetcher struct {
	records []youtube.Record
	err     error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, videoID string) ([]youtube.Record, error) {
	f.calls = append(f.calls, videoID)
	return f.records, f.err
}

func TestTranscriptTool_FetchAndFormat(t *testing.T) {
	fetcher := &fakeFetcher{records: []youtube.Record{
		{Start: 0, Text: "intro"},
		{Start: 65, Text: "main point"},
	}}
	tool := youtube.NewTranscriptTool(fetcher)

	got, err := tool.FetchAndFormat(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[00:00] intro\n[01:05] main point"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("fetch calls = %d, want exactly 1", len(fetcher.calls))
	}
	if fetcher.calls[0] != "dQw4w9WgXcQ" {
		t.Errorf("fetched video %q", fetcher.calls[0])
	}
}

func TestTranscriptTool_InvalidURL(t *testing.T) {
	fetcher := &fakeFetcher{}
	tool := youtube.NewTranscriptTool(fetcher)

	_, err := tool.FetchAndFormat(context.Background(), "not a youtube link")
	if !errors.Is(err, youtube.ErrInvalidURL) {
		t.Fatalf("error = %v, want ErrInvalidURL", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetch should not run for an invalid URL, got %d calls", len(fetcher.calls))
	}
}

func TestTranscriptTool_SourceError(t *testing.T) {
	cause := errors.New("no caption tracks")
	fetcher := &fakeFetcher{err: cause}
	tool := youtube.NewTranscriptTool(fetcher)

	_, err := tool.FetchAndFormat(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error")
	}
	var srcErr *youtube.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error = %T, want *SourceError", err)
	}
	if srcErr.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q", srcErr.VideoID)
	}
	if !errors.Is(err, cause) {
		t.Error("SourceError should wrap the underlying cause")
	}
	// The message is shown to the model and the user; it must explain rather
	// than expose internals.
	if !strings.Contains(err.Error(), "API limitations") {
		t.Errorf("unexpected message: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetch calls = %d, want exactly 1 (no retry)", len(fetcher.calls))
	}
}

func TestTranscriptTool_Invoke(t *testing.T) {
	fetcher := &fakeFetcher{records: []youtube.Record{{Start: 2, Text: "hi"}}}
	tool := youtube.NewTranscriptTool(fetcher)

	got, err := tool.Invoke(context.Background(), `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[00:02] hi" {
		t.Errorf("got %q", got)
	}
}

func TestTranscriptTool_Invoke_BadArguments(t *testing.T) {
	tool := youtube.NewTranscriptTool(&fakeFetcher{})

	if _, err := tool.Invoke(context.Background(), `{not json`); err == nil {
		t.Error("expected error for malformed arguments")
	}
}

func TestTranscriptTool_Definition(t *testing.T) {
	tool := youtube.NewTranscriptTool(&fakeFetcher{})
	def := tool.Definition()

	if def.Name != youtube.ToolName {
		t.Errorf("name = %q", def.Name)
	}
	if def.Description == "" {
		t.Error("description must not be empty")
	}
	required, ok := def.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "url" {
		t.Errorf("required = %v, want [url]", def.Parameters["required"])
	}
}
