package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/tubesage/internal/observe"
	"github.com/MrWong99/tubesage/pkg/types"
)

// ToolName is the function name the model uses to request a transcript.
const ToolName = "fetch_youtube_transcript"

// Fetcher retrieves raw transcript records for a video ID. Implemented by
// [*Source]; tests supply fakes.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) ([]Record, error)
}

// SourceError reports a transcript retrieval failure for a valid video ID.
// The underlying cause is preserved for logging; Error returns a message
// suitable for relaying to the model and the user.
type SourceError struct {
	VideoID string
	Cause   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("could not retrieve a transcript for video %q: the video may not exist, may have no transcript, or the transcript may be inaccessible due to API limitations", e.VideoID)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// TranscriptTool fetches and formats YouTube transcripts on behalf of the
// agent. It satisfies the runtime's tool contract via [TranscriptTool.Definition]
// and [TranscriptTool.Invoke].
type TranscriptTool struct {
	fetcher Fetcher
	metrics *observe.Metrics
}

// NewTranscriptTool returns a tool backed by the given fetcher.
func NewTranscriptTool(fetcher Fetcher) *TranscriptTool {
	return &TranscriptTool{
		fetcher: fetcher,
		metrics: observe.DefaultMetrics(),
	}
}

// Definition describes the tool to the LLM provider.
func (t *TranscriptTool) Definition() types.ToolDefinition {
	return types.ToolDefinition{
		Name:        ToolName,
		Description: "Fetch the transcript of a YouTube video and return it as timestamped text. Use this whenever the user asks about the content of a YouTube video.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Any YouTube video URL, e.g. https://www.youtube.com/watch?v=... or https://youtu.be/...",
				},
			},
			"required": []string{"url"},
		},
	}
}

// toolArgs is the JSON argument payload the model sends for this tool.
type toolArgs struct {
	URL string `json:"url"`
}

// Invoke parses the JSON arguments and runs [TranscriptTool.FetchAndFormat].
func (t *TranscriptTool) Invoke(ctx context.Context, arguments string) (string, error) {
	var args toolArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid tool arguments: %w", err)
	}
	return t.FetchAndFormat(ctx, args.URL)
}

// FetchAndFormat extracts the video ID from url, retrieves the transcript
// and renders it as one "[MM:SS] text" line per record.
//
// Returns [ErrInvalidURL] when no video ID can be extracted, and a
// [*SourceError] when retrieval fails. Each call performs exactly one
// retrieval attempt.
func (t *TranscriptTool) FetchAndFormat(ctx context.Context, url string) (string, error) {
	ctx, span := observe.StartSpan(ctx, "youtube.FetchAndFormat",
		trace.WithAttributes(attribute.String("tool", ToolName)),
	)
	defer span.End()

	videoID, err := ExtractVideoID(url)
	if err != nil {
		t.metrics.RecordToolCall(ctx, ToolName, "invalid_url")
		return "", err
	}
	span.SetAttributes(attribute.String("video_id", videoID))

	start := time.Now()
	records, err := t.fetcher.Fetch(ctx, videoID)
	t.metrics.TranscriptFetchDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Bool("ok", err == nil)),
	)
	if err != nil {
		t.metrics.RecordTranscriptFetch(ctx, "error")
		t.metrics.RecordToolCall(ctx, ToolName, "error")
		observe.Logger(ctx).Warn("transcript fetch failed",
			"video_id", videoID, "error", err)
		return "", &SourceError{VideoID: videoID, Cause: err}
	}
	t.metrics.RecordTranscriptFetch(ctx, "ok")
	t.metrics.RecordToolCall(ctx, ToolName, "ok")

	observe.Logger(ctx).Info("transcript fetched",
		"video_id", videoID, "records", len(records))
	return FormatTranscript(records), nil
}
