// Package mcpserver exposes the transcript tool over the Model Context
// Protocol so other MCP hosts can fetch YouTube transcripts through tubesage.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/tubesage/internal/observe"
	"github.com/MrWong99/tubesage/internal/youtube"
)

// transcriptInput is the MCP tool input payload.
type transcriptInput struct {
	URL string `json:"url" jsonschema:"any YouTube video URL"`
}

// transcriptOutput is the MCP tool output payload.
type transcriptOutput struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript"`
}

// New builds an MCP server exposing the transcript tool backed by tool.
func New(version string, tool *youtube.TranscriptTool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tubesage",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        youtube.ToolName,
		Description: "Fetch the transcript of a YouTube video and return it as timestamped text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input transcriptInput) (*mcp.CallToolResult, *transcriptOutput, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		videoID, err := youtube.ExtractVideoID(input.URL)
		if err != nil {
			return nil, nil, err
		}
		transcript, err := tool.FetchAndFormat(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, &transcriptOutput{VideoID: videoID, Transcript: transcript}, nil
	})

	return server
}

// Serve runs server over stdio until ctx is canceled or the peer disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	observe.Logger(ctx).Info("serving MCP over stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}
