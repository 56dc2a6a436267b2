package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="

	// userAgent is a plain browser UA. The watch page serves
	// ytInitialPlayerResponse to any desktop browser without login.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// maxWatchPageBytes bounds the watch page read; the player response sits
	// well within the first few MB of the document.
	maxWatchPageBytes = 6 * 1024 * 1024

	maxTimedTextBytes = 512 * 1024
)

// Source fetches caption records for a video from YouTube's public watch
// page: it extracts the ytInitialPlayerResponse JSON, picks the best usable
// caption track for the configured language preferences, and decodes the
// track's timedtext XML. No API key is required.
//
// A Source performs exactly one retrieval per Fetch call, no retries and no
// caching. Safe for concurrent use; the language preference list can be
// swapped at runtime with [Source.SetLanguages].
type Source struct {
	client *http.Client

	mu    sync.RWMutex
	langs []string
}

// SourceOption configures a Source during construction.
type SourceOption func(*Source)

// WithHTTPClient overrides the HTTP client used for all requests.
// The default client has a 30 second timeout.
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *Source) { s.client = c }
}

// WithLanguages sets the caption language preference list, most preferred
// first. A manual track in a preferred language beats an auto-generated one.
// The default is ["en"].
func WithLanguages(langs []string) SourceOption {
	return func(s *Source) {
		if len(langs) > 0 {
			s.langs = langs
		}
	}
}

// SetLanguages replaces the caption language preference list for subsequent
// fetches. An empty list is ignored. Safe to call while fetches are running;
// an in-flight fetch keeps the list it started with.
func (s *Source) SetLanguages(langs []string) {
	if len(langs) == 0 {
		return
	}
	s.mu.Lock()
	s.langs = append([]string(nil), langs...)
	s.mu.Unlock()
}

// NewSource constructs a Source with the given options.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		client: &http.Client{Timeout: 30 * time.Second},
		langs:  []string{"en"},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fetch retrieves the caption records for videoID in chronological order.
// Any failure (unreachable network, missing video, disabled captions, no
// usable track) is returned as-is for the caller to classify; Fetch does
// not distinguish causes beyond its error messages.
func (s *Source) Fetch(ctx context.Context, videoID string) ([]Record, error) {
	track, err := s.findCaptionTrack(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return s.fetchTimedText(ctx, track.BaseURL)
}

// Ping checks that YouTube is reachable with the Source's HTTP client. It
// issues a HEAD request against the site root and accepts any non-5xx
// response; YouTube answers HEADs without a session.
func (s *Source) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://www.youtube.com/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("youtube unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

// findCaptionTrack downloads the watch page for videoID and selects a
// caption track from its ytInitialPlayerResponse.
func (s *Source) findCaptionTrack(ctx context.Context, videoID string) (captionTrack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURLPrefix+videoID, nil)
	if err != nil {
		return captionTrack{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return captionTrack{}, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return captionTrack{}, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return captionTrack{}, fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return captionTrack{}, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return captionTrack{}, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return captionTrack{}, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return captionTrack{}, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return captionTrack{}, errors.New("no captions in player response")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, errors.New("no caption tracks")
	}
	s.mu.RLock()
	langs := s.langs
	s.mu.RUnlock()
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}
	return track, nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL into
// Records, preserving segment order and start offsets. Segments whose text is
// empty after cleaning (music markers, alignment padding) are dropped.
func (s *Source) fetchTimedText(ctx context.Context, baseURL string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return nil, err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	records := make([]Record, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaptionText(line.Text)
		if text == "" {
			continue
		}
		records = append(records, Record{Start: line.Start, Text: text})
	}
	if len(records) == 0 {
		return nil, errors.New("empty transcript")
	}
	return records, nil
}
