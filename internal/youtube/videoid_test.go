package youtube_test

import (
	"errors"
	"testing"

	"github.com/MrWong99/tubesage/internal/youtube"
)

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts URL", "https://www.youtube.com/shorts/abcABC123_-", "abcABC123_-"},
		{"no scheme", "youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := youtube.ExtractVideoID(tc.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestExtractVideoID_LastOccurrenceWins(t *testing.T) {
	t.Parallel()
	// A URL carrying two plausible IDs resolves to the rightmost one.
	url := "https://example.com/aaaaaaaaaaa/watch?v=dQw4w9WgXcQ"
	got, err := youtube.ExtractVideoID(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "dQw4w9WgXcQ" {
		t.Errorf("got %q, want the rightmost candidate %q", got, "dQw4w9WgXcQ")
	}
}

func TestExtractVideoID_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"plain text", "not a url"},
		{"id too short", "https://youtu.be/short"},
		{"no separator before id", "dQw4w9WgXcQ"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := youtube.ExtractVideoID(tc.url)
			if !errors.Is(err, youtube.ErrInvalidURL) {
				t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidURL", tc.url, err)
			}
		})
	}
}

func TestExtractVideoID_MatchesAnywhere(t *testing.T) {
	t.Parallel()
	// Extraction is separator-anchored, not host-anchored: any "/" or "v="
	// followed by eleven ID characters counts. Callers are expected to pass
	// YouTube URLs.
	got, err := youtube.ExtractVideoID("https://example.com/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "dQw4w9WgXcQ" {
		t.Errorf("got %q", got)
	}
}
