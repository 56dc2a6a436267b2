// Package youtube implements the transcript side of tubesage: video ID
// extraction from arbitrary YouTube URL shapes, caption retrieval via the
// public watch page, and deterministic timestamped formatting of the result.
package youtube

import (
	"errors"
	"regexp"
)

// ErrInvalidURL is returned when no 11-character video identifier can be
// extracted from a URL. This is a user-correctable failure; callers should
// not retry without a different URL.
var ErrInvalidURL = errors.New("youtube: invalid YouTube URL, no video ID found")

// videoIDRe matches a separator ("v=" or "/") immediately followed by exactly
// 11 characters from the YouTube video ID alphabet. Both
// youtube.com/watch?v=ID and youtu.be/ID shapes hit this pattern.
var videoIDRe = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID extracts the 11-character video identifier from url.
//
// The last separator-anchored run in the URL wins, so query parameters and
// path segments after the ID are ignored. The separator anchoring means the
// pattern never matches into the middle of an unrelated token, but the match
// may occur anywhere in the string: an 11-char run embedded mid-path in a
// non-YouTube URL is accepted. Returns ErrInvalidURL when no run is found.
func ExtractVideoID(url string) (string, error) {
	matches := videoIDRe.FindAllStringSubmatch(url, -1)
	if len(matches) == 0 {
		return "", ErrInvalidURL
	}
	return matches[len(matches)-1][1], nil
}
