package orchestrator

// previewLimit is the maximum preview length in runes, not grapheme clusters.
const previewLimit = 100

const previewMarker = "..."

// Truncate returns a preview of text: unchanged when at most previewLimit
// runes, otherwise the first previewLimit runes plus the marker. Applying
// Truncate to an already-truncated string yields the same string, because the
// marker sits past the cut point.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + previewMarker
}
