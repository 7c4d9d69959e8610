package genai

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrorKind is the normalized classification of a remote API failure.
type ErrorKind string

const (
	KindKeyInvalid    ErrorKind = "key_invalid"
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindNetwork       ErrorKind = "network"
	KindUnknown       ErrorKind = "unknown"
)

// APIError is a remote-call failure reduced to a small taxonomy. Raw keeps
// the original message for logging; Status is the HTTP status when one could
// be extracted.
type APIError struct {
	Kind   ErrorKind
	Status int
	Raw    string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Raw)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Raw)
}

// Classifier maps an arbitrary error from the remote call to an APIError.
// It is pluggable so the matching rules can be extended without touching the
// orchestrator.
type Classifier func(err error) *APIError

var statusPattern = regexp.MustCompile(`status[:\s]*(\d+)`)

// Classify is the default Classifier. It matches well-known substrings of the
// provider's error messages; this is a best-effort heuristic, not a contract.
// Transport-level failures (url.Error) are classified as network errors even
// when the message lacks the substring.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	msg := err.Error()
	kind := KindUnknown
	switch {
	case strings.Contains(msg, "API_KEY_INVALID"):
		kind = KindKeyInvalid
	case strings.Contains(msg, "quota"):
		kind = KindQuotaExceeded
	case strings.Contains(msg, "network"):
		kind = KindNetwork
	}

	if kind == KindUnknown {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			kind = KindNetwork
		}
	}

	status := 0
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
	}

	return &APIError{Kind: kind, Status: status, Raw: msg}
}
