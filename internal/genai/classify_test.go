package genai

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   ErrorKind
		wantStatus int
	}{
		{
			name:       "invalid key marker",
			err:        errors.New("generate failed with status 400: API key not valid. [reason: API_KEY_INVALID]"),
			wantKind:   KindKeyInvalid,
			wantStatus: 400,
		},
		{
			name:       "quota",
			err:        errors.New("generate failed with status 429: quota exceeded for quota metric"),
			wantKind:   KindQuotaExceeded,
			wantStatus: 429,
		},
		{
			name:     "network substring",
			err:      errors.New("network is unreachable"),
			wantKind: KindNetwork,
		},
		{
			name:     "unknown",
			err:      errors.New("something odd happened"),
			wantKind: KindUnknown,
		},
		{
			name:       "status with colon",
			err:        errors.New("upstream status: 503"),
			wantKind:   KindUnknown,
			wantStatus: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Raw != tt.err.Error() {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.err.Error())
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestClassify_PassesThroughAPIError(t *testing.T) {
	orig := &APIError{Kind: KindQuotaExceeded, Status: 429, Raw: "quota"}
	wrapped := fmt.Errorf("summarize: %w", orig)

	if got := Classify(wrapped); got != orig {
		t.Errorf("Classify did not unwrap existing APIError: got %v", got)
	}
}

func TestClassify_URLError(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://example.invalid", Err: errors.New("connection refused")}

	if got := Classify(err); got.Kind != KindNetwork {
		t.Errorf("Kind = %q, want %q", got.Kind, KindNetwork)
	}
}

func TestAPIError_Error(t *testing.T) {
	withStatus := &APIError{Kind: KindKeyInvalid, Status: 400, Raw: "bad key"}
	if got := withStatus.Error(); got != "key_invalid (status 400): bad key" {
		t.Errorf("Error() = %q", got)
	}

	noStatus := &APIError{Kind: KindUnknown, Raw: "boom"}
	if got := noStatus.Error(); got != "unknown: boom" {
		t.Errorf("Error() = %q", got)
	}
}
