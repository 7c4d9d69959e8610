package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shirase/yoyaku/internal/event"
	"github.com/shirase/yoyaku/internal/genai"
	"github.com/shirase/yoyaku/internal/store"
)

// --- mocks ---

type mockCreds struct {
	key string
	err error
}

func (m mockCreds) Credential() (string, error) {
	return m.key, m.err
}

type mockSummarizer struct {
	summary string
	err     error
	testErr error
	calls   int
}

func (m *mockSummarizer) Summarize(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.summary, m.err
}

func (m *mockSummarizer) TestKey(_ context.Context, _ string) error {
	return m.testErr
}

// recordingChannel records every delivered and fallback event. delivered
// controls what Deliver reports.
type recordingChannel struct {
	mu        sync.Mutex
	delivered bool
	sent      []event.Event
	fallback  []event.Event
}

func (c *recordingChannel) Deliver(_ string, ev event.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, ev)
	return c.delivered
}

func (c *recordingChannel) Fallback(_ context.Context, ev event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = append(c.fallback, ev)
	return nil
}

func newTestOrchestrator(creds CredentialSource, client Summarizer) (*Orchestrator, *recordingChannel) {
	ch := &recordingChannel{delivered: true}
	return New(creds, client, ch), ch
}

// --- tests ---

func TestRun_MissingCredential(t *testing.T) {
	client := &mockSummarizer{summary: "should not be called"}
	o, ch := newTestOrchestrator(mockCreds{err: store.ErrNotFound}, client)

	terminal := o.Run(context.Background(), Request{SourceText: "hello", Destination: "tab-1"})

	if terminal.Kind != event.KindKeyMissing {
		t.Fatalf("terminal kind = %q, want %q", terminal.Kind, event.KindKeyMissing)
	}
	if terminal.Message != "APIキーが設定されていません。拡張機能の設定でAPIキーを入力してください。" {
		t.Errorf("terminal message = %q", terminal.Message)
	}
	if client.calls != 0 {
		t.Errorf("summarizer called %d times, want 0", client.calls)
	}

	if len(ch.sent) != 2 {
		t.Fatalf("got %d events, want 2", len(ch.sent))
	}
	if ch.sent[0].Kind != event.KindLoading {
		t.Errorf("first event = %q, want %q", ch.sent[0].Kind, event.KindLoading)
	}
	if ch.sent[0].Preview != "hello" {
		t.Errorf("loading preview = %q, want %q", ch.sent[0].Preview, "hello")
	}
}

func TestRun_Success(t *testing.T) {
	client := &mockSummarizer{summary: "短い要約です。"}
	o, ch := newTestOrchestrator(mockCreds{key: "k"}, client)

	terminal := o.Run(context.Background(), Request{SourceText: "元テキスト", Destination: "tab-1"})

	if terminal.Kind != event.KindComplete {
		t.Fatalf("terminal kind = %q, want %q", terminal.Kind, event.KindComplete)
	}
	if terminal.Summary != "短い要約です。" {
		t.Errorf("summary = %q", terminal.Summary)
	}
	if terminal.Preview != "元テキスト" {
		t.Errorf("preview = %q", terminal.Preview)
	}

	if len(ch.sent) != 2 {
		t.Fatalf("got %d events, want 2", len(ch.sent))
	}
	if ch.sent[0].Kind != event.KindLoading || !ch.sent[1].Terminal() {
		t.Errorf("event order = %q, %q; want loading then terminal", ch.sent[0].Kind, ch.sent[1].Kind)
	}
	if ch.sent[0].RequestID == "" || ch.sent[0].RequestID != ch.sent[1].RequestID {
		t.Errorf("request IDs not correlated: %q vs %q", ch.sent[0].RequestID, ch.sent[1].RequestID)
	}
}

func TestRun_BlankSummary(t *testing.T) {
	client := &mockSummarizer{summary: "  "}
	o, _ := newTestOrchestrator(mockCreds{key: "k"}, client)

	terminal := o.Run(context.Background(), Request{SourceText: "hello", Destination: "tab-1"})

	if terminal.Kind != event.KindEmpty {
		t.Fatalf("terminal kind = %q, want %q", terminal.Kind, event.KindEmpty)
	}
	if terminal.Message != msgEmptySummary {
		t.Errorf("message = %q, want %q", terminal.Message, msgEmptySummary)
	}
}

func TestRun_APIErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid key", &genai.APIError{Kind: genai.KindKeyInvalid, Raw: "API_KEY_INVALID"}, msgKeyInvalid},
		{"quota", &genai.APIError{Kind: genai.KindQuotaExceeded, Raw: "quota exceeded"}, msgQuota},
		{"network", &genai.APIError{Kind: genai.KindNetwork, Raw: "network down"}, msgNetwork},
		{"unknown", &genai.APIError{Kind: genai.KindUnknown, Raw: "boom"}, msgAPIError},
		{"unclassified", errors.New("boom"), msgAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSummarizer{err: tt.err}
			o, _ := newTestOrchestrator(mockCreds{key: "k"}, client)

			terminal := o.Run(context.Background(), Request{SourceText: "x", Destination: "tab-1"})

			// All remote failures collapse to the empty-summary event kind;
			// only the message differs.
			if terminal.Kind != event.KindEmpty {
				t.Errorf("terminal kind = %q, want %q", terminal.Kind, event.KindEmpty)
			}
			if terminal.Message != tt.want {
				t.Errorf("message = %q, want %q", terminal.Message, tt.want)
			}
		})
	}
}

func TestRun_QuotaErrorFromClassifier(t *testing.T) {
	// A raw error whose message mentions quota, classified on the way in.
	raw := errors.New("generate failed with status 429: quota exceeded for project")
	client := &mockSummarizer{err: genai.Classify(raw)}
	o, _ := newTestOrchestrator(mockCreds{key: "k"}, client)

	terminal := o.Run(context.Background(), Request{SourceText: "x", Destination: "tab-1"})

	if terminal.Message != msgQuota {
		t.Errorf("message = %q, want %q", terminal.Message, msgQuota)
	}
}

func TestRun_LoadingFailureDropped(t *testing.T) {
	client := &mockSummarizer{summary: "ok"}
	ch := &recordingChannel{delivered: false}
	o := New(mockCreds{key: "k"}, client, ch)

	o.Run(context.Background(), Request{SourceText: "hello", Destination: "gone"})

	// Loading has no fallback; only the terminal event lands there.
	if len(ch.fallback) != 1 {
		t.Fatalf("got %d fallback events, want 1", len(ch.fallback))
	}
	if ch.fallback[0].Kind != event.KindComplete {
		t.Errorf("fallback event = %q, want %q", ch.fallback[0].Kind, event.KindComplete)
	}
}

func TestRun_PreviewTruncated(t *testing.T) {
	long := strings.Repeat("あ", 150)
	client := &mockSummarizer{summary: "ok"}
	o, ch := newTestOrchestrator(mockCreds{key: "k"}, client)

	o.Run(context.Background(), Request{SourceText: long, Destination: "tab-1"})

	want := strings.Repeat("あ", 100) + "..."
	if ch.sent[0].Preview != want {
		t.Errorf("loading preview not truncated")
	}
	if ch.sent[1].Preview != want {
		t.Errorf("terminal preview not truncated")
	}
}

func TestTestKey(t *testing.T) {
	tests := []struct {
		name   string
		creds  mockCreds
		client *mockSummarizer
		want   KeyStatus
	}{
		{"missing", mockCreds{err: store.ErrNotFound}, &mockSummarizer{}, KeyMissing},
		{"invalid", mockCreds{key: "bad"}, &mockSummarizer{testErr: errors.New("API_KEY_INVALID")}, KeyInvalid},
		{"valid", mockCreds{key: "good"}, &mockSummarizer{}, KeyValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(tt.creds, tt.client)
			if got := o.TestKey(context.Background()); got != tt.want {
				t.Errorf("TestKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
