// Package orchestrator drives one summarization request from trigger to
// terminal lifecycle event: read the credential, call the summarization
// client, and emit exactly one loading event followed by exactly one terminal
// event through the delivery channel. Request-level failures never escape;
// every path converts to a failed terminal event with a fixed user-facing
// message.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/shirase/yoyaku/internal/event"
	"github.com/shirase/yoyaku/internal/store"
)

// State names the phases of one request. Each request runs a fresh machine;
// nothing is shared across requests beyond the delivery channel, so
// overlapping requests race on the same destination (last write wins).
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingCredential State = "awaiting_credential"
	StateRequesting         State = "requesting"
	StateTerminal           State = "terminal"
)

// KeyStatus is the outcome of a credential test.
type KeyStatus string

const (
	KeyValid   KeyStatus = "valid"
	KeyInvalid KeyStatus = "invalid"
	KeyMissing KeyStatus = "missing"
)

// Request is one summarization attempt: the selected source text and the
// opaque destination handle of the page that triggered it. Requests are
// ephemeral and never stored.
type Request struct {
	SourceText  string
	Destination string
}

// CredentialSource reads the user's API credential. A store.ErrNotFound
// means none is configured.
type CredentialSource interface {
	Credential() (string, error)
}

// Summarizer performs remote generation calls.
type Summarizer interface {
	Summarize(ctx context.Context, credential, text string) (string, error)
	TestKey(ctx context.Context, credential string) error
}

// Channel delivers lifecycle events. Deliver reports whether the direct path
// reached the destination; Fallback persists a terminal event for popup
// pickup.
type Channel interface {
	Deliver(destination string, ev event.Event) bool
	Fallback(ctx context.Context, ev event.Event) error
}

// Orchestrator wires the credential source, summarization client, and
// delivery channel. It is safe for concurrent use; each request carries its
// own state.
type Orchestrator struct {
	creds   CredentialSource
	client  Summarizer
	channel Channel
	logger  *slog.Logger
}

// New creates an Orchestrator.
func New(creds CredentialSource, client Summarizer, channel Channel) *Orchestrator {
	return &Orchestrator{
		creds:   creds,
		client:  client,
		channel: channel,
		logger:  slog.Default(),
	}
}

// Start begins a request in the background and returns its correlation ID.
// The request runs to its terminal event regardless of the caller's context;
// there is no cancellation once a request begins.
func (o *Orchestrator) Start(req Request) string {
	id := uuid.NewString()
	go o.run(context.Background(), req, id)
	return id
}

// Run executes a request synchronously and returns its terminal event.
func (o *Orchestrator) Run(ctx context.Context, req Request) event.Event {
	return o.run(ctx, req, uuid.NewString())
}

func (o *Orchestrator) run(ctx context.Context, req Request, id string) event.Event {
	st := StateIdle
	preview := Truncate(req.SourceText)

	o.emit(ctx, req.Destination, event.Loading(id, preview))
	st = StateAwaitingCredential

	credential, err := o.creds.Credential()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			o.logger.Error("reading credential", "request_id", id, "error", err)
		}
		return o.terminal(ctx, req.Destination, event.Failed(id, event.KindKeyMissing, msgKeyMissing))
	}

	st = StateRequesting
	o.logger.Debug("requesting summary", "request_id", id, "state", string(st), "source_len", len(req.SourceText))

	summary, err := o.client.Summarize(ctx, credential, req.SourceText)
	if err != nil {
		o.logger.Warn("summarization failed", "request_id", id, "error", err)
		return o.terminal(ctx, req.Destination, event.Failed(id, event.KindEmpty, messageFor(err)))
	}
	if strings.TrimSpace(summary) == "" {
		return o.terminal(ctx, req.Destination, event.Failed(id, event.KindEmpty, msgEmptySummary))
	}

	return o.terminal(ctx, req.Destination, event.Complete(id, summary, preview))
}

// terminal emits ev and returns it. st transitions to StateTerminal are
// implicit; the terminal event itself is the observable state.
func (o *Orchestrator) terminal(ctx context.Context, destination string, ev event.Event) event.Event {
	o.emit(ctx, destination, ev)
	return ev
}

// emit attempts direct delivery. Terminal events that cannot reach the page
// go to the fallback path; loading events are silently dropped, because the
// popup has no loading rendering.
func (o *Orchestrator) emit(ctx context.Context, destination string, ev event.Event) {
	if o.channel.Deliver(destination, ev) {
		return
	}
	if !ev.Terminal() {
		o.logger.Debug("loading event dropped, page unreachable", "request_id", ev.RequestID, "destination", destination)
		return
	}
	if err := o.channel.Fallback(ctx, ev); err != nil {
		o.logger.Error("fallback delivery failed", "request_id", ev.RequestID, "error", err)
	}
}

// TestKey checks the stored credential with one minimal generation call.
func (o *Orchestrator) TestKey(ctx context.Context) KeyStatus {
	credential, err := o.creds.Credential()
	if err != nil {
		return KeyMissing
	}
	if err := o.client.TestKey(ctx, credential); err != nil {
		return KeyInvalid
	}
	return KeyValid
}
