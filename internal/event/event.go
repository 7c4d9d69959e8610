// Package event defines the lifecycle events a summarization request emits
// on its way from trigger to terminal state. Events are created by the
// orchestrator, carried by the delivery channel, and rendered by whichever
// surface (page stream or popup) receives them.
package event

// Kind identifies the type of a lifecycle event. The values are wire
// literals; page subscribers switch on them directly.
type Kind string

const (
	// KindLoading is emitted once, before the remote call starts.
	KindLoading Kind = "loading"
	// KindComplete carries the generated summary.
	KindComplete Kind = "summary-complete"
	// KindKeyMissing reports that no API credential is configured.
	KindKeyMissing Kind = "api-key-missing"
	// KindEmpty reports every other failure: blank summaries and all
	// remote API errors, differentiated only by Message.
	KindEmpty Kind = "summary-empty"
)

// Event is one lifecycle notification for a summarization request.
// Exactly one KindLoading event is followed by exactly one terminal event
// (KindComplete, KindKeyMissing, or KindEmpty) per request. RequestID
// correlates the events of one request across overlapping requests that
// share a destination.
type Event struct {
	Kind      Kind   `json:"type"`
	RequestID string `json:"request_id"`
	Preview   string `json:"preview,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Loading builds the initial event for a request.
func Loading(requestID, preview string) Event {
	return Event{Kind: KindLoading, RequestID: requestID, Preview: preview}
}

// Complete builds the successful terminal event.
func Complete(requestID, summary, preview string) Event {
	return Event{Kind: KindComplete, RequestID: requestID, Summary: summary, Preview: preview}
}

// Failed builds a failed terminal event of the given kind.
func Failed(requestID string, kind Kind, message string) Event {
	return Event{Kind: kind, RequestID: requestID, Message: message}
}

// Terminal reports whether the event ends its request's lifecycle.
func (e Event) Terminal() bool {
	return e.Kind != KindLoading
}
