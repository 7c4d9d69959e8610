package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fixed keys for the persisted slots. The two fallback slots hold at most one
// unread payload each; the popup drains them read-once.
const (
	keyCredential = "user-credential"
	keyResultSlot = "fallback-result-slot"
	keyErrorSlot  = "fallback-error-slot"
	keyAttention  = "popup-attention"
)

// ResultPayload is a completed summary parked for popup pickup after direct
// delivery to the page failed.
type ResultPayload struct {
	Summary      string    `json:"summary"`
	OriginalText string    `json:"originalText"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorPayload is a failure message parked for popup pickup.
type ErrorPayload struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Credential returns the stored API credential, or ErrNotFound when the user
// has not configured one.
func (s *Store) Credential() (string, error) {
	return s.Get(keyCredential)
}

// SetCredential stores the API credential, replacing any previous one.
func (s *Store) SetCredential(key string) error {
	return s.Set(keyCredential, key)
}

// ClearCredential removes the stored API credential.
func (s *Store) ClearCredential() error {
	return s.Delete(keyCredential)
}

// PutResult writes a result payload to the fallback result slot,
// unconditionally overwriting any unread payload.
func (s *Store) PutResult(p ResultPayload) error {
	return s.putJSON(keyResultSlot, p)
}

// TakeResult reads and clears the fallback result slot. Returns nil when the
// slot is empty. The read and the clear are two statements; a write landing
// between them is lost to this reader and picked up on the next open, which
// is acceptable for a newest-wins slot.
func (s *Store) TakeResult() (*ResultPayload, error) {
	var p ResultPayload
	ok, err := s.takeJSON(keyResultSlot, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// PutError writes an error payload to the fallback error slot,
// unconditionally overwriting any unread payload.
func (s *Store) PutError(p ErrorPayload) error {
	return s.putJSON(keyErrorSlot, p)
}

// TakeError reads and clears the fallback error slot. Returns nil when the
// slot is empty.
func (s *Store) TakeError() (*ErrorPayload, error) {
	var p ErrorPayload
	ok, err := s.takeJSON(keyErrorSlot, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// RequestAttention marks that the popup should present itself to the user.
func (s *Store) RequestAttention() error {
	return s.Set(keyAttention, "1")
}

// TakeAttention reads and clears the attention flag.
func (s *Store) TakeAttention() (bool, error) {
	_, err := s.Get(keyAttention)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, s.Delete(keyAttention)
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// takeJSON reads key into v and deletes it. Returns false when the key is absent.
func (s *Store) takeJSON(key string, v any) (bool, error) {
	raw, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, s.Delete(key)
}
