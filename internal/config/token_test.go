package config

import (
	"errors"
	"testing"
)

type mockKeychain struct {
	values map[string]string
}

func (m *mockKeychain) Get(service, account string) (string, error) {
	v, ok := m.values[service+"/"+account]
	if !ok {
		return "", errors.New("no secret")
	}
	return v, nil
}

func (m *mockKeychain) Set(service, account, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[service+"/"+account] = value
	return nil
}

func TestGetAPIToken_GeneratesOnFirstUse(t *testing.T) {
	kc := &mockKeychain{}

	token, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("GetAPIToken failed: %v", err)
	}
	if len(token) != 64 { // 32 random bytes, hex-encoded
		t.Errorf("token length = %d, want 64", len(token))
	}

	// Second call returns the persisted token, not a new one.
	again, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("second GetAPIToken failed: %v", err)
	}
	if again != token {
		t.Errorf("token changed between calls: %q vs %q", again, token)
	}
}

func TestGetAPIToken_ReturnsExisting(t *testing.T) {
	kc := &mockKeychain{values: map[string]string{"yoyaku/api_token": "preset"}}

	token, err := GetAPIToken(kc)
	if err != nil {
		t.Fatalf("GetAPIToken failed: %v", err)
	}
	if token != "preset" {
		t.Errorf("token = %q, want preset value", token)
	}
}
