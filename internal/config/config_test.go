package config

import (
	"testing"
)

// mockBackend is an in-memory ConfigBackend.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
	err     error
}

func (m *mockBackend) GetString(key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mockBackend) GetInt(key string) (int, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockBackend) SetString(key, val string) error {
	if m.strings == nil {
		m.strings = make(map[string]string)
	}
	m.strings[key] = val
	return nil
}

func (m *mockBackend) SetInt(key string, val int) error {
	if m.ints == nil {
		m.ints = make(map[string]int)
	}
	m.ints[key] = val
	return nil
}

func (m *mockBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadWith(&mockBackend{})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Server.Port != 4712 {
		t.Errorf("Server.Port = %d, want 4712", cfg.Server.Port)
	}
	if cfg.Provider.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "gemini-2.0-flash" {
		t.Errorf("Provider.Model = %q", cfg.Provider.Model)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

func TestLoadFromBackend(t *testing.T) {
	b := &mockBackend{
		strings: map[string]string{
			"provider.model": "gemini-2.5-pro",
			"log.level":      "debug",
		},
		ints: map[string]int{
			"server.port": 9000,
		},
	}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Provider.Model != "gemini-2.5-pro" {
		t.Errorf("Provider.Model = %q", cfg.Provider.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Provider.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("Provider.BaseURL = %q, want default", cfg.Provider.BaseURL)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	t.Setenv("YOYAKU_SERVER_PORT", "5001")
	t.Setenv("YOYAKU_PROVIDER_MODEL", "gemini-env")

	b := &mockBackend{
		ints: map[string]int{"server.port": 9000},
	}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Server.Port != 5001 {
		t.Errorf("Server.Port = %d, want env override 5001", cfg.Server.Port)
	}
	if cfg.Provider.Model != "gemini-env" {
		t.Errorf("Provider.Model = %q, want env override", cfg.Provider.Model)
	}
}

func TestEnvOverrideBadInt(t *testing.T) {
	t.Setenv("YOYAKU_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(&mockBackend{})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Server.Port != 4712 {
		t.Errorf("Server.Port = %d, want default after bad env value", cfg.Server.Port)
	}
}

func TestShowAll(t *testing.T) {
	cfg, _ := loadWith(&mockBackend{})
	infos := ShowAll(cfg)

	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(specs))
	}

	byKey := make(map[string]KeyInfo)
	for _, info := range infos {
		byKey[info.Key] = info
	}
	if got := byKey["server.port"]; got.Value != "4712" || got.EnvVar != "YOYAKU_SERVER_PORT" {
		t.Errorf("server.port = %+v", got)
	}
	if got := byKey["provider.model"]; got.Value != "gemini-2.0-flash" {
		t.Errorf("provider.model = %+v", got)
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	want := map[string]bool{
		"server.port": true, "provider.base_url": true, "provider.model": true,
		"storage.data_dir": true, "log.level": true,
	}
	if len(keys) != len(want) {
		t.Fatalf("ValidKeys = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}
