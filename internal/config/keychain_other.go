//go:build !darwin

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Non-darwin platforms have no system keychain; secrets live in a restricted
// JSON file under the data directory, keyed "service/account".

func secretsFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "yoyaku", "secrets.json")
}

func readSecrets(path string) map[string]string {
	secrets := make(map[string]string)
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &secrets)
	}
	return secrets
}

func keychainGet(service, account string) ([]byte, error) {
	path := secretsFilePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("keychain not available: %w", err)
	}
	val, ok := readSecrets(path)[service+"/"+account]
	if !ok {
		return nil, fmt.Errorf("no secret for %s/%s", service, account)
	}
	return []byte(val), nil
}

func keychainSet(service, account, value string) error {
	path := secretsFilePath()
	secrets := readSecrets(path)
	secrets[service+"/"+account] = value

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating secrets dir: %w", err)
	}
	out, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}
