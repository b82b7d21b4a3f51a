package config

import (
	"errors"
	"strings"
	"testing"
)

// mockKeychain is a test double for the keychain interface.
type mockKeychain struct {
	values map[string]string
	err    error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.values[account], nil
}

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (b mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b.strings[key]
	return v, ok, nil
}

func (b mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.ints[key]
	return v, ok, nil
}

func (b mapBackend) SetString(key, val string) error { return nil }
func (b mapBackend) SetInt(key string, val int) error { return nil }
func (b mapBackend) Delete(key string) error          { return nil }

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SCRIBA_GRAPH_TENANT_ID", "tenant-1")
	t.Setenv("SCRIBA_GRAPH_CLIENT_ID", "client-1")
	t.Setenv("SCRIBA_GRAPH_CLIENT_SECRET", "secret-1")
	t.Setenv("SCRIBA_GEMINI_API_KEY", "key-1")
}

func TestDefaults(t *testing.T) {
	requiredEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3978 {
		t.Errorf("Server.Port = %d, want 3978", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Graph.BotName != "scriba" {
		t.Errorf("Graph.BotName = %q", cfg.Graph.BotName)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

func TestBackendValuesOverrideDefaults(t *testing.T) {
	requiredEnv(t)

	b := mapBackend{
		strings: map[string]string{
			"gemini.model":  "gemini-2.5-pro",
			"graph.bot_name": "notes-bot",
		},
		ints: map[string]int{"server.port": 8080},
	}

	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Graph.BotName != "notes-bot" {
		t.Errorf("Graph.BotName = %q", cfg.Graph.BotName)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	requiredEnv(t)
	t.Setenv("SCRIBA_SERVER_PORT", "9999")
	t.Setenv("SCRIBA_GEMINI_MODEL", "gemini-env")

	b := mapBackend{
		strings: map[string]string{"gemini.model": "gemini-backend"},
		ints:    map[string]int{"server.port": 8080},
	}

	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-env" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
}

func TestKeychainFallbackForSecrets(t *testing.T) {
	t.Setenv("SCRIBA_GRAPH_TENANT_ID", "tenant-1")
	t.Setenv("SCRIBA_GRAPH_CLIENT_ID", "client-1")
	t.Setenv("SCRIBA_GRAPH_CLIENT_SECRET", "")
	t.Setenv("SCRIBA_GEMINI_API_KEY", "")

	kc := mockKeychain{values: map[string]string{
		"graph_client_secret": "kc-secret",
		"gemini_api_key":      "kc-key",
		"api_token":           "kc-token",
	}}

	cfg, err := loadWith(mapBackend{}, kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Graph.ClientSecret != "kc-secret" {
		t.Errorf("Graph.ClientSecret = %q", cfg.Graph.ClientSecret)
	}
	if cfg.Gemini.APIKey != "kc-key" {
		t.Errorf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Server.APIToken != "kc-token" {
		t.Errorf("Server.APIToken = %q", cfg.Server.APIToken)
	}
}

func TestMissingRequiredConfig(t *testing.T) {
	t.Setenv("SCRIBA_GRAPH_TENANT_ID", "")
	t.Setenv("SCRIBA_GRAPH_CLIENT_ID", "client-1")
	t.Setenv("SCRIBA_GRAPH_CLIENT_SECRET", "secret-1")
	t.Setenv("SCRIBA_GEMINI_API_KEY", "key-1")

	_, err := loadWith(mapBackend{}, mockKeychain{err: errors.New("no keychain")})
	if err == nil {
		t.Fatal("expected error for missing tenant id")
	}
	if !strings.Contains(err.Error(), "SCRIBA_GRAPH_TENANT_ID") {
		t.Errorf("error does not name missing key: %v", err)
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	requiredEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, info := range ShowAll(cfg) {
		if info.Key == "gemini.api_key" || info.Key == "graph.client_secret" || info.Key == "server.api_token" {
			t.Errorf("secret key %s exposed by ShowAll", info.Key)
		}
	}
}

func TestGetKeyMasksSecrets(t *testing.T) {
	requiredEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := GetKey(cfg, "gemini.api_key")
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if v != "(set)" {
		t.Errorf("GetKey(gemini.api_key) = %q, want (set)", v)
	}

	if _, err := GetKey(cfg, "nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}
