package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Graph   GraphConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port        int
	CallbackURL string
	APIToken    string
}

// GraphConfig holds the Microsoft Graph application credentials and the bot's
// own identity (used when joining calls and inviting it to meetings).
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BotName      string
	BotAddress   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port:        3978,
			CallbackURL: "http://localhost:3978/api/calls",
		},
		Graph: GraphConfig{
			BotName: "scriba",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from .env (if present), the platform-native
// backend, environment variables, and the platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.scriba.app) and secrets
// fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/scriba/config.json
// and secrets must be provided via environment variables.
//
// Environment variables (SCRIBA_*) override backend values on all platforms.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try platform keychain for secrets still empty after env overrides.
	if cfg.Graph.ClientSecret == "" {
		if v, err := kc.Get("scriba", "graph_client_secret"); err == nil && v != "" {
			cfg.Graph.ClientSecret = v
		}
	}
	if cfg.Gemini.APIKey == "" {
		if v, err := kc.Get("scriba", "gemini_api_key"); err == nil && v != "" {
			cfg.Gemini.APIKey = v
		}
	}
	if cfg.Server.APIToken == "" {
		if v, err := kc.Get("scriba", "api_token"); err == nil && v != "" {
			cfg.Server.APIToken = v
		}
	}

	var missing []string
	if cfg.Graph.TenantID == "" {
		missing = append(missing, "SCRIBA_GRAPH_TENANT_ID")
	}
	if cfg.Graph.ClientID == "" {
		missing = append(missing, "SCRIBA_GRAPH_CLIENT_ID")
	}
	if cfg.Graph.ClientSecret == "" {
		missing = append(missing, "SCRIBA_GRAPH_CLIENT_SECRET")
	}
	if cfg.Gemini.APIKey == "" {
		missing = append(missing, "SCRIBA_GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s%s",
			strings.Join(missing, ", "), apiKeyHint())
	}

	return cfg, nil
}

// keychainReader reads from macOS Keychain via the security CLI.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
