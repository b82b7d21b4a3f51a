package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	account string // keychain account name, set for secrets only
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "SCRIBA_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.callback_url", typ: kString, env: "SCRIBA_SERVER_CALLBACK_URL",
		apply:   func(cfg *Config, v any) { cfg.Server.CallbackURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.CallbackURL },
	},
	{
		key: "server.api_token", typ: kString, env: "SCRIBA_API_TOKEN",
		secret: true, account: "api_token",
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "graph.tenant_id", typ: kString, env: "SCRIBA_GRAPH_TENANT_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.TenantID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.TenantID },
	},
	{
		key: "graph.client_id", typ: kString, env: "SCRIBA_GRAPH_CLIENT_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.ClientID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.ClientID },
	},
	{
		key: "graph.client_secret", typ: kString, env: "SCRIBA_GRAPH_CLIENT_SECRET",
		secret: true, account: "graph_client_secret",
		apply:   func(cfg *Config, v any) { cfg.Graph.ClientSecret = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.ClientSecret },
	},
	{
		key: "graph.bot_name", typ: kString, env: "SCRIBA_GRAPH_BOT_NAME",
		apply:   func(cfg *Config, v any) { cfg.Graph.BotName = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.BotName },
	},
	{
		key: "graph.bot_address", typ: kString, env: "SCRIBA_GRAPH_BOT_ADDRESS",
		apply:   func(cfg *Config, v any) { cfg.Graph.BotAddress = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.BotAddress },
	},
	{
		key: "gemini.api_key", typ: kString, env: "SCRIBA_GEMINI_API_KEY",
		secret: true, account: "gemini_api_key",
		apply:   func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "gemini.model", typ: kString, env: "SCRIBA_GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "storage.data_dir", typ: kString, env: "SCRIBA_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "SCRIBA_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
