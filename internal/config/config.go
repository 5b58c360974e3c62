// Package config loads the application configuration from an optional
// YAML file with environment variable overrides for secrets and
// deploy-specific settings.
package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig contains connection details for Redis. An empty Addr
// selects the in-memory session store and vector index instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EmbeddingConfig configures the OpenAI embedding service.
type EmbeddingConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

// GenerationConfig configures the Groq generation service.
type GenerationConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

// GitHubConfig configures the commit history source.
type GitHubConfig struct {
	Username string `yaml:"username"`
	TokenEnv string `yaml:"token_env"`
	BaseURL  string `yaml:"base_url"`
}

// PipelineConfig holds the retrieval and prompt tuning knobs.
type PipelineConfig struct {
	MaxHistoryRecords int    `yaml:"max_history_records"`
	RetrievalK        int    `yaml:"retrieval_k"`
	MaxContextSize    int    `yaml:"max_context_size"`
	PersonaName       string `yaml:"persona_name"`
	YearsAhead        int    `yaml:"years_ahead"`
}

// AdminConfig guards the administrative endpoints. An empty secret env
// disables them.
type AdminConfig struct {
	JWTSecretEnv string `yaml:"jwt_secret_env"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	GitHub     GitHubConfig     `yaml:"github"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Admin      AdminConfig      `yaml:"admin"`
}

// Load reads a config from the given path. A missing file returns
// defaults, so a fully env-driven deployment needs no file at all.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// EmbeddingAPIKey resolves the embedding provider's API key from the
// configured environment variable.
func (c *AppConfig) EmbeddingAPIKey() string {
	return os.Getenv(c.Embedding.APIKeyEnv)
}

// GenerationAPIKey resolves the generation provider's API key.
func (c *AppConfig) GenerationAPIKey() string {
	return os.Getenv(c.Generation.APIKeyEnv)
}

// GitHubToken resolves the optional GitHub token.
func (c *AppConfig) GitHubToken() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

// AdminJWTSecret resolves the admin endpoint signing secret. Empty
// means the admin surface is disabled.
func (c *AppConfig) AdminJWTSecret() string {
	return os.Getenv(c.Admin.JWTSecretEnv)
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Addr: ":8080"},
		Embedding: EmbeddingConfig{
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "text-embedding-3-small",
		},
		Generation: GenerationConfig{
			APIKeyEnv: "GROQ_API_KEY",
			Model:     "llama-3.3-70b-versatile",
		},
		GitHub: GitHubConfig{TokenEnv: "GITHUB_TOKEN"},
		Pipeline: PipelineConfig{
			MaxHistoryRecords: 100,
			RetrievalK:        8,
			MaxContextSize:    12000,
			PersonaName:       "me",
			YearsAhead:        1,
		},
		Admin: AdminConfig{JWTSecretEnv: "ADMIN_JWT_SECRET"},
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama-3.3-70b-versatile"
	}
	if cfg.GitHub.TokenEnv == "" {
		cfg.GitHub.TokenEnv = "GITHUB_TOKEN"
	}
	if cfg.Admin.JWTSecretEnv == "" {
		cfg.Admin.JWTSecretEnv = "ADMIN_JWT_SECRET"
	}
	if cfg.Pipeline.MaxHistoryRecords == 0 {
		cfg.Pipeline.MaxHistoryRecords = 100
	}
	if cfg.Pipeline.RetrievalK == 0 {
		cfg.Pipeline.RetrievalK = 8
	}
	if cfg.Pipeline.MaxContextSize == 0 {
		cfg.Pipeline.MaxContextSize = 12000
	}
	if cfg.Pipeline.PersonaName == "" {
		cfg.Pipeline.PersonaName = "me"
	}
	if cfg.Pipeline.YearsAhead == 0 {
		cfg.Pipeline.YearsAhead = 1
	}
}

// applyEnvOverrides lets deployments override the file without
// editing it. Only settings that vary per environment are exposed.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GITHUB_USERNAME"); v != "" {
		cfg.GitHub.Username = v
	}
	if v := os.Getenv("MAX_HISTORY_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.MaxHistoryRecords = n
		}
	}
	if v := os.Getenv("RETRIEVAL_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.RetrievalK = n
		}
	}
	if v := os.Getenv("MAX_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.MaxContextSize = n
		}
	}
	if v := os.Getenv("PERSONA_NAME"); v != "" {
		cfg.Pipeline.PersonaName = v
	}
	if v := os.Getenv("YEARS_AHEAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.YearsAhead = n
		}
	}
}
