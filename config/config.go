// Package config loads service settings from an optional YAML file and the
// environment.
//
// Every key can be set through a TALENTSCOUT_ prefixed variable with dots
// and dashes replaced by underscores, e.g. TALENTSCOUT_AI_API_KEY. The
// credential names used by the hosted deployment (X_BEARER_TOKEN,
// TWITTERAPI_API_KEY, OPENROUTER_API_KEY, OPENALEX_BASE, EMBED_DIM,
// CORS_ORIGINS) are honoured as well.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/connectors/xapi"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "TALENTSCOUT"

// Config is the full service configuration.
type Config struct {
	Database    string        `mapstructure:"database"`
	Listen      string        `mapstructure:"listen"`
	CORSOrigins []string      `mapstructure:"cors-origins"`
	PoolSize    int           `mapstructure:"pool-size"`
	StreamIdle  time.Duration `mapstructure:"stream-idle"`
	OpenAlex    OpenAlex      `mapstructure:"openalex"`
	X           X             `mapstructure:"x"`
	AI          AI            `mapstructure:"ai"`
}

// OpenAlex configures the scholarly source.
type OpenAlex struct {
	BaseURL string `mapstructure:"base-url"`
}

// X configures the social post source.
type X struct {
	BearerToken       string `mapstructure:"bearer-token"`
	APIKey            string `mapstructure:"api-key"`
	OfficialBaseURL   string `mapstructure:"official-base-url"`
	TwitterAPIBaseURL string `mapstructure:"twitterapi-base-url"`
}

// AI configures chat, topic extraction and embeddings.
type AI struct {
	ChatHost         string  `mapstructure:"chat-host"`
	ChatModel        string  `mapstructure:"chat-model"`
	APIKey           string  `mapstructure:"api-key"`
	EmbeddingBackend string  `mapstructure:"embedding-backend"`
	EmbeddingHost    string  `mapstructure:"embedding-host"`
	EmbeddingModel   string  `mapstructure:"embedding-model"`
	EmbedDim         int     `mapstructure:"embed-dim"`
	Temperature      float64 `mapstructure:"temperature"`
}

var aliases = map[string]string{
	"cors-origins":      "CORS_ORIGINS",
	"openalex.base-url": "OPENALEX_BASE",
	"x.bearer-token":    "X_BEARER_TOKEN",
	"x.api-key":         "TWITTERAPI_API_KEY",
	"ai.api-key":        "OPENROUTER_API_KEY",
	"ai.chat-model":     "OPENROUTER_MODEL",
	"ai.embed-dim":      "EMBED_DIM",
}

func setDefaults(v *viper.Viper) {
	aiDefaults := ai.DefaultConfig()
	v.SetDefault("database", "talentscout.db")
	v.SetDefault("listen", ":8000")
	v.SetDefault("cors-origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("pool-size", 8)
	v.SetDefault("stream-idle", 60*time.Second)
	v.SetDefault("openalex.base-url", "https://api.openalex.org")
	v.SetDefault("x.bearer-token", "")
	v.SetDefault("x.api-key", "")
	v.SetDefault("x.official-base-url", xapi.DefaultOfficialBaseURL)
	v.SetDefault("x.twitterapi-base-url", xapi.DefaultTwitterAPIBaseURL)
	v.SetDefault("ai.chat-host", aiDefaults.ChatHost)
	v.SetDefault("ai.chat-model", aiDefaults.ChatModel)
	v.SetDefault("ai.api-key", "")
	v.SetDefault("ai.embedding-backend", string(aiDefaults.EmbeddingBackend))
	v.SetDefault("ai.embedding-host", aiDefaults.EmbeddingHost)
	v.SetDefault("ai.embedding-model", aiDefaults.EmbeddingModel)
	v.SetDefault("ai.embed-dim", aiDefaults.EmbedDim)
	v.SetDefault("ai.temperature", aiDefaults.Temperature)
}

// Load reads configuration. With an empty path, talentscout.yaml in the
// working directory is used when present; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, alias := range aliases {
		envKey := EnvPrefix + "_" + strings.NewReplacer(".", "_", "-", "_").Replace(strings.ToUpper(key))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return nil, fmt.Errorf("binding %s: %w", alias, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("talentscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("config: database path is required")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("config: pool-size must be positive, got %d", c.PoolSize)
	}
	if c.StreamIdle <= 0 {
		return fmt.Errorf("config: stream-idle must be positive, got %s", c.StreamIdle)
	}
	return c.AIConfig().Validate()
}

// AIConfig converts the AI section for ai.Config consumers.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithEmbeddingBackend(ai.EmbeddingBackend(c.AI.EmbeddingBackend)),
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbedDim(c.AI.EmbedDim),
		ai.WithTemperature(c.AI.Temperature),
	)
}

// XConfig converts the X section for the xapi client.
func (c *Config) XConfig() xapi.Config {
	return xapi.Config{
		BearerToken:       c.X.BearerToken,
		APIKey:            c.X.APIKey,
		OfficialBaseURL:   c.X.OfficialBaseURL,
		TwitterAPIBaseURL: c.X.TwitterAPIBaseURL,
	}
}
