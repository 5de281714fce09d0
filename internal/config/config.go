package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

var ErrAPIKeyRequired = errors.New("OPENROUTER_API_KEY is required")

type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH"`
	TZ     string `env:"TZ" envDefault:"UTC"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"`

	// Language model (OpenRouter speaks the OpenAI chat protocol)
	OpenRouterAPIKey   string        `env:"OPENROUTER_API_KEY"`
	LLMBaseURL         string        `env:"LLM_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	LLMModel           string        `env:"LLM_MODEL" envDefault:"google/gemini-3-flash-preview"`
	LLMMaxTokens       int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"45s"`
	OpenRouterReferrer string        `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string        `env:"OPENROUTER_TITLE" envDefault:"BioLog Health Tracker"`

	// Community signal
	CommunitySubreddits   []string      `env:"COMMUNITY_SUBREDDITS" envSeparator:"," envDefault:"UCSC,santacruz"`
	CommunityUserAgent    string        `env:"COMMUNITY_USER_AGENT" envDefault:"biolog/1.0 (community signal check)"`
	CommunityTimeout      time.Duration `env:"COMMUNITY_TIMEOUT" envDefault:"6s"`
	CommunityRecentWindow time.Duration `env:"COMMUNITY_RECENT_WINDOW" envDefault:"168h"`
	CommunityDemoFallback bool          `env:"COMMUNITY_DEMO_FALLBACK" envDefault:"true"`
	CommunityCacheTTL     time.Duration `env:"COMMUNITY_CACHE_TTL" envDefault:"10m"`
	CommunityWarmKeywords []string      `env:"COMMUNITY_WARM_KEYWORDS" envSeparator:"," envDefault:"heat,fire,air quality"`
	CommunityWarmSchedule string        `env:"COMMUNITY_WARM_SCHEDULE" envDefault:"@every 30m"`

	AssistantHistoryLimit  int  `env:"ASSISTANT_HISTORY_LIMIT" envDefault:"20"`
	AssistantParallelTools bool `env:"ASSISTANT_PARALLEL_TOOLS" envDefault:"true"`

	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`

	AskRateLimit  int           `env:"ASK_RATE_LIMIT" envDefault:"30"`
	AskRateWindow time.Duration `env:"ASK_RATE_WINDOW" envDefault:"1m"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, options); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "biolog.db")
	}
	cfg.CommunitySubreddits = compact(cfg.CommunitySubreddits)
	cfg.CommunityWarmKeywords = compact(cfg.CommunityWarmKeywords)
	cfg.CommunityWarmSchedule = strings.TrimSpace(cfg.CommunityWarmSchedule)
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch {
	case strings.TrimSpace(cfg.Port) == "":
		return errors.New("PORT must not be empty")
	case cfg.LLMMaxTokens <= 0:
		return errors.New("LLM_MAX_TOKENS must be positive")
	case cfg.LLMTimeout <= 0:
		return errors.New("LLM_TIMEOUT must be positive")
	case cfg.CommunityTimeout <= 0:
		return errors.New("COMMUNITY_TIMEOUT must be positive")
	case cfg.CommunityRecentWindow <= 0:
		return errors.New("COMMUNITY_RECENT_WINDOW must be positive")
	case cfg.CommunityCacheTTL < 0:
		return errors.New("COMMUNITY_CACHE_TTL must not be negative")
	case len(cfg.CommunitySubreddits) == 0:
		return errors.New("COMMUNITY_SUBREDDITS must name at least one subreddit")
	case cfg.AssistantHistoryLimit <= 0:
		return errors.New("ASSISTANT_HISTORY_LIMIT must be positive")
	case cfg.AskRateLimit <= 0:
		return errors.New("ASK_RATE_LIMIT must be positive")
	case cfg.AskRateWindow <= 0:
		return errors.New("ASK_RATE_WINDOW must be positive")
	}
	return nil
}

// RequireModel is checked by commands that talk to the language model.
func (cfg Config) RequireModel() error {
	if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
		return ErrAPIKeyRequired
	}
	return nil
}

// Location resolves TZ, falling back to UTC for unknown zone names.
func (cfg Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.TZ))
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
