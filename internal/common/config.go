package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// InsecureDefaultAPIKey is the fallback application key used when none is configured.
// Startup warns while it is in effect.
const InsecureDefaultAPIKey = "analyst-insecure-default-key"

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Auth        AuthConfig      `toml:"auth"`
	CORS        CORSConfig      `toml:"cors"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
	Cache       CacheConfig     `toml:"cache"`
	LLM         LLMConfig       `toml:"llm"`
	Groq        GroqConfig      `toml:"groq"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	EODHD       EODHDConfig     `toml:"eodhd"`
	Search      SearchConfig    `toml:"search"`
	PDF         PDFConfig       `toml:"pdf"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port      int    `toml:"port"`
	Host      string `toml:"host"`
	StaticDir string `toml:"static_dir"` // Front-end bundle served at "/"
}

// AuthConfig controls the x-api-key check on the analysis route
type AuthConfig struct {
	APIKey     string `toml:"api_key"`
	RequireKey bool   `toml:"require_key"` // false accepts requests that omit the header entirely
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"` // "*" allows any origin
}

// RateLimitConfig holds per-client request budgets for each API route
type RateLimitConfig struct {
	AnalyzePerWindow  int    `toml:"analyze_per_minute"`
	PDFPerWindow      int    `toml:"pdf_per_minute"`
	Window            string `toml:"window"` // Duration string (default: "1m")
	TrustForwardedFor bool   `toml:"trust_forwarded_for"`
}

type CacheConfig struct {
	MaxReports int `toml:"max_reports"` // Cache is flushed once this count is exceeded
}

// LLMConfig contains provider-agnostic agent settings
type LLMConfig struct {
	DefaultModel string `toml:"default_model"`
	MaxTurns     int    `toml:"max_turns"` // Upper bound on model round trips per report
	Timeout      string `toml:"timeout"`   // Empty means no timeout beyond the request context
}

// GroqConfig contains settings for the OpenAI-compatible chat endpoint
type GroqConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini configuration used for grounded web search
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type EODHDConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // Requests per second
}

// SearchConfig selects the web search backend
type SearchConfig struct {
	Provider   string `toml:"provider"` // "duckduckgo" or "gemini"
	MaxResults int    `toml:"max_results"`
	BaseURL    string `toml:"base_url"` // DuckDuckGo HTML endpoint
}

type PDFConfig struct {
	Mode     string `toml:"mode"`      // "memo" (line based) or "markdown" (goldmark)
	PageSize string `toml:"page_size"` // "Letter" or "A4"
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:      8000,
			Host:      "localhost",
			StaticDir: "./frontend",
		},
		Auth: AuthConfig{
			APIKey:     InsecureDefaultAPIKey,
			RequireKey: true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://localhost:8000",
				"http://127.0.0.1:8000",
			},
		},
		RateLimit: RateLimitConfig{
			AnalyzePerWindow: 5,
			PDFPerWindow:     10,
			Window:           "1m",
		},
		Cache: CacheConfig{
			MaxReports: 100,
		},
		LLM: LLMConfig{
			DefaultModel: "llama-3.3-70b-versatile",
			MaxTurns:     8,
		},
		Groq: GroqConfig{
			BaseURL: "https://api.groq.com/openai/v1",
		},
		Claude: ClaudeConfig{
			MaxTokens:   8192,
			Temperature: 0.2,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		EODHD: EODHDConfig{
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
		},
		Search: SearchConfig{
			Provider:   "duckduckgo",
			MaxResults: 5,
			BaseURL:    "https://html.duckduckgo.com/html/",
		},
		PDF: PDFConfig{
			Mode:     "memo",
			PageSize: "Letter",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ANALYST_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("ANALYST_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ANALYST_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if dir := os.Getenv("ANALYST_STATIC_DIR"); dir != "" {
		config.Server.StaticDir = dir
	}

	// Auth and CORS keep the variable names the front end deployment already uses
	if key := os.Getenv("APP_API_KEY"); key != "" {
		config.Auth.APIKey = key
	}
	if require := os.Getenv("ANALYST_REQUIRE_API_KEY"); require != "" {
		if b, err := strconv.ParseBool(require); err == nil {
			config.Auth.RequireKey = b
		}
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		if list := splitList(origins); len(list) > 0 {
			config.CORS.AllowedOrigins = list
		}
	}

	// Provider keys
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		config.Groq.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}

	if model := os.Getenv("ANALYST_DEFAULT_MODEL"); model != "" {
		config.LLM.DefaultModel = model
	}
	if provider := os.Getenv("ANALYST_SEARCH_PROVIDER"); provider != "" {
		config.Search.Provider = provider
	}
	if mode := os.Getenv("ANALYST_PDF_MODE"); mode != "" {
		config.PDF.Mode = mode
	}

	// Logging configuration
	if level := os.Getenv("ANALYST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ANALYST_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate reports configuration problems. Fatal problems are returned as errors;
// the insecure default API key is reported as a warning string.
func (c *Config) Validate() (warnings []string, err error) {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Cache.MaxReports <= 0 {
		return nil, fmt.Errorf("cache.max_reports must be positive, got %d", c.Cache.MaxReports)
	}
	if c.RateLimit.AnalyzePerWindow <= 0 || c.RateLimit.PDFPerWindow <= 0 {
		return nil, fmt.Errorf("rate_limit budgets must be positive")
	}
	if _, err := c.RateLimitWindow(); err != nil {
		return nil, err
	}
	if _, err := c.LLMTimeout(); err != nil {
		return nil, err
	}

	switch strings.ToLower(c.Search.Provider) {
	case "duckduckgo", "gemini":
	default:
		return nil, fmt.Errorf("search.provider must be 'duckduckgo' or 'gemini', got %q", c.Search.Provider)
	}
	switch strings.ToLower(c.PDF.Mode) {
	case "memo", "markdown":
	default:
		return nil, fmt.Errorf("pdf.mode must be 'memo' or 'markdown', got %q", c.PDF.Mode)
	}

	if c.Auth.APIKey == "" || c.Auth.APIKey == InsecureDefaultAPIKey {
		if c.IsProduction() {
			return nil, fmt.Errorf("auth.api_key must be set when environment is %q", c.Environment)
		}
		warnings = append(warnings, "auth.api_key is not set; the insecure default key is in use (set APP_API_KEY)")
	}
	if !c.Auth.RequireKey {
		warnings = append(warnings, "auth.require_key is false; requests without x-api-key are accepted")
	}
	if c.Groq.APIKey == "" && c.Claude.APIKey == "" {
		warnings = append(warnings, "no LLM provider key configured (GROQ_API_KEY or ANTHROPIC_API_KEY); analysis requests will fail")
	}
	if c.EODHD.APIKey == "" {
		warnings = append(warnings, "EODHD_API_KEY not set; the financial data tool will report data as unavailable")
	}
	return warnings, nil
}

// RateLimitWindow parses the rate limit window duration
func (c *Config) RateLimitWindow() (time.Duration, error) {
	if c.RateLimit.Window == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(c.RateLimit.Window)
	if err != nil {
		return 0, fmt.Errorf("invalid rate_limit.window '%s': %w", c.RateLimit.Window, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("rate_limit.window must be positive, got %s", d)
	}
	return d, nil
}

// LLMTimeout parses the optional agent timeout. Zero means no timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid llm.timeout '%s': %w", c.LLM.Timeout, err)
	}
	return d, nil
}

// IsProduction reports whether the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
