package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Seoul"
	configPathEnv   = "NEWSDIGEST_CONFIG"
	kubernetesEnv   = "KUBERNETES_SERVICE_HOST"

	dbDriverEnv       = "DB_DRIVER"
	dbHostEnv         = "DB_HOST"
	dbPortEnv         = "DB_PORT"
	dbUserEnv         = "DB_USER"
	dbPasswordEnv     = "DB_PASSWORD"
	dbNameEnv         = "DB_NAME"
	databaseDSNEnv    = "DATABASE_DSN"
	googleAPIKeyEnv   = "GOOGLE_API_KEY"
	llmProviderEnv    = "LLM_PROVIDER"
	llmModelEnv       = "LLM_MODEL"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	pushgatewayEnv    = "PUSHGATEWAY_URL"
)

// Supported store drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported model providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	LLM           LLMConfig          `yaml:"llm"`
	Loader        LoaderConfig       `yaml:"loader"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the relational store. DSN, when set, wins over
// the discrete fields. Port 0 means the driver's usual port; for sqlite Name
// is the database file path.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	DSN      string `yaml:"dsn"`
}

// LLMConfig defines how to contact the generative model.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseUrl"`
	Timeout  time.Duration `yaml:"timeout"`
	Prompt   string        `yaml:"prompt"`
}

// LoaderConfig points the raw loader at its export.
type LoaderConfig struct {
	Source string `yaml:"source"`
}

// SummarizerConfig controls the per-cluster pipeline.
type SummarizerConfig struct {
	Input     string        `yaml:"input"`
	Output    string        `yaml:"output"`
	Delay     time.Duration `yaml:"delay"`
	StripHTML *bool         `yaml:"stripHtml"`
}

// HTMLStripping reports whether markup should be reduced to text. Off
// unless stripHtml is set.
func (s SummarizerConfig) HTMLStripping() bool {
	return s.StripHTML != nil && *s.StripHTML
}

// SchedulerConfig defines when repeated runs fire.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	BaseURL  string `yaml:"baseUrl"`
}

// Enabled is true when both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig points at an optional Prometheus pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env and YAML configuration (if present) and applies
// environment overrides. path overrides NEWSDIGEST_CONFIG when non-empty.
func Load(path string) Config {
	loadDotEnv()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// loadDotEnv mirrors local development: inside a cluster the environment is
// already injected and a stray .env must not shadow it.
func loadDotEnv() {
	if os.Getenv(kubernetesEnv) != "" {
		return
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}
}

// Validate checks settings every command depends on.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" && c.Database.Name == "" {
		return fmt.Errorf("config: database name is required")
	}
	return nil
}

// ValidateSummarizer checks settings the summarizer cannot start without.
func (c Config) ValidateSummarizer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unsupported llm provider %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		keyEnv := googleAPIKeyEnv
		if c.LLM.Provider == ProviderOpenAI {
			keyEnv = openAIAPIKeyEnv
		}
		return fmt.Errorf("config: llm api key is required (set %s)", keyEnv)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config: llm model is required")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbDriverEnv); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(dbHostEnv); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv(dbPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		} else {
			log.Printf("config: ignoring invalid %s=%q", dbPortEnv, v)
		}
	}
	if v := os.Getenv(dbUserEnv); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv(dbPasswordEnv); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(dbNameEnv); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	key := googleAPIKeyEnv
	if c.LLM.Provider == ProviderOpenAI {
		key = openAIAPIKeyEnv
	}
	if v := os.Getenv(key); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(pushgatewayEnv); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = strings.ToLower(override.Database.Driver)
	}
	if override.Database.Host != "" {
		base.Database.Host = override.Database.Host
	}
	if override.Database.Port != 0 {
		base.Database.Port = override.Database.Port
	}
	if override.Database.User != "" {
		base.Database.User = override.Database.User
	}
	if override.Database.Password != "" {
		base.Database.Password = override.Database.Password
	}
	if override.Database.Name != "" {
		base.Database.Name = override.Database.Name
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = strings.ToLower(override.LLM.Provider)
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.Timeout != 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.LLM.Prompt != "" {
		base.LLM.Prompt = override.LLM.Prompt
	}

	if override.Loader.Source != "" {
		base.Loader.Source = override.Loader.Source
	}

	if override.Summarizer.Input != "" {
		base.Summarizer.Input = override.Summarizer.Input
	}
	if override.Summarizer.Output != "" {
		base.Summarizer.Output = override.Summarizer.Output
	}
	if override.Summarizer.Delay != 0 {
		base.Summarizer.Delay = override.Summarizer.Delay
	}
	if override.Summarizer.StripHTML != nil {
		base.Summarizer.StripHTML = override.Summarizer.StripHTML
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.BaseURL != "" {
		base.Notifications.Telegram.BaseURL = override.Notifications.Telegram.BaseURL
	}

	if override.Metrics.PushgatewayURL != "" {
		base.Metrics.PushgatewayURL = override.Metrics.PushgatewayURL
	}
	if override.Metrics.Job != "" {
		base.Metrics.Job = override.Metrics.Job
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverMySQL,
			Host:   "localhost",
			User:   "nsuser",
			Name:   "news_db",
		},
		LLM: LLMConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.0-flash",
		},
		Loader: LoaderConfig{Source: "/app/data/news_preproc.xlsx"},
		Summarizer: SummarizerConfig{
			Input:  "/app/data/news_preproc.xlsx",
			Output: "/app/data/news_summary.xlsx",
			Delay:  3 * time.Second,
		},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone},
		Metrics:   MetricsConfig{Job: "newsdigest"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
