package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	// no .env lookup in the package dir
	t.Setenv(kubernetesEnv, "test")
	for _, key := range []string{
		configPathEnv, dbDriverEnv, dbHostEnv, dbPortEnv, dbUserEnv, dbPasswordEnv,
		dbNameEnv, databaseDSNEnv, googleAPIKeyEnv, openAIAPIKeyEnv, llmProviderEnv,
		llmModelEnv, logLevelEnv, logFormatEnv, telegramTokenEnv, telegramChatIDEnv,
		pushgatewayEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load("")

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Zero(t, cfg.Database.Port)
	assert.Equal(t, "nsuser", cfg.Database.User)
	assert.Equal(t, "news_db", cfg.Database.Name)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "/app/data/news_preproc.xlsx", cfg.Loader.Source)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "/app/data/news_preproc.xlsx", cfg.Summarizer.Input)
	assert.Equal(t, "/app/data/news_summary.xlsx", cfg.Summarizer.Output)
	assert.Equal(t, 3*time.Second, cfg.Summarizer.Delay)
	assert.False(t, cfg.Summarizer.HTMLStripping())
	assert.Zero(t, cfg.LLM.Timeout)
	assert.NotNil(t, cfg.Scheduler.Location())
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  name: /tmp/news.db
llm:
  model: gemini-2.5-flash
  timeout: 45s
summarizer:
  delay: 500ms
  stripHtml: true
logging:
  level: debug
`), 0o600))

	t.Setenv(googleAPIKeyEnv, "secret")
	t.Setenv(llmModelEnv, "gemini-env")
	t.Setenv(dbPortEnv, "not-a-port")

	cfg := Load(path)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/news.db", cfg.Database.Name)
	assert.Zero(t, cfg.Database.Port)
	assert.Equal(t, "gemini-env", cfg.LLM.Model)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Summarizer.Delay)
	assert.True(t, cfg.Summarizer.HTMLStripping())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	isolate(t)

	cfg := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(kubernetesEnv, "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DB_HOST=from-dotenv\nDB_NAME=news\n"), 0o600))
	t.Chdir(dir)
	t.Setenv(dbHostEnv, "from-env")
	// DB_NAME is set to "" by isolate; godotenv only fills unset keys
	require.NoError(t, os.Unsetenv(dbNameEnv))
	t.Cleanup(func() { _ = os.Unsetenv(dbNameEnv) })

	cfg := Load("")

	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, "news", cfg.Database.Name)
}

func TestValidateSummarizer(t *testing.T) {
	isolate(t)

	cfg := Load("")
	cfg.Database.Name = "news"
	require.NoError(t, cfg.Validate())

	err := cfg.ValidateSummarizer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), googleAPIKeyEnv)

	cfg.LLM.APIKey = "k"
	assert.NoError(t, cfg.ValidateSummarizer())

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}
