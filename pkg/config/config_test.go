package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the test away from the developer's environment and config files.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-5.1", cfg.LLM.Model)
	assert.Equal(t, []string{"gpt-5.1", "o4-mini", "gpt-4o", "o1-mini"}, cfg.LLM.Models)
	assert.Equal(t, 25, cfg.Agent.MaxIterations)
	assert.True(t, cfg.Agent.PageGrounding)
	assert.Equal(t, 1280, cfg.Browser.Width)
	assert.Equal(t, 900, cfg.Browser.Height)
	assert.Equal(t, 25000, cfg.Browser.MaxTextLength)
	assert.Equal(t, filepath.Join("user_data", "state.json"), cfg.Browser.StateFile)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
llm:
  model: gpt-4o
  models: [gpt-4o, o1-mini]
browser:
  headless: true
  blocklist:
    - "*.bank.example"
agent:
  max_iterations: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("WEBPILOT_AGENT_MAX_ITERATIONS", "7")
	t.Setenv("OPENAI_API_KEY", "sk-from-openai-env")
	t.Setenv("WEBPILOT_METRICS_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"*.bank.example"}, cfg.Browser.Blocklist)
	assert.Equal(t, 7, cfg.Agent.MaxIterations, "environment overrides the file")
	assert.Equal(t, "sk-from-openai-env", cfg.LLM.APIKey)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, 900, cfg.Browser.Height, "unset keys keep defaults")

	t.Setenv("WEBPILOT_LLM_API_KEY", "sk-webpilot")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-webpilot", cfg.LLM.APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty model", mutate: func(c *Config) { c.LLM.Model = " " }, errMsg: "llm.model"},
		{name: "zero iterations", mutate: func(c *Config) { c.Agent.MaxIterations = 0 }, errMsg: "max_iterations"},
		{name: "bad window", mutate: func(c *Config) { c.Browser.Width = 0 }, errMsg: "window size"},
		{name: "bad text bound", mutate: func(c *Config) { c.Browser.MaxTextLength = -1 }, errMsg: "max_text_length"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, errMsg: "logging.level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestModelChoices(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = "gpt-4o"
	assert.Equal(t, []string{"gpt-4o", "gpt-5.1", "o4-mini", "o1-mini"}, cfg.ModelChoices())
}

func TestWriteFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "conf", DefaultFileName)
	cfg := Default()
	cfg.LLM.APIKey = "sk-secret"
	cfg.Agent.MaxIterations = 12

	require.NoError(t, WriteFile(path, cfg, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Contains(t, string(data), "max_iterations: 12")

	assert.Error(t, WriteFile(path, cfg, false), "existing file is kept")
	assert.NoError(t, WriteFile(path, cfg, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Agent.MaxIterations)
	assert.Empty(t, loaded.LLM.APIKey)
}

func TestBrowserSlowMo(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, Default().Browser.SlowMo())
	assert.Equal(t, time.Duration(0), BrowserConfig{}.SlowMo())
}
