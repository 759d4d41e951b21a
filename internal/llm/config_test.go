package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	for _, k := range []string{
		"ANIQUIZ_LLM_PROVIDER", "ANIQUIZ_ANTHROPIC_API_KEY", "ANIQUIZ_OPENAI_API_KEY",
		"ANIQUIZ_GEMINI_API_KEY", "ANIQUIZ_OPENROUTER_API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANIQUIZ_LLM_PROVIDER", "openai")
	t.Setenv("ANIQUIZ_OPENAI_API_KEY", "sk-test")
	t.Setenv("ANIQUIZ_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "5s", cfg.Timeout.String())
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANIQUIZ_ANTHROPIC_API_KEY")

	cfg.Provider = ProviderMock
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "llama"
	assert.Error(t, cfg.Validate())
}

func TestDiscoverConfig(t *testing.T) {
	clearLLMEnv(t)
	_, ok := DiscoverConfig()
	assert.False(t, ok)

	t.Setenv("GEMINI_API_KEY", "g")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g", cfg.Gemini.APIKey)

	t.Setenv("ANTHROPIC_API_KEY", "a")
	cfg, _ = DiscoverConfig()
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
}
