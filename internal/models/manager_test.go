package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-sage/sage/internal/config"
)

func testManager(cfg *config.Config, ollamaUp bool) *Manager {
	m := NewManager(cfg)
	m.pingOllama = func(string) bool { return ollamaUp }
	return m
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("google", "gemini-1.5-flash"))
	assert.Error(t, Validate("google", "made-up-model"))
	assert.Error(t, Validate("frontier", "anything"))

	// Local servers may run any pulled model.
	assert.NoError(t, Validate("ollama", "my-custom-finetune"))
}

func TestLookupAndProviders(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "google", "ollama", "openai"}, Providers())

	cap, ok := Lookup("anthropic")
	require.True(t, ok)
	assert.False(t, cap.NativeEmbeddings)
	assert.Equal(t, "openai", cap.EmbeddingFallback)

	_, ok = Lookup("frontier")
	assert.False(t, ok)
}

func TestCurrentUsesConfiguredChatPair(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "google"
	cfg.Model = "gemini-1.5-flash"

	m := testManager(cfg, false)

	p, model := m.Current()
	assert.Equal(t, "google", p)
	assert.Equal(t, "gemini-1.5-flash", model)

	cfg.ChatProvider = "openai"
	cfg.ChatModel = "gpt-4o"
	p, model = m.Current()
	assert.Equal(t, "openai", p)
	assert.Equal(t, "gpt-4o", model)
}

func TestSwitchModel(t *testing.T) {
	cfg := config.Default("/p")
	cfg.GoogleAPIKey = "g-key"
	cfg.OpenAIAPIKey = "oa-key"

	m := testManager(cfg, false)

	require.NoError(t, m.SwitchModel("openai", "gpt-4o"))

	p, model := m.Current()
	assert.Equal(t, "openai", p)
	assert.Equal(t, "gpt-4o", model)

	client, err := m.Client()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", client.ModelName())
}

func TestSwitchModelDefaultsToRecommended(t *testing.T) {
	cfg := config.Default("/p")
	cfg.AnthropicAPIKey = "ant-key"

	m := testManager(cfg, false)

	require.NoError(t, m.SwitchModel("anthropic", ""))

	p, model := m.Current()
	assert.Equal(t, "anthropic", p)
	assert.Equal(t, "claude-sonnet-4-5", model)
}

func TestSwitchModelFailuresLeaveStateUntouched(t *testing.T) {
	cfg := config.Default("/p")
	cfg.GoogleAPIKey = "g-key"

	m := testManager(cfg, false)

	before, err := m.Client()
	require.NoError(t, err)

	// Unknown provider.
	err = m.SwitchModel("frontier", "x")
	assert.ErrorContains(t, err, "unknown provider")

	// Unknown model.
	err = m.SwitchModel("google", "made-up")
	assert.ErrorContains(t, err, "unknown model")

	// Missing credential.
	err = m.SwitchModel("openai", "gpt-4o")
	assert.ErrorContains(t, err, "no API key")

	// Unreachable local server.
	err = m.SwitchModel("ollama", "llama3.1")
	assert.ErrorContains(t, err, "not reachable")

	// The active selection and cached client survive every failure.
	p, model := m.Current()
	assert.Equal(t, "google", p)
	assert.Equal(t, config.DefaultModel, model)

	after, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestSwitchModelOllama(t *testing.T) {
	cfg := config.Default("/p")

	m := testManager(cfg, true)
	require.NoError(t, m.SwitchModel("ollama", "llama3.1"))

	p, model := m.Current()
	assert.Equal(t, "ollama", p)
	assert.Equal(t, "llama3.1", model)
}

func TestClientCaching(t *testing.T) {
	cfg := config.Default("/p")
	cfg.GoogleAPIKey = "g-key"

	m := testManager(cfg, false)

	a, err := m.Client()
	require.NoError(t, err)
	b, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRecommend(t *testing.T) {
	t.Run("resolves from the only usable provider", func(t *testing.T) {
		cfg := config.Default("/p")
		cfg.GoogleAPIKey = "g-key"

		m := testManager(cfg, false)
		recs := m.Recommend()

		assert.Equal(t, ModelRef{Provider: "google", Model: "gemini-1.5-flash"}, recs["speed"])
		assert.Equal(t, ModelRef{Provider: "google", Model: "gemini-1.5-pro"}, recs["quality"])

		// Privacy needs a local runtime.
		_, ok := recs["privacy"]
		assert.False(t, ok)
	})

	t.Run("prefers the strongest usable provider per use case", func(t *testing.T) {
		cfg := config.Default("/p")
		cfg.GoogleAPIKey = "g-key"
		cfg.AnthropicAPIKey = "ant-key"

		m := testManager(cfg, true)
		recs := m.Recommend()

		assert.Equal(t, ModelRef{Provider: "google", Model: "gemini-1.5-flash"}, recs["speed"])
		assert.Equal(t, ModelRef{Provider: "anthropic", Model: "claude-opus-4-1"}, recs["quality"])
		assert.Equal(t, ModelRef{Provider: "ollama", Model: "llama3.1"}, recs["privacy"])
	})

	t.Run("empty when nothing is usable", func(t *testing.T) {
		m := testManager(config.Default("/p"), false)
		assert.Empty(t, m.Recommend())
	})

	t.Run("every candidate passes catalog validation", func(t *testing.T) {
		for _, useCase := range UseCases() {
			for _, ref := range useCasePreferences[useCase] {
				assert.NoError(t, Validate(ref.Provider, ref.Model))
			}
		}
	})
}

func TestConfiguredProviders(t *testing.T) {
	cfg := config.Default("/p")
	cfg.GoogleAPIKey = "g-key"

	m := testManager(cfg, false)

	statuses := m.ConfiguredProviders()
	byName := make(map[string]ProviderStatus)
	for _, s := range statuses {
		byName[s.Name] = s
	}

	assert.True(t, byName["google"].Available)
	assert.False(t, byName["anthropic"].Available)
	assert.False(t, byName["openai"].Available)
	assert.False(t, byName["ollama"].Available)
	assert.Contains(t, byName["ollama"].Reason, "not reachable")
}
