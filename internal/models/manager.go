package models

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/project-sage/sage/internal/config"
	"github.com/project-sage/sage/internal/llm"
)

// ProviderStatus reports whether a provider is usable right now.
type ProviderStatus struct {
	Name      string
	Available bool
	Reason    string
}

// Manager resolves the active chat provider/model and hands out clients.
// Switching models at runtime only affects answer synthesis; the embedding
// backend stays pinned to the indexing provider, so no re-indexing is needed.
type Manager struct {
	cfg *config.Config

	mu               sync.Mutex
	overrideProvider string
	overrideModel    string
	clients          map[string]llm.Client

	// pingOllama is swappable for tests.
	pingOllama func(baseURL string) bool
}

// NewManager creates a manager for the given configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:        cfg,
		clients:    make(map[string]llm.Client),
		pingOllama: ollamaReachable,
	}
}

// Current returns the active provider and model. A runtime switch takes
// precedence over the configured chat pair.
func (m *Manager) Current() (provider, model string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overrideProvider != "" {
		return m.overrideProvider, m.overrideModel
	}
	return m.cfg.ChatProviderModel()
}

// Client returns a chat client for the active provider and model, creating
// and caching it on first use.
func (m *Manager) Client() (llm.Client, error) {
	provider, model := m.Current()

	m.mu.Lock()
	defer m.mu.Unlock()

	key := provider + ":" + model
	if client, ok := m.clients[key]; ok {
		return client, nil
	}

	client, err := llm.New(provider, model, m.cfg)
	if err != nil {
		return nil, err
	}
	m.clients[key] = client
	return client, nil
}

// SwitchModel changes the active chat provider and model for this session.
// All checks run before any state changes, so a failed switch leaves the
// previous selection and cached clients untouched.
func (m *Manager) SwitchModel(provider, model string) error {
	if model == "" {
		cap, ok := Lookup(provider)
		if !ok {
			return fmt.Errorf("unknown provider: %s (choose from %v)", provider, Providers())
		}
		model = cap.Recommended
	}

	if err := Validate(provider, model); err != nil {
		return err
	}
	if err := m.checkAvailable(provider); err != nil {
		return err
	}

	client, err := llm.New(provider, model, m.cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.overrideProvider = provider
	m.overrideModel = model
	m.clients[provider+":"+model] = client

	log.Debug("Switched chat model", "provider", provider, "model", model)
	return nil
}

// Recommend resolves the best available model for each use case. Use cases
// with no usable provider are absent from the result.
func (m *Manager) Recommend() map[string]ModelRef {
	recs := make(map[string]ModelRef)
	for useCase, candidates := range useCasePreferences {
		for _, ref := range candidates {
			if m.checkAvailable(ref.Provider) == nil {
				recs[useCase] = ref
				break
			}
		}
	}
	return recs
}

// ConfiguredProviders reports the availability of every known provider.
func (m *Manager) ConfiguredProviders() []ProviderStatus {
	var statuses []ProviderStatus
	for _, name := range Providers() {
		status := ProviderStatus{Name: name, Available: true}
		if err := m.checkAvailable(name); err != nil {
			status.Available = false
			status.Reason = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// checkAvailable verifies the provider can actually be used: a credential
// for hosted providers, a reachable server for ollama.
func (m *Manager) checkAvailable(provider string) error {
	cap, ok := Lookup(provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s", provider)
	}

	if cap.RequiresAPIKey && m.cfg.KeyFor(provider) == "" {
		return fmt.Errorf("no API key configured for %s", provider)
	}

	if provider == "ollama" {
		url := m.cfg.OllamaURL
		if url == "" {
			url = config.DefaultOllamaURL
		}
		if !m.pingOllama(url) {
			return fmt.Errorf("ollama server not reachable at %s", url)
		}
	}

	return nil
}

// ollamaReachable probes the Ollama server with a short timeout.
func ollamaReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/version")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
