package services

import (
	"fmt"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
)

// Config keys for settings storage.
const (
	keyNotesDir       = "notes.dir"
	keyDataDir        = "data.dir"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedModel     = "embedding.model"
	keyEmbedDims      = "embedding.dimensions"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyEmbedTimeout   = "embedding.timeout"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMModel       = "llm.model"
	keyLLMTimeout     = "llm.timeout"
	keyRetrievalTopK  = "retrieval.top_k"
	keyRetrievalCandK = "retrieval.candidate_k"
	keyDigestEnabled  = "digest.enabled"
	keyDigestHour     = "digest.hour"
)

// SettingsService reads and writes application settings through the
// config store, filling gaps with defaults.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		NotesDir: s.getString(keyNotesDir, defaults.NotesDir),
		DataDir:  s.configStore.GetString(keyDataDir), // empty means the adapter default
		Embedding: domain.EmbeddingSettings{
			BaseURL:           s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			Dimensions:        s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
			Timeout:           s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout),
		},
		LLM: domain.LLMSettings{
			BaseURL: s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			Model:   s.getString(keyLLMModel, defaults.LLM.Model),
			Timeout: s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:       s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			CandidateK: s.getInt(keyRetrievalCandK, defaults.Retrieval.CandidateK),
		},
		Digest: domain.DigestSettings{
			Enabled: s.getBool(keyDigestEnabled, defaults.Digest.Enabled),
			Hour:    s.getInt(keyDigestHour, defaults.Digest.Hour),
		},
	}

	if settings.Digest.Hour < 0 || settings.Digest.Hour > 23 {
		return nil, fmt.Errorf("digest hour %d out of range: %w",
			settings.Digest.Hour, domain.ErrInvalidInput)
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyNotesDir, settings.NotesDir},
		{keyDataDir, settings.DataDir},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRetrievalCandK, settings.Retrieval.CandidateK},
		{keyDigestEnabled, settings.Digest.Enabled},
		{keyDigestHour, settings.Digest.Hour},
	}

	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetBool(key)
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
