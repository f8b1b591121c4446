package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteward/noteward/internal/adapters/driven/storage/memory"
	"github.com/noteward/noteward/internal/core/domain"
)

func TestSettings_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.NotesDir, settings.NotesDir)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Embedding.RequestsPerSecond, settings.Embedding.RequestsPerSecond)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
	assert.Equal(t, defaults.Digest.Hour, settings.Digest.Hour)
}

func TestSettings_Overrides(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("notes.dir", "/srv/notes"))
	require.NoError(t, store.Set("embedding.model", "all-minilm"))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("embedding.timeout", "45s"))
	require.NoError(t, store.Set("retrieval.top_k", 9))
	require.NoError(t, store.Set("digest.enabled", true))
	require.NoError(t, store.Set("digest.hour", 7))

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, "/srv/notes", settings.NotesDir)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	assert.Equal(t, 2.5, settings.Embedding.RequestsPerSecond)
	assert.Equal(t, 45*time.Second, settings.Embedding.Timeout)
	assert.Equal(t, 9, settings.Retrieval.TopK)
	assert.True(t, settings.Digest.Enabled)
	assert.Equal(t, 7, settings.Digest.Hour)
}

func TestSettings_InvalidDigestHour(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("digest.hour", 24))

	_, err := NewSettingsService(store).Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	settings, err := svc.Get()
	require.NoError(t, err)
	settings.NotesDir = "/home/me/notes"
	settings.Retrieval.TopK = 3
	settings.LLM.Timeout = 90 * time.Second

	require.NoError(t, svc.Save(settings))

	reloaded, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/home/me/notes", reloaded.NotesDir)
	assert.Equal(t, 3, reloaded.Retrieval.TopK)
	assert.Equal(t, 90*time.Second, reloaded.LLM.Timeout)
}
