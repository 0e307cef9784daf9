package services

import (
	"fmt"

	"github.com/custodia-labs/ancora/internal/core/domain"
	"github.com/custodia-labs/ancora/internal/core/ports/driven"
	"github.com/custodia-labs/ancora/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize     = "chunking.size"
	keyChunkOverlap  = "chunking.overlap"
	keyChunkDivisor  = "chunking.overlap_word_divisor"
	keyTopK          = "retrieval.top_k"
	keyMinSimilarity = "retrieval.min_similarity"
	keyRRFConstant   = "retrieval.rrf_constant"
	keyMinFusedScore = "retrieval.min_fused_score"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyDataDir       = "storage.data_dir"
	keyVectorBackend = "storage.vector_backend"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing keys fall back to
// defaults, so a fresh config file behaves like DefaultAppSettings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			Size:               s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap:            s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
			OverlapWordDivisor: s.getInt(keyChunkDivisor, defaults.Chunking.OverlapWordDivisor),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:          s.getInt(keyTopK, defaults.Retrieval.TopK),
			MinSimilarity: s.getFloat(keyMinSimilarity, defaults.Retrieval.MinSimilarity),
			RRFConstant:   s.getInt(keyRRFConstant, defaults.Retrieval.RRFConstant),
			MinFusedScore: s.getFloat(keyMinFusedScore, defaults.Retrieval.MinFusedScore),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Storage: domain.StorageSettings{
			DataDir:       s.configStore.GetString(keyDataDir), // No default - empty means per-user dir
			VectorBackend: s.getVectorBackend(defaults.Storage.VectorBackend),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyChunkSize:     settings.Chunking.Size,
		keyChunkOverlap:  settings.Chunking.Overlap,
		keyChunkDivisor:  settings.Chunking.OverlapWordDivisor,
		keyTopK:          settings.Retrieval.TopK,
		keyMinSimilarity: settings.Retrieval.MinSimilarity,
		keyRRFConstant:   settings.Retrieval.RRFConstant,
		keyMinFusedScore: settings.Retrieval.MinFusedScore,
		keyEmbedProvider: settings.Embedding.Provider.String(),
		keyEmbedModel:    settings.Embedding.Model,
		keyEmbedBaseURL:  settings.Embedding.BaseURL,
		keyEmbedRPS:      settings.Embedding.RequestsPerSecond,
		keyDataDir:       settings.Storage.DataDir,
		keyVectorBackend: settings.Storage.VectorBackend.String(),
	}

	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	// API keys are only written when present so a blank save cannot wipe
	// stored credentials.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}

	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return s.configStore.Save()
}

// Validate checks that current settings are coherent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative", domain.ErrInvalidInput)
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}
	if settings.Retrieval.MinSimilarity < -1 || settings.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("%w: min_similarity must be within [-1, 1]", domain.ErrInvalidInput)
	}
	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Embedding.Provider)
	}
	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.Storage.VectorBackend.IsValid() {
		return fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, settings.Storage.VectorBackend)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration
// by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// getString retrieves a string value with a fallback default.
func (s *SettingsService) getString(key, fallback string) string {
	if value := s.configStore.GetString(key); value != "" {
		return value
	}
	return fallback
}

// getInt retrieves an int value with a fallback default.
func (s *SettingsService) getInt(key string, fallback int) int {
	if value := s.configStore.GetInt(key); value != 0 {
		return value
	}
	return fallback
}

// getFloat retrieves a float value with a fallback default.
func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if value := s.configStore.GetFloat(key); value != 0 {
		return value
	}
	return fallback
}

// getProvider retrieves an AI provider with a fallback default.
func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	value := domain.AIProvider(s.configStore.GetString(key))
	if value.IsValid() {
		return value
	}
	return fallback
}

// getVectorBackend retrieves the vector backend with a fallback default.
func (s *SettingsService) getVectorBackend(fallback domain.VectorBackend) domain.VectorBackend {
	value := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if value.IsValid() {
		return value
	}
	return fallback
}
