package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMock is a deterministic offline embedder for tests and
	// air-gapped runs. Vectors are derived from the text alone, so
	// retrieval quality is nonsense but behaviour is reproducible.
	AIProviderMock AIProvider = "mock"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderMock:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderMock:
		return "Mock (deterministic, offline)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies where passage embeddings are kept.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendBadger persists vectors to a Badger keyspace on disk.
	VectorBackendBadger VectorBackend = "badger"
)

// IsValid returns true if the vector backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendBadger:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "Memory (ephemeral, lost on exit)"
	case VectorBackendBadger:
		return "Badger (persistent on disk)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings holds document chunking configuration.
type ChunkingSettings struct {
	// Size is the maximum passage length in characters.
	Size int

	// Overlap is the trailing context carried across passage boundaries,
	// in characters.
	Overlap int

	// OverlapWordDivisor converts Overlap into a word count: the last
	// Overlap/OverlapWordDivisor words of an emitted passage seed the
	// next one. The retained-context policy is the contract; the divisor
	// is a tunable.
	OverlapWordDivisor int
}

// RetrievalSettings holds hybrid search configuration.
type RetrievalSettings struct {
	// TopK is the default number of fused results returned per query.
	TopK int

	// MinSimilarity is the cosine similarity floor for dense hits.
	// Near-orthogonal embeddings are excluded before ranking.
	MinSimilarity float64

	// RRFConstant is the k in the reciprocal-rank contribution
	// 1/(k + rank + 1). Higher values flatten the rank curve.
	RRFConstant int

	// MinFusedScore is the minimum RRF sum a result needs to be kept
	// after fusion. Results only a weak single-strategy signal supports
	// fall below it.
	MinFusedScore float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps embedding calls to the provider.
	// Zero means no limit.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds data location configuration.
type StorageSettings struct {
	// DataDir is the root directory for the passage store and vector
	// keyspace. Empty means the per-user default.
	DataDir string

	// VectorBackend selects where embeddings live.
	VectorBackend VectorBackend
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Chunking holds document chunking settings.
	Chunking ChunkingSettings

	// Retrieval holds hybrid search settings.
	Retrieval RetrievalSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Storage holds data location settings.
	Storage StorageSettings
}

// AllAIProviders returns every provider that can serve embeddings.
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMock,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderMock:   "mock-embed",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider defaults to a local Ollama instance; switch the
// provider to "mock" for offline use or "openai" for hosted embeddings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:               500,
			Overlap:            80,
			OverlapWordDivisor: 6,
		},
		Retrieval: RetrievalSettings{
			TopK:          5,
			MinSimilarity: 0.30,
			RRFConstant:   60,
			MinFusedScore: 0.008,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Storage: StorageSettings{
			VectorBackend: VectorBackendBadger,
		},
	}
}
