// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PassageStore: Passage persistence and inventory queries
//   - VectorIndex: Embedding storage and cosine similarity search
//   - SearchEngine: Lexical BM25 search over the same passage set
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
