// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion, hybrid retrieval, evidence building, grounding validation
// and library inventory all live here; adapters never call each other
// directly.
package services
