// Package domain defines the core business entities for Ancora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Passage: An indexed chunk of a document with stable positional identity
//   - FusedResult: A passage ranked by reciprocal-rank fusion
//   - EvidenceSet: The per-query bundle of passages and minted citation labels
//   - GroundingReport: The outcome of validating a generated answer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
