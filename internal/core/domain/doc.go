// Package domain defines the core business entities for Noteward.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A markdown note loaded from the corpus
//   - Chunk: An addressable unit of a note (a heading or its body)
//   - TaskItem: An actionable item extracted from note text
//   - Digest: A dated summary of corpus changes and outstanding tasks
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
