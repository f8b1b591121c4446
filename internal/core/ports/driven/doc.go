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
//   - NoteSource: Lists, reads and writes the markdown corpus
//   - VectorIndex: Chunk embedding storage and similarity search
//   - TaskStore: Task persistence
//   - DigestStore: Digest persistence
//   - ConfigStore: Application configuration
//
// # External Capabilities
//
// Treated as black boxes behind HTTP adapters:
//
//   - EmbeddingService: embed(text) -> vector
//   - LLMService: generate(prompt) -> text
//
// When a capability is unreachable the owning operation fails with a
// distinguishable error kind; there is no silent fallback answer.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
