// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentSource: Enumerates and reads eligible documents under the root
//   - Chunker: Splits a document into overlapping passages
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Generates answer text
//   - VectorStoreFactory / VectorStore / StagingStore: Similarity search storage
//   - MarkerStore: Persists the staleness marker
//   - DocumentWatcher: Reports changes under the document root
//   - ConfigStore: Application configuration
//   - PromptStore: Customisable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
