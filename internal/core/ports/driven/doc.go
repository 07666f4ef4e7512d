// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LetterSource: Reads raw letter files from the configured directory
//   - Extractor: Converts raw files into plain text documents
//   - ExtractorRegistry: Selects the appropriate extractor per MIME type
//   - PostProcessorPipeline: Splits documents into chunks
//   - DocumentStore: Document and chunk persistence
//   - ThreadStore: Conversation memory persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, ingestion
//     and retrieval are disabled.
//   - VectorIndex: Vector storage/search. Disabled alongside embeddings.
//   - LLMService: Language model operations. Without it, answering is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
