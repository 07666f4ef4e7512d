// Package driving defines the interfaces that the outside world uses to
// drive the application core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI commands, the chat TUI, and the MCP server call these interfaces;
// core services implement them.
//
// # Interfaces
//
//   - IngestOrchestrator: Ingests the letters directory into the index
//   - Retriever: Retrieves relevant passages for a question
//   - AnswerOrchestrator: Generates grounded, cited answers
//   - ThreadManager: Conversation thread management
//   - SettingsManager: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
