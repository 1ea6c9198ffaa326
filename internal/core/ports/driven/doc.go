// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LLMService: Generates policy text (mock, Gemini, Ollama, OpenAI, Anthropic)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EvaluationStore: Evaluation history. Without it, nothing is recorded.
//   - PromptStore: Prompt templates. Without it, built-in templates are used.
//   - GuardrailSource: External deny lists. Without it, configured lists are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
