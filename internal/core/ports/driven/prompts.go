package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptPolicySystem is the system instruction for policy generation.
	// This prompt has no format placeholders.
	PromptPolicySystem = "policy_system"

	// PromptPolicyRequest wraps the user's request.
	// The prompt template expects a single %s placeholder for the request.
	PromptPolicyRequest = "policy_request"
)
