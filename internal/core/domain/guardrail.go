package domain

import (
	"fmt"
	"strings"
)

// DefaultAuthPhrase is the phrase a user must supply before a request is processed.
const DefaultAuthPhrase = "I am an authorized admin"

// DefaultPromptDenyList returns the terms that are not allowed in a user's request.
func DefaultPromptDenyList() []string {
	return []string{
		"malicious", "exploit", "unauthorized", "bypass", "attack",
		"shutdown", "delete all", "wipe", "DDoS", "phishing",
	}
}

// DefaultOutputDenyList returns the terms the model must not emit.
func DefaultOutputDenyList() []string {
	return []string{
		"sudo rm -rf /", "reboot", "shutdown now", "unmount", "kill -9",
	}
}

// GuardrailSet holds the deny lists applied before and after generation.
// Matching is case-insensitive substring containment.
type GuardrailSet struct {
	// PromptDenyList blocks a request when any entry appears in the prompt.
	PromptDenyList []string `json:"prompt_deny_list" yaml:"prompt_deny_list" toml:"prompt_deny_list"`

	// OutputDenyList removes any generated line containing an entry.
	OutputDenyList []string `json:"output_deny_list" yaml:"output_deny_list" toml:"output_deny_list"`
}

// DefaultGuardrails returns the built-in deny lists.
func DefaultGuardrails() GuardrailSet {
	return GuardrailSet{
		PromptDenyList: DefaultPromptDenyList(),
		OutputDenyList: DefaultOutputDenyList(),
	}
}

// Validate rejects blank entries, which would match every input.
func (g GuardrailSet) Validate() error {
	for i, term := range g.PromptDenyList {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("%w: prompt deny list entry %d is blank", ErrInvalidInput, i)
		}
	}
	for i, term := range g.OutputDenyList {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("%w: output deny list entry %d is blank", ErrInvalidInput, i)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared lists.
func (g GuardrailSet) Clone() GuardrailSet {
	return GuardrailSet{
		PromptDenyList: append([]string(nil), g.PromptDenyList...),
		OutputDenyList: append([]string(nil), g.OutputDenyList...),
	}
}

// MatchPrompt returns the first prompt deny-list entry found in prompt.
// Entries are checked in list order.
func (g GuardrailSet) MatchPrompt(prompt string) (string, bool) {
	return firstMatch(strings.ToLower(prompt), g.PromptDenyList)
}

// FilterOutput drops every line of text that contains an output deny-list entry.
// It returns the surviving text joined with newlines and the removed lines, trimmed.
func (g GuardrailSet) FilterOutput(text string) (string, []string) {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	var removed []string

	for _, line := range lines {
		if _, hit := firstMatch(strings.ToLower(line), g.OutputDenyList); hit {
			removed = append(removed, strings.TrimSpace(line))
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), removed
}

// firstMatch expects lowered to be lowercase already.
func firstMatch(lowered string, terms []string) (string, bool) {
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}
