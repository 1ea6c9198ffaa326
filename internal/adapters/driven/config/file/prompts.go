package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads policy prompts from user-editable files on disk.
// Missing or unreadable files fall back to embedded defaults.
//
// The directory and default files are created lazily on first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts seed new prompt files and back any that go missing.
var defaultPrompts = map[string]string{
	driven.PromptPolicySystem: `You are a network security assistant. Produce concise, reviewable policies
as a short title line followed by one "- " bullet per rule. Never include shell commands
that reboot, unmount, kill processes or delete files.`,

	driven.PromptPolicyRequest: `Network security policy request:
%s`,
}

const promptReadme = `# PolicyShield Prompts

These files shape how the model is asked for a policy.

## Files

- ` + "`policy_system.txt`" + ` - System instruction sent with every request
- ` + "`policy_request.txt`" + ` - Wraps the user's request

## Placeholders

` + "`policy_request.txt`" + ` must contain exactly one ` + "`%s`" + `, which is replaced by
the request text. A template without it is ignored.

Edits are picked up automatically while ` + "`policyshield serve`" + ` is running.
`

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.policyshield/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-checked so a concurrent loader's value wins.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// initialise creates the prompt directory, default files and README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeIfMissing never overwrites user edits.
func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}
