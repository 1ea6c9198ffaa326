// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
//   - GuardrailFile: deny lists in YAML, JSON(C) or TOML
//   - Watcher: fsnotify-driven reload of the above
package file
