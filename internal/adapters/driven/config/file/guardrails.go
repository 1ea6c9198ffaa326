package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// Ensure GuardrailFile implements the interface.
var _ driven.GuardrailSource = (*GuardrailFile)(nil)

// GuardrailFile reads deny lists from a rules file. The format follows the extension:
//
//	.yaml, .yml   YAML
//	.json, .jsonc JSON with comments and trailing commas allowed
//	.toml         TOML
//
// A list missing from the file keeps its base value; an explicit empty list clears it.
type GuardrailFile struct {
	path string
	base domain.GuardrailSet
}

// NewGuardrailFile creates a guardrail source for path.
// base supplies any list the file leaves out.
func NewGuardrailFile(path string, base domain.GuardrailSet) (*GuardrailFile, error) {
	if _, err := decoderFor(path); err != nil {
		return nil, err
	}
	return &GuardrailFile{path: path, base: base.Clone()}, nil
}

// Path returns the rules file path.
func (g *GuardrailFile) Path() string {
	return g.path
}

// Load reads and validates the rules file.
func (g *GuardrailFile) Load() (domain.GuardrailSet, error) {
	decode, err := decoderFor(g.path)
	if err != nil {
		return domain.GuardrailSet{}, err
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		return domain.GuardrailSet{}, fmt.Errorf("read guardrails: %w", err)
	}

	set := g.base.Clone()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := decode(data, &set); err != nil {
			return domain.GuardrailSet{}, fmt.Errorf("parse %s: %w", filepath.Base(g.path), err)
		}
	}

	if err := set.Validate(); err != nil {
		return domain.GuardrailSet{}, err
	}
	return set, nil
}

type decodeFunc func(data []byte, set *domain.GuardrailSet) error

func decoderFor(path string) (decodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return func(data []byte, set *domain.GuardrailSet) error {
			return yaml.Unmarshal(data, set)
		}, nil
	case ".json", ".jsonc":
		return func(data []byte, set *domain.GuardrailSet) error {
			return json.Unmarshal(jsonc.ToJSON(data), set)
		}, nil
	case ".toml":
		return func(data []byte, set *domain.GuardrailSet) error {
			return toml.Unmarshal(data, set)
		}, nil
	default:
		return nil, fmt.Errorf("%w: guardrail file %q (want .yaml, .json, .jsonc or .toml)",
			domain.ErrUnsupportedFormat, filepath.Base(path))
	}
}
