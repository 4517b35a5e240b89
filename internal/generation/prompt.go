package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
)

// SystemInstruction frames every care plan prompt.
const SystemInstruction = "You are an experienced clinical pharmacist."

//go:embed prompts/careplan.tmpl
var defaultPromptTemplate string

// PromptBuilder renders generation inputs into provider prompts.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the template at path, or the built-in template when
// path is empty.
func NewPromptBuilder(path string) (*PromptBuilder, error) {
	content := defaultPromptTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, path, err)
		}
		content = string(raw)
	}

	tmpl, err := template.New("careplan").Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for in.
func (b *PromptBuilder) Build(in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
