// Package prompt is a small prompt library: mapping prompts live in JSON
// files under resources/prompts and are loaded at startup, so wording can be
// tuned without a rebuild. Callers always have a hardcoded fallback for when
// the library is absent.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template is a reusable prompt with metadata.
type Template struct {
	ID             string     `json:"id"`                   // e.g. "mapping.products"
	Name           string     `json:"name"`                 // human-readable name
	Category       string     `json:"category"`             // e.g. "mapping"
	Description    string     `json:"description"`          // purpose
	SystemPrompt   string     `json:"system_prompt"`        // system prompt content
	UserPromptTmpl string     `json:"user_prompt_template"` // Go text/template body
	Variables      []Variable `json:"variables"`            // declared template variables
	Version        string     `json:"version"`
}

// Variable documents one template variable.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context holds runtime values for template rendering.
type Context struct {
	Variables map[string]interface{}
}

func NewContext() *Context {
	return &Context{Variables: make(map[string]interface{})}
}

// Set adds a variable and returns the context for chaining.
func (c *Context) Set(key string, value interface{}) *Context {
	c.Variables[key] = value
	return c
}

// RenderUserPrompt executes the template's user prompt against the context.
func RenderUserPrompt(t *Template, ctx *Context) (string, error) {
	tmpl, err := template.New(t.ID).Parse(t.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.ID, err)
	}
	return buf.String(), nil
}
