// Package schema validates API request bodies against embedded JSON
// Schemas before they reach the domain types, so malformed payloads
// are rejected with a field-level message instead of a decode error.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// registry names the embedded schemas. Each compiles to a validator
// addressable by name.
var registry = []string{
	"ics_request.json",
	"preview_request.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compile() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range registry {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			compileErr = fmt.Errorf("failed to read schema %s: %w", name, err)
			return
		}
		if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("failed to add schema %s: %w", name, err)
			return
		}
	}
	compiled = make(map[string]*jsonschema.Schema, len(registry))
	for _, name := range registry {
		s, err := c.Compile(name)
		if err != nil {
			compileErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
			return
		}
		compiled[name] = s
	}
}

// Validate checks raw JSON against the named schema.
func Validate(name string, raw []byte) error {
	compileOnce.Do(compile)
	if compileErr != nil {
		return compileErr
	}
	s, ok := compiled[name]
	if !ok {
		return fmt.Errorf("schema not found: %s", name)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return err
	}
	return nil
}

// ValidateICSRequest checks a calendar generation request body.
func ValidateICSRequest(raw []byte) error {
	return Validate("ics_request.json", raw)
}

// ValidatePreviewRequest checks an occurrence preview request body.
func ValidatePreviewRequest(raw []byte) error {
	return Validate("preview_request.json", raw)
}
