package onboarding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/skilllinkup/backend/internal/models"
)

// Validator holds the compiled submit schema per role. Schemas live as
// {role}.v1.json files in the schema directory and are compiled once at
// startup.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator(schemaDir string) (*Validator, error) {
	schemas := make(map[string]*jsonschema.Schema)
	for _, role := range []string{models.RoleClient, models.RoleFreelancer} {
		path := filepath.Join(schemaDir, role+".v1.json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", path, err)
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(path, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", path, err)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", path, err)
		}
		schemas[role] = schema
	}
	return &Validator{schemas: schemas}, nil
}

// ValidateSubmit checks the final wizard payload against the role's schema.
func (v *Validator) ValidateSubmit(role string, payload map[string]any) error {
	schema, ok := v.schemas[role]
	if !ok {
		return fmt.Errorf("no submit schema for role %q", role)
	}
	// Round-trip through JSON so the schema library sees plain types.
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
