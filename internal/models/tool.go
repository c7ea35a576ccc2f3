package models

import "context"

// ToolParameter describes one argument of a Tool.
// Type is a JSON schema primitive: "string", "integer", "number" or "boolean".
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Tool is a capability the agent may call during a run.
// Invoke never returns an error; failures are reported as text so the
// model can recover (for example by switching to another tool).
type Tool struct {
	Name        string
	Description string
	Parameters  []ToolParameter
	Invoke      func(ctx context.Context, args map[string]any) string
}

// JSONSchema returns the parameters as a JSON schema object
func (t Tool) JSONSchema() map[string]any {
	properties := make(map[string]any, len(t.Parameters))
	required := make([]string, 0, len(t.Parameters))
	for _, p := range t.Parameters {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// RequiredNames lists the names of required parameters
func (t Tool) RequiredNames() []string {
	var names []string
	for _, p := range t.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}
