package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
)

// ArgType is the declared primitive type of a tool argument.
type ArgType string

const (
	TypeString  ArgType = "string"
	TypeNumber  ArgType = "number"
	TypeBoolean ArgType = "boolean"
	TypeArray   ArgType = "array"
	TypeObject  ArgType = "object"
)

// Arg declares a single tool argument.
type Arg struct {
	// Name is the argument name as it appears in request payloads.
	Name string

	// Type is the expected primitive type.
	Type ArgType

	// Description documents the argument for schema output.
	Description string

	// Required marks the argument as mandatory.
	Required bool
}

// Args is a validated argument mapping handed to a tool handler.
type Args map[string]interface{}

// String returns a string argument, or "" when absent.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Bool returns a boolean argument, or def when absent.
func (a Args) Bool(name string, def bool) bool {
	if v, ok := a[name].(bool); ok {
		return v
	}
	return def
}

// Number returns a numeric argument, or def when absent.
func (a Args) Number(name string, def float64) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Slice returns an array argument, or nil when absent.
func (a Args) Slice(name string) []interface{} {
	v, _ := a[name].([]interface{})
	return v
}

// Handler executes a tool invocation with validated arguments.
type Handler func(ctx context.Context, args Args) (interface{}, error)

// Tool is a named operation with a declared argument schema.
type Tool struct {
	// Name is the operation name, identical on both transports.
	Name string

	// Description documents the tool for MCP listings and OpenAPI.
	Description string

	// Args is the declarative argument schema.
	Args []Arg

	// HTTPMethod is the REST verb for this tool (default POST).
	HTTPMethod string

	// HTTPPathParam names an argument bound from the URL path instead of
	// the body, e.g. list_sheets/{spreadsheet_id}.
	HTTPPathParam string

	// ReadOnly marks tools that do not modify any spreadsheet.
	ReadOnly bool

	// Service names the Google service the tool calls ("sheets" or
	// "drive"), used as a metrics and audit label.
	Service string

	// Operation is the Google API operation label ("get", "update", ...)
	// paired with Service.
	Operation string

	// Handler executes the operation.
	Handler Handler
}

// Registry is a fixed mapping from operation name to schema and handler.
// Tools are registered once at startup; lookups are read-only afterwards
// and safe for concurrent use.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Duplicate names and malformed schemas are
// registration-time errors, not request-time surprises.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s: already registered", tool.Name)
	}
	if tool.HTTPMethod == "" {
		tool.HTTPMethod = http.MethodPost
	}
	seen := make(map[string]bool, len(tool.Args))
	for _, arg := range tool.Args {
		if arg.Name == "" {
			return fmt.Errorf("tool %s: argument name is required", tool.Name)
		}
		if seen[arg.Name] {
			return fmt.Errorf("tool %s: duplicate argument %s", tool.Name, arg.Name)
		}
		seen[arg.Name] = true
		switch arg.Type {
		case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		default:
			return fmt.Errorf("tool %s: argument %s has invalid type %q", tool.Name, arg.Name, arg.Type)
		}
	}

	r.order = append(r.order, tool.Name)
	r.tools[tool.Name] = &tool
	return nil
}

// MustRegister is Register for static tool tables built at startup.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Lookup returns the tool for a name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Tools returns all tools in registration order.
func (r *Registry) Tools() []*Tool {
	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Invoke validates args against the tool's schema and runs the handler.
// Validation failures and unknown names never reach a handler.
func (r *Registry) Invoke(ctx context.Context, name string, raw map[string]interface{}) (interface{}, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, apierr.NotFound("unknown tool %q", name)
	}

	args := make(Args, len(raw))
	for k, v := range raw {
		args[k] = v
	}

	for _, arg := range tool.Args {
		value, present := args[arg.Name]
		if !present || value == nil {
			if arg.Required {
				return nil, apierr.Validation("missing required argument %q", arg.Name)
			}
			continue
		}
		if err := checkType(arg, value); err != nil {
			return nil, err
		}
	}

	return tool.Handler(ctx, args)
}

func checkType(arg Arg, value interface{}) error {
	ok := false
	switch arg.Type {
	case TypeString:
		_, ok = value.(string)
	case TypeNumber:
		switch value.(type) {
		case float64, int, int64:
			ok = true
		}
	case TypeBoolean:
		_, ok = value.(bool)
	case TypeArray:
		_, ok = value.([]interface{})
	case TypeObject:
		_, ok = value.(map[string]interface{})
	}
	if !ok {
		return apierr.Validation("argument %q must be of type %s", arg.Name, arg.Type)
	}
	return nil
}
