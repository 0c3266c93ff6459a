package tools

import (
	"context"
	"fmt"
	"strconv"
)

// Registry holds every tool available to the agent. It is constructed once
// at startup and passed by reference to the components that need it; there is
// no ambient global registry.
//
// Registration order is preserved: the function-schema document sent to the
// remote agent service is regenerated from the registry and must be
// deterministic across requests.
type Registry struct {
	order      []string
	entries    map[string]entry
	groupDescs map[string]string
}

type entry struct {
	def Definition
	fn  HandlerFunc
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:    make(map[string]entry),
		groupDescs: make(map[string]string),
	}
}

// DescribeGroup sets the description published for an action group in the
// function-schema document. Adapters describe the groups they own at
// registration time; configuration may override afterwards.
func (r *Registry) DescribeGroup(group, description string) {
	r.groupDescs[group] = description
}

// Register adds a tool to the registry. The definition is validated here, at
// registration time, so schema mistakes fail at startup rather than
// mid-conversation.
func (r *Registry) Register(def Definition, fn HandlerFunc) error {
	if def.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if fn == nil {
		return fmt.Errorf("tool %q has no handler", def.Name)
	}
	if _, exists := r.entries[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}
	for _, p := range def.Parameters {
		switch p.Type {
		case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		default:
			return fmt.Errorf("tool %q: parameter %q has unsupported type %q", def.Name, p.Name, p.Type)
		}
	}
	r.entries[def.Name] = entry{def: def, fn: fn}
	r.order = append(r.order, def.Name)
	return nil
}

// Definitions returns all registered tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].def)
	}
	return defs
}

// SchemaFor returns the definition of a single tool by name.
func (r *Registry) SchemaFor(name string) (Definition, error) {
	e, ok := r.entries[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return e.def, nil
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.order)
}

// ActionGroups builds the function-schema document for the remote agent
// service. Groups appear in first-seen order and functions within a group in
// registration order.
func (r *Registry) ActionGroups() []ActionGroup {
	var groups []ActionGroup
	index := make(map[string]int)

	for _, name := range r.order {
		def := r.entries[name].def
		i, ok := index[def.ActionGroup]
		if !ok {
			i = len(groups)
			index[def.ActionGroup] = i
			groups = append(groups, ActionGroup{
				Name:        def.ActionGroup,
				Description: r.groupDescs[def.ActionGroup],
			})
		}

		params := make(map[string]ParameterDoc, len(def.Parameters))
		for _, p := range def.Parameters {
			params[p.Name] = ParameterDoc{
				Type:        p.Type,
				Description: p.Description,
				Required:    p.Required,
			}
		}
		groups[i].Functions = append(groups[i].Functions, FunctionDoc{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return groups
}

// Invoke executes the named tool with the given argument bag.
//
// It fails with ErrUnknownTool, MissingArgumentError, or ArgumentTypeError
// before the handler runs. Once the handler runs, its errors (and panics)
// are captured into Result.Error: the remote agent must receive a textual
// error, never see this process crash.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]string) (Result, error) {
	e, ok := r.entries[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	for _, p := range e.def.Parameters {
		val, present := args[p.Name]
		if !present || val == "" {
			if p.Required {
				return Result{}, &MissingArgumentError{Tool: name, Parameter: p.Name}
			}
			continue
		}
		if err := checkType(name, p, val); err != nil {
			return Result{}, err
		}
	}

	res := Result{Tool: name}
	payload, err := r.run(ctx, e.fn, args)
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	res.Payload = payload
	return res, nil
}

// run executes a handler with panic capture.
func (r *Registry) run(ctx context.Context, fn HandlerFunc, args map[string]string) (payload string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return fn(ctx, args)
}

func checkType(tool string, p Parameter, val string) error {
	var err error
	switch p.Type {
	case TypeNumber:
		_, err = strconv.ParseFloat(val, 64)
	case TypeInteger:
		_, err = strconv.Atoi(val)
	case TypeBoolean:
		_, err = strconv.ParseBool(val)
	}
	if err != nil {
		return &ArgumentTypeError{Tool: tool, Parameter: p.Name, WantType: p.Type, Value: val}
	}
	return nil
}
