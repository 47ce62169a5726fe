// Package query provides read-only inspection of running engines.
//
// Queries never change engine state. They are synchronous and answer from
// a State snapshot loaded on demand, so a debugger, an admin endpoint or
// a save-game screen can ask "where is this NPC's dialog?" without
// touching the traversal.
//
//	reg := query.NewRegistry()
//	query.RegisterBuiltins(reg, query.EngineLoader(host.Get))
//	node, err := query.NewExecutor(reg).Execute(ctx, "guard-7", query.CurrentNode, nil)
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/registry"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Handler answers one query about an engine. Handlers must not modify
// engine state.
type Handler func(ctx context.Context, engineID string, args any) (any, error)

// Registry holds query handlers by name.
type Registry struct {
	handlers *registry.Registry[string, Handler]
}

// NewRegistry creates an empty query registry.
func NewRegistry() *Registry {
	return &Registry{handlers: registry.New[string, Handler]()}
}

// Register adds a handler. Names must be unique.
func (r *Registry) Register(name string, handler Handler) error {
	if name == "" {
		return errors.New("query name is required")
	}
	if handler == nil {
		return errors.New("handler is required")
	}
	if err := r.handlers.Add(name, handler); err != nil {
		return fmt.Errorf("query %q: %w", name, err)
	}
	return nil
}

// MustRegister registers a handler, panicking on error.
func (r *Registry) MustRegister(name string, handler Handler) {
	if err := r.Register(name, handler); err != nil {
		panic(err)
	}
}

// Get returns the handler for name.
func (r *Registry) Get(name string) (Handler, bool) {
	return r.handlers.Get(name)
}

// List returns the registered query names, sorted.
func (r *Registry) List() []string {
	names := r.handlers.Keys()
	sort.Strings(names)
	return names
}

// Unregister removes a handler.
func (r *Registry) Unregister(name string) {
	r.handlers.Delete(name)
}

var (
	// ErrQueryNotFound is returned when no handler has the query name.
	ErrQueryNotFound = errors.New("query not found")

	// ErrEngineNotFound is returned when the queried engine doesn't exist.
	ErrEngineNotFound = errors.New("engine not found")

	// ErrVariableNotFound is returned when a variables query names a
	// missing variable.
	ErrVariableNotFound = errors.New("variable not found")
)

// State is the queryable snapshot of one engine.
type State struct {
	EngineID    string `json:"engine_id"`
	Graph       string `json:"graph,omitempty"`
	Status      string `json:"status"`
	CurrentNode string `json:"current_node,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Locked      bool   `json:"locked"`
	Visits      int    `json:"visits"`

	// Variables is filled only when the engine's store could be listed.
	Variables map[string]any `json:"variables,omitempty"`
}

// StateOf snapshots e. The fields are read one at a time, so a state
// taken while the engine is moving may mix two instants.
func StateOf(e *behaviorgraph.Engine) *State {
	s := &State{
		EngineID: e.ID(),
		Status:   e.Status().String(),
		Locked:   e.Locked(),
		Visits:   e.Visits(),
	}
	if g := e.CurrentGraph(); g != nil {
		s.Graph = g.Name()
	}
	if n := e.CurrentNode(); n != nil {
		s.CurrentNode = n.ID
		s.Kind = n.Kind.Name
	}
	if snapshot, err := vars.Snapshot(e.Vars()); err == nil {
		s.Variables = snapshot
	}
	return s
}

// StateLoader retrieves the state of an engine. A nil state with a nil
// error means the engine doesn't exist.
type StateLoader func(ctx context.Context, engineID string) (*State, error)

// EngineLoader adapts an engine lookup, such as host.Host.Get, to a
// StateLoader.
func EngineLoader(lookup func(engineID string) (*behaviorgraph.Engine, bool)) StateLoader {
	return func(_ context.Context, engineID string) (*State, error) {
		e, ok := lookup(engineID)
		if !ok {
			return nil, nil
		}
		return StateOf(e), nil
	}
}

// Executor runs queries from a registry.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a query executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs the named query against an engine.
func (e *Executor) Execute(ctx context.Context, engineID, name string, args any) (any, error) {
	if engineID == "" {
		return nil, errors.New("engine ID is required")
	}
	if name == "" {
		return nil, errors.New("query name is required")
	}

	handler, ok := e.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQueryNotFound, name)
	}
	return handler(ctx, engineID, args)
}

// Built-in query names.
const (
	Status      = "status"       // lifecycle status string
	CurrentNode = "current_node" // current node ID, "" when none
	Graph       = "graph"        // loaded graph name
	Locked      = "locked"       // whether a node holds the lock
	Variables   = "variables"    // all variables, or one when args is its name
	FullState   = "state"        // the whole *State
)

// RegisterBuiltins registers the standard queries, answered from load.
func RegisterBuiltins(reg *Registry, load StateLoader) error {
	field := func(get func(*State) any) Handler {
		return func(ctx context.Context, engineID string, _ any) (any, error) {
			s, err := loadState(ctx, load, engineID)
			if err != nil {
				return nil, err
			}
			return get(s), nil
		}
	}

	builtins := map[string]Handler{
		Status:      field(func(s *State) any { return s.Status }),
		CurrentNode: field(func(s *State) any { return s.CurrentNode }),
		Graph:       field(func(s *State) any { return s.Graph }),
		Locked:      field(func(s *State) any { return s.Locked }),
		FullState:   field(func(s *State) any { return s }),
		Variables: func(ctx context.Context, engineID string, args any) (any, error) {
			s, err := loadState(ctx, load, engineID)
			if err != nil {
				return nil, err
			}
			if key, ok := args.(string); ok && key != "" {
				v, found := s.Variables[key]
				if !found {
					return nil, fmt.Errorf("%w: %s", ErrVariableNotFound, key)
				}
				return v, nil
			}
			return s.Variables, nil
		},
	}

	for name, handler := range builtins {
		if err := reg.Register(name, handler); err != nil {
			return fmt.Errorf("register builtin query: %w", err)
		}
	}
	return nil
}

func loadState(ctx context.Context, load StateLoader, engineID string) (*State, error) {
	s, err := load(ctx, engineID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, engineID)
	}
	return s, nil
}

// Result is the outcome of one query in ExecuteMultiple.
type Result struct {
	Query    string `json:"query"`
	EngineID string `json:"engine_id"`
	Value    any    `json:"value"`
	Error    string `json:"error,omitempty"`
}

// ExecuteMultiple runs several queries against one engine and returns a
// result for each, failed ones included, sorted by query name.
func (e *Executor) ExecuteMultiple(ctx context.Context, engineID string, queries map[string]any) []Result {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(queries))
	for _, name := range names {
		r := Result{Query: name, EngineID: engineID}
		value, err := e.Execute(ctx, engineID, name, queries[name])
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Value = value
		}
		results = append(results, r)
	}
	return results
}
