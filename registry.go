package sass

import (
	"fmt"
	"strings"
	"sync"
)

// Function is a builtin or user-registered value function callable from
// declaration values and conditions.
type Function func(args ...Value) (Value, error)

// FunctionRegistry holds value functions by name. Names are
// case-insensitive, matching CSS function names; the registry is safe
// for concurrent use so compiles may run in parallel.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		funcs: make(map[string]Function),
	}
}

// Register adds fn under name. Registering an already-taken name is an
// error rather than a silent replacement.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	normalizedName := strings.ToLower(name)
	if _, exists := r.funcs[normalizedName]; exists {
		return fmt.Errorf("function %s already registered", name)
	}

	r.funcs[normalizedName] = fn
	return nil
}

// Lookup returns the function registered under name, ignoring case.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[strings.ToLower(name)]
	return fn, ok
}

// List returns the registered names, in no particular order.
func (r *FunctionRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// Clear drops every registration.
func (r *FunctionRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs = make(map[string]Function)
}

// globalRegistry serves every compile; the builtins land here in init.
var globalRegistry = NewFunctionRegistry()

// RegisterFunction registers a function in the global registry. Unknown
// function names in source are passed through as plain CSS, so a
// registered name shadows the CSS function of the same name.
func RegisterFunction(name string, fn Function) error {
	return globalRegistry.Register(name, fn)
}

// LookupFunction looks up a function in the global registry.
func LookupFunction(name string) (Function, bool) {
	return globalRegistry.Lookup(name)
}

// ClearFunctions drops every global registration, builtins included.
func ClearFunctions() {
	globalRegistry.Clear()
}

func mustRegister(name string, fn Function) {
	if err := globalRegistry.Register(name, fn); err != nil {
		panic(err)
	}
}
