package operations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/ribbitkit/httpclient"
	"github.com/kbukum/ribbitkit/session"
)

// ErrUnknownOperation is returned by Run for an unregistered name.
var ErrUnknownOperation = errors.New("operations: unknown operation")

// ErrUsage is returned when an operation gets the wrong arguments.
var ErrUsage = errors.New("operations: wrong arguments")

// Env is what operations run against.
type Env struct {
	Client   *httpclient.Client
	Sessions *session.Manager
}

// Func runs one operation and returns its printable result.
type Func func(ctx context.Context, env *Env, args []string) (string, error)

// Operation is a named, documented Func.
type Operation struct {
	Name string
	// Args is the argument synopsis shown in help, e.g. "<uri> <path> [accept]".
	Args    string
	Summary string
	MinArgs int
	MaxArgs int
	Run     Func
}

// Registry holds operations by name.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds op. Names are unique.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" || op.Run == nil {
		return fmt.Errorf("operations: name and run function are required")
	}
	if op.MaxArgs < op.MinArgs {
		return fmt.Errorf("operations: %s: max args below min args", op.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[op.Name]; ok {
		return fmt.Errorf("operations: %s already registered", op.Name)
	}
	r.ops[op.Name] = op
	return nil
}

// Lookup returns the named operation.
func (r *Registry) Lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Names returns sorted names of all registered operations.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run checks the argument count and runs the named operation.
func (r *Registry) Run(ctx context.Context, env *Env, name string, args []string) (string, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	if len(args) < op.MinArgs || len(args) > op.MaxArgs {
		return "", fmt.Errorf("%w: usage: %s %s", ErrUsage, op.Name, op.Args)
	}
	return op.Run(ctx, env, args)
}
