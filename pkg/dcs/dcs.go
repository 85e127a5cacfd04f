// Package dcs binds an aircraft's network functions to a running session.
//
// An Interface is assembled from hand-written functions, definitions loaded
// at runtime and the functions compiled from the simulator's clickable data.
// Attach builds the function table and starts a session on a transport;
// Detach releases it.
package dcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"simlink/pkg/catalog"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
	"simlink/pkg/session"
	"simlink/pkg/store"
	"simlink/pkg/transport"
)

var (
	// ErrAttached is returned by Attach while a session is running.
	ErrAttached = errors.New("interface already attached")
	// ErrNotAttached is returned by Detach without a session.
	ErrNotAttached = errors.New("interface not attached")
)

// Option configures an Interface.
type Option func(*Interface)

// WithFunctions sets the hand-written functions. They win every export ID
// conflict with compiled functions.
func WithFunctions(fn func() []netfunc.Function) Option {
	return func(i *Interface) { i.handWritten = fn }
}

// WithGenerated sets the functions compiled ahead of time.
func WithGenerated(fn func() []netfunc.Function) Option {
	return func(i *Interface) { i.generated = fn }
}

// WithDefinitions adds definitions built at attach time, alongside the
// hand-written functions.
func WithDefinitions(defs ...netfunc.Definition) Option {
	return func(i *Interface) { i.dynamic = append(i.dynamic, defs...) }
}

// WithTolerance sets the switch matching tolerance. Zero requires exact matches.
func WithTolerance(tol float64) Option {
	return func(i *Interface) { i.tolerance = tol }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interface) { i.logger = l }
}

// Interface is the per-aircraft facade over one function table.
type Interface struct {
	name        string
	cat         *catalog.Catalog
	handWritten func() []netfunc.Function
	generated   func() []netfunc.Function
	dynamic     []netfunc.Definition
	stored      []netfunc.Definition
	tolerance   float64
	logger      *slog.Logger

	mu   sync.Mutex
	sess *session.Session
}

// New creates an interface for the aircraft described by cat.
func New(name string, cat *catalog.Catalog, opts ...Option) *Interface {
	i := &Interface{
		name:   name,
		cat:    cat,
		logger: slog.Default().With("component", "dcs", "interface", name),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Name returns the interface name.
func (i *Interface) Name() string { return i.name }

// Catalog returns the device catalog.
func (i *Interface) Catalog() *catalog.Catalog { return i.cat }

// AddDefinitions queues definitions for the next Attach.
func (i *Interface) AddDefinitions(defs ...netfunc.Definition) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.dynamic = append(i.dynamic, defs...)
}

// LoadDefinitions reads the compiled definitions persisted for this
// interface. When any are found they replace the generated functions on
// the next Attach.
func (i *Interface) LoadDefinitions(ctx context.Context, st store.DefinitionStore) (int, error) {
	defs, err := st.LoadDefinitions(ctx, i.name)
	if err != nil {
		return 0, fmt.Errorf("load definitions for %s: %w", i.name, err)
	}
	i.mu.Lock()
	i.stored = defs
	i.mu.Unlock()
	if len(defs) > 0 {
		i.logger.Info("Loaded compiled definitions", "count", len(defs))
	}
	return len(defs), nil
}

// Build assembles the function table. Hand-written functions and runtime
// definitions are registered first; compiled functions fill the remaining
// export IDs. Problems become diagnostics, never errors.
func (i *Interface) Build() (*functable.Table, []functable.Diagnostic) {
	i.mu.Lock()
	dynamic := append([]netfunc.Definition(nil), i.dynamic...)
	stored := i.stored
	i.mu.Unlock()

	var diags []functable.Diagnostic
	var hand []netfunc.Function
	if i.handWritten != nil {
		hand = append(hand, i.handWritten()...)
	}
	built, d := i.buildAll(dynamic)
	hand = append(hand, built...)
	diags = append(diags, d...)

	var compiled []netfunc.Function
	switch {
	case len(stored) > 0:
		compiled, d = i.buildAll(stored)
		diags = append(diags, d...)
	case i.generated != nil:
		compiled = i.generated()
	}

	table, d := functable.Merge(hand, compiled,
		functable.WithTolerance(i.tolerance),
		functable.WithLogger(i.logger))
	diags = append(diags, d...)

	i.logger.Info("Function table built",
		"functions", table.Len(),
		"hand_written", len(hand),
		"compiled", len(compiled),
		"diagnostics", len(diags))
	return table, diags
}

func (i *Interface) buildAll(defs []netfunc.Definition) ([]netfunc.Function, []functable.Diagnostic) {
	var out []netfunc.Function
	var diags []functable.Diagnostic
	for _, d := range defs {
		f, err := d.Build(i.cat)
		if err != nil {
			i.logger.Warn("Skipping definition", "id", d.ID, "name", d.Name, "error", err)
			diags = append(diags, functable.Diagnostic{Severity: functable.SeverityError, ID: d.ID, Message: err.Error()})
			continue
		}
		out = append(out, f)
	}
	return out, diags
}

// Attach builds the table and binds it to tr. The caller runs the returned
// session's loop.
func (i *Interface) Attach(tr transport.Transport, opts ...session.Option) (*session.Session, error) {
	i.mu.Lock()
	attached := i.sess != nil
	i.mu.Unlock()
	if attached {
		return nil, ErrAttached
	}

	table, diags := i.Build()
	opts = append([]session.Option{session.WithDiagnostics(diags)}, opts...)
	sess := session.New(i.name, tr, table, opts...)

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.sess != nil {
		_ = sess.Close()
		return nil, ErrAttached
	}
	i.sess = sess
	i.logger.Info("Interface attached", "session", sess.ID())
	return sess, nil
}

// Detach closes the running session and its transport.
func (i *Interface) Detach() error {
	i.mu.Lock()
	sess := i.sess
	i.sess = nil
	i.mu.Unlock()
	if sess == nil {
		return ErrNotAttached
	}
	return sess.Close()
}

// Session returns the running session.
func (i *Interface) Session() (*session.Session, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sess, i.sess != nil
}
