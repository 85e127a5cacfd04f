// Package functable routes exported records to the network functions that own
// them and turns cockpit actions into simulator commands.
//
// A Table is built once, before its session starts ticking, and is then
// mutated only by the session's tick loop. It is not safe for concurrent use.
package functable

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"simlink/pkg/netfunc"
)

// ErrUnknownFunction is returned when an action names a function the table does not hold.
var ErrUnknownFunction = errors.New("function not registered")

// DuplicateIDError reports an export ID already owned by another function.
type DuplicateIDError struct {
	ID       int
	Existing string
	Incoming string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("export id %d of %q already registered by %q", e.ID, e.Incoming, e.Existing)
}

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a non-fatal problem found while building or running a table.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	ID       int      `json:"id,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.ID != 0 {
		return fmt.Sprintf("[%s] %d: %s", d.Severity, d.ID, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
}

// Update is one changed element value.
type Update struct {
	ID       int    `json:"id"`
	Value    string `json:"value"`
	Function string `json:"function"`
}

// Option configures a Table.
type Option func(*Table)

// WithTolerance sets the numeric tolerance used to match switch positions.
// Zero, the default, requires exact matches.
func WithTolerance(tol float64) Option {
	return func(t *Table) { t.tolerance = math.Abs(tol) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// Table is an ordered set of functions indexed by export ID.
type Table struct {
	functions []netfunc.Function
	byID      map[int]netfunc.Function
	byName    map[string]netfunc.Function
	tolerance float64
	logger    *slog.Logger
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		byID:   make(map[int]netfunc.Function),
		byName: make(map[string]netfunc.Function),
		logger: slog.Default().With("component", "functable"),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Register adds f. If any element of f collides with a registered ID the
// table is left unchanged and a *DuplicateIDError is returned.
func (t *Table) Register(f netfunc.Function) error {
	elems := f.Elements()
	seen := make(map[int]bool, len(elems))
	for _, e := range elems {
		if existing, dup := t.byID[e.ID()]; dup {
			return &DuplicateIDError{ID: e.ID(), Existing: existing.Name(), Incoming: f.Name()}
		}
		if seen[e.ID()] {
			return &DuplicateIDError{ID: e.ID(), Existing: f.Name(), Incoming: f.Name()}
		}
		seen[e.ID()] = true
	}

	for _, e := range elems {
		t.byID[e.ID()] = f
	}
	t.functions = append(t.functions, f)
	key := nameKey(f.Name())
	if _, taken := t.byName[key]; !taken {
		t.byName[key] = f
	}
	return nil
}

// RegisterAll registers every function, skipping those that collide. A
// diagnostic is returned for each skipped function.
func (t *Table) RegisterAll(fs []netfunc.Function) []Diagnostic {
	var diags []Diagnostic
	for _, f := range fs {
		if err := t.Register(f); err != nil {
			var dup *DuplicateIDError
			id := 0
			if errors.As(err, &dup) {
				id = dup.ID
			}
			t.logger.Warn("Skipping function", "function", f.Name(), "error", err)
			diags = append(diags, Diagnostic{Severity: SeverityWarning, ID: id, Message: err.Error()})
		}
	}
	return diags
}

// Merge builds a table from hand-written and compiled functions. Hand-written
// entries are registered first and win every export ID conflict; each
// shadowed compiled entry yields a warning.
func Merge(handWritten, compiled []netfunc.Function, opts ...Option) (*Table, []Diagnostic) {
	t := New(opts...)
	diags := t.RegisterAll(handWritten)
	for _, f := range compiled {
		err := t.Register(f)
		if err == nil {
			continue
		}
		var dup *DuplicateIDError
		if errors.As(err, &dup) {
			msg := fmt.Sprintf("compiled %q shadowed by hand-written %q", dup.Incoming, dup.Existing)
			t.logger.Warn("Duplicate export id", "id", dup.ID, "compiled", dup.Incoming, "kept", dup.Existing)
			diags = append(diags, Diagnostic{Severity: SeverityWarning, ID: dup.ID, Message: msg})
			continue
		}
		diags = append(diags, Diagnostic{Severity: SeverityError, Message: err.Error()})
	}
	return t, diags
}

// Len returns the number of registered functions.
func (t *Table) Len() int { return len(t.functions) }

// Functions returns the functions in registration order.
func (t *Table) Functions() []netfunc.Function {
	out := make([]netfunc.Function, len(t.functions))
	copy(out, t.functions)
	return out
}

// IDs returns every routable export ID in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ByID returns the function owning an export ID.
func (t *Table) ByID(id int) (netfunc.Function, bool) {
	f, ok := t.byID[id]
	return f, ok
}

// ByName returns the first registered function with the given name,
// compared case-insensitively.
func (t *Table) ByName(name string) (netfunc.Function, bool) {
	f, ok := t.byName[nameKey(name)]
	return f, ok
}

// Changed returns every dirty element in ID order and clears the dirty flags.
func (t *Table) Changed() []Update {
	var out []Update
	for _, id := range t.IDs() {
		f := t.byID[id]
		for _, e := range f.Elements() {
			if e.ID() != id || !e.Dirty() {
				continue
			}
			out = append(out, Update{ID: id, Value: e.Value(), Function: f.Name()})
			e.ClearDirty()
		}
	}
	return out
}

// Snapshot returns the current value of every element in ID order.
func (t *Table) Snapshot() []Update {
	var out []Update
	for _, id := range t.IDs() {
		f := t.byID[id]
		for _, e := range f.Elements() {
			if e.ID() == id {
				out = append(out, Update{ID: id, Value: e.Value(), Function: f.Name()})
			}
		}
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}
