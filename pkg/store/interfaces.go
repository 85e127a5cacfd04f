package store

import (
	"context"
	"time"

	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
)

// DefinitionStore persists the function definitions of each interface.
type DefinitionStore interface {
	// SaveDefinitions replaces every stored definition of an interface.
	SaveDefinitions(ctx context.Context, iface, source string, defs []netfunc.Definition) error
	// LoadDefinitions returns the stored definitions ordered by export ID.
	LoadDefinitions(ctx context.Context, iface string) ([]netfunc.Definition, error)
	DeleteDefinitions(ctx context.Context, iface string) error
	ListInterfaces(ctx context.Context) ([]string, error)
}

// CompileRun summarizes one compiler invocation.
type CompileRun struct {
	ID          int64
	Interface   string
	Source      string
	Elements    int
	Functions   int
	Inoperable  int
	Skipped     int
	Diagnostics []functable.Diagnostic
	CreatedAt   time.Time
}

// CompileRunStore records compiler invocations.
type CompileRunStore interface {
	RecordCompileRun(ctx context.Context, run *CompileRun) error
	// RecentCompileRuns returns up to limit runs, newest first.
	RecentCompileRuns(ctx context.Context, iface string, limit int) ([]CompileRun, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
