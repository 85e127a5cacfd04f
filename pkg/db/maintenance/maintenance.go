package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"simlink/pkg/aircraft"
	"simlink/pkg/db"
	"simlink/pkg/dcs"
	"simlink/pkg/netfunc"
	"simlink/pkg/store"
)

const definitionsStateKeyPrefix = "definitions_mtime:"

// Run executes all maintenance tasks: definition import and pruning.
// Failures are logged and never stop startup.
func Run(ctx context.Context, s store.Store, d *db.DB, definitionsPath string, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	if definitionsPath != "" {
		if n, err := ImportDefinitions(ctx, s, definitionsPath); err != nil {
			slog.Error("Definition import failed", "path", definitionsPath, "error", err)
		} else if n > 0 {
			slog.Info("Definition import completed", "path", definitionsPath, "definitions", n)
		}
	}

	if retention > 0 {
		n, err := d.PruneCompileRuns(retention)
		if err != nil {
			slog.Error("Compile run pruning failed", "error", err)
		} else {
			slog.Info("Compile run pruning completed", "removed", n)
		}
	}

	return nil
}

// ImportDefinitions stores the definitions of a YAML definition file under
// its interface name, unless the file is unchanged since the last import.
// Every definition must resolve against the interface's catalog; a file
// with any invalid entry is rejected whole. It returns the number of
// definitions imported.
func ImportDefinitions(ctx context.Context, s store.Store, path string) (int, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat definitions: %w", err)
	}

	key := definitionsStateKeyPrefix + path
	fileMTime := info.ModTime().UTC().Format(time.RFC3339Nano)
	if stored, found := s.GetState(ctx, key); found && stored == fileMTime {
		return 0, nil
	}

	f, err := dcs.LoadDefinitionsFile(path)
	if err != nil {
		return 0, err
	}
	cat, err := aircraft.Catalog(f.Interface)
	if err != nil {
		return 0, err
	}
	if err := validate(f.Functions, cat.Name, func(d netfunc.Definition) error {
		_, err := d.Build(cat)
		return err
	}); err != nil {
		return 0, err
	}

	slog.Info("Importing definitions", "path", path, "interface", cat.Name, "definitions", len(f.Functions))
	if err := s.SaveDefinitions(ctx, cat.Name, path, f.Functions); err != nil {
		return 0, fmt.Errorf("failed to save definitions: %w", err)
	}
	if err := s.SetState(ctx, key, fileMTime); err != nil {
		return 0, fmt.Errorf("failed to record import: %w", err)
	}
	return len(f.Functions), nil
}

func validate(defs []netfunc.Definition, iface string, build func(netfunc.Definition) error) error {
	seen := make(map[int]bool, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return fmt.Errorf("%s: duplicate export id %d", iface, d.ID)
		}
		seen[d.ID] = true
		if err := build(d); err != nil {
			return fmt.Errorf("%s: %w", iface, err)
		}
	}
	return nil
}
