package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"simlink/pkg/aircraft/ah64d"
	"simlink/pkg/db"
	"simlink/pkg/dcs"
	"simlink/pkg/netfunc"
	"simlink/pkg/store"
)

func setup(t *testing.T) (*db.DB, *store.SQLiteStore) {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "maint_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d, store.NewSQLiteStore(d)
}

func TestMaintenance(t *testing.T) {
	d, s := setup(t)
	ctx := context.Background()

	defsPath := filepath.Join(t.TempDir(), "ah64d.yaml")
	file := &dcs.DefinitionFile{Interface: ah64d.Name, Functions: dcs.Describe(ah64d.GeneratedFunctions())}
	if err := dcs.SaveDefinitionsFile(defsPath, file); err != nil {
		t.Fatal(err)
	}

	// One compile run past retention, one inside it.
	old := &store.CompileRun{Interface: ah64d.Name, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}
	recent := &store.CompileRun{Interface: ah64d.Name, CreatedAt: time.Now().Add(-24 * time.Hour)}
	for _, r := range []*store.CompileRun{old, recent} {
		if err := s.RecordCompileRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	if err := Run(ctx, s, d, defsPath, 30*24*time.Hour); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	defs, err := s.LoadDefinitions(ctx, ah64d.Name)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != len(file.Functions) {
		t.Errorf("imported %d definitions, want %d", len(defs), len(file.Functions))
	}

	runs, err := s.RecentCompileRuns(ctx, ah64d.Name, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != recent.ID {
		t.Errorf("expected only the recent compile run to survive, got %+v", runs)
	}
}

func TestImportDefinitions_Unchanged(t *testing.T) {
	_, s := setup(t)
	ctx := context.Background()

	defsPath := filepath.Join(t.TempDir(), "ah64d.yaml")
	file := &dcs.DefinitionFile{Interface: ah64d.Name, Functions: dcs.Describe(ah64d.Functions())}
	if err := dcs.SaveDefinitionsFile(defsPath, file); err != nil {
		t.Fatal(err)
	}

	n, err := ImportDefinitions(ctx, s, defsPath)
	if err != nil || n != len(file.Functions) {
		t.Fatalf("first import = %d, %v", n, err)
	}
	n, err = ImportDefinitions(ctx, s, defsPath)
	if err != nil || n != 0 {
		t.Errorf("second import of unchanged file = %d, %v; want 0, nil", n, err)
	}

	// A touched file is imported again.
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(defsPath, later, later); err != nil {
		t.Fatal(err)
	}
	n, err = ImportDefinitions(ctx, s, defsPath)
	if err != nil || n != len(file.Functions) {
		t.Errorf("import after touch = %d, %v", n, err)
	}
}

func TestImportDefinitions_Rejected(t *testing.T) {
	tests := []struct {
		name string
		file *dcs.DefinitionFile
	}{
		{
			name: "UnknownInterface",
			file: &dcs.DefinitionFile{Interface: "Su-27"},
		},
		{
			name: "UnknownDevice",
			file: &dcs.DefinitionFile{Interface: ah64d.Name, Functions: []netfunc.Definition{
				{Kind: netfunc.KindNetworkValue, ID: 1, Name: "X", Device: 99},
			}},
		},
		{
			name: "DuplicateID",
			file: &dcs.DefinitionFile{Interface: ah64d.Name, Functions: []netfunc.Definition{
				{Kind: netfunc.KindIgnored, ID: 7, Name: "A"},
				{Kind: netfunc.KindIgnored, ID: 7, Name: "B"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s := setup(t)
			path := filepath.Join(t.TempDir(), "defs.yaml")
			if err := dcs.SaveDefinitionsFile(path, tt.file); err != nil {
				t.Fatal(err)
			}
			if _, err := ImportDefinitions(context.Background(), s, path); err == nil {
				t.Error("expected import to fail")
			}
			ifaces, _ := s.ListInterfaces(context.Background())
			if len(ifaces) != 0 {
				t.Errorf("nothing should be stored, got %v", ifaces)
			}
		})
	}
}

func TestImportDefinitions_MissingFile(t *testing.T) {
	_, s := setup(t)
	n, err := ImportDefinitions(context.Background(), s, filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil || n != 0 {
		t.Errorf("missing file = %d, %v; want 0, nil", n, err)
	}
}
