// Command clickc compiles a simulator's clickable cockpit definitions into a
// Go source file of network functions for one aircraft interface.
//
//	clickc -interface AH-64D -source clickabledata.lua -output functions_gen.go -package ah64d
//
// Settings missing from the command line come from the compiler section of
// the file named by -config. Compiled definitions can also be written to a
// YAML file (-yaml) or stored in the database (-db) for use at runtime
// without rebuilding.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"simlink/pkg/aircraft"
	"simlink/pkg/compiler"
	"simlink/pkg/config"
	"simlink/pkg/db"
	"simlink/pkg/dcs"
	"simlink/pkg/functable"
	"simlink/pkg/store"
	"simlink/pkg/version"
)

// options holds the resolved command line.
type options struct {
	Source     string
	Output     string // "-" writes to stdout
	Package    string
	Func       string
	Interface  string
	Qualifier  string
	ImportPath string
	YAML       string
	DB         string
}

func main() {
	var (
		opts         options
		configPath   = flag.String("config", "", "Config file supplying defaults for unset flags")
		listTags     = flag.Bool("tags", false, "List the recognized function tags and exit")
		printVersion = flag.Bool("version", false, "Print version and exit")
		quiet        = flag.Bool("q", false, "Only log warnings and errors")
	)
	flag.StringVar(&opts.Source, "source", "", "Clickable definitions to compile")
	flag.StringVar(&opts.Output, "output", "", "Generated Go file; - for stdout")
	flag.StringVar(&opts.Package, "package", "", "Package clause of the generated file")
	flag.StringVar(&opts.Func, "func", "", "Name of the generated function (default GeneratedFunctions)")
	flag.StringVar(&opts.Interface, "interface", "", "Aircraft interface whose catalog resolves references ("+strings.Join(aircraft.Names(), ", ")+")")
	flag.StringVar(&opts.Qualifier, "qualifier", "", "Package qualifier for catalog constants when generating outside the aircraft package")
	flag.StringVar(&opts.ImportPath, "import", "", "Import path of the aircraft package when -qualifier is set")
	flag.StringVar(&opts.YAML, "yaml", "", "Also write the compiled definitions to this YAML file")
	flag.StringVar(&opts.DB, "db", "", "Also store the compiled definitions in this database")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String("clickc"))
		return
	}
	if *listTags {
		for _, t := range compiler.Tags() {
			fmt.Println(t)
		}
		return
	}

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		opts.applyDefaults(cfg)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "clickc: %v\n", err)
		os.Exit(1)
	}
}

// applyDefaults fills unset options from the config file.
func (o *options) applyDefaults(cfg *config.Config) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&o.Source, cfg.Compiler.Source)
	fill(&o.Output, cfg.Compiler.Output)
	fill(&o.Package, cfg.Compiler.Package)
	fill(&o.Interface, cfg.Compiler.Interface)
	fill(&o.Qualifier, cfg.Compiler.Qualifier)
	fill(&o.ImportPath, cfg.Compiler.ImportPath)
	fill(&o.Interface, cfg.Sim.Aircraft)
	fill(&o.DB, cfg.DB.Path)
}

func (o *options) validate() error {
	switch {
	case o.Source == "":
		return fmt.Errorf("-source is required")
	case o.Interface == "":
		return fmt.Errorf("-interface is required")
	case o.Output == "" && o.YAML == "" && o.DB == "":
		return fmt.Errorf("nothing to write: set -output, -yaml or -db")
	case o.Output != "" && o.Package == "":
		return fmt.Errorf("-package is required with -output")
	case o.ImportPath != "" && o.Qualifier == "":
		return fmt.Errorf("-import needs -qualifier")
	}
	return nil
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	if err := o.validate(); err != nil {
		return err
	}

	cat, err := aircraft.Catalog(o.Interface)
	if err != nil {
		return err
	}

	var copts []compiler.Option
	if o.Qualifier != "" {
		copts = append(copts, compiler.WithQualifier(o.Qualifier))
	}
	res, err := compiler.New(cat, copts...).CompileFile(o.Source)
	if err != nil {
		return err
	}
	reportDiagnostics(res.Diagnostics)

	if o.Output != "" {
		if err := writeGoFile(o, res, stdout); err != nil {
			return err
		}
	}

	if o.YAML != "" {
		f := &dcs.DefinitionFile{Interface: cat.Name, Functions: dcs.Describe(res.Functions)}
		if err := dcs.SaveDefinitionsFile(o.YAML, f); err != nil {
			return err
		}
		slog.Info("Wrote definitions", "path", o.YAML, "definitions", len(f.Functions))
	}

	if o.DB != "" {
		if err := storeResult(ctx, o, cat.Name, res); err != nil {
			return err
		}
	}
	return nil
}

func writeGoFile(o options, res *compiler.Result, stdout io.Writer) error {
	var buf bytes.Buffer
	err := compiler.WriteGoFile(&buf, res, compiler.GoFile{
		Package:    o.Package,
		Func:       o.Func,
		Source:     filepath.Base(o.Source),
		ImportPath: o.ImportPath,
	})
	if err != nil {
		return err
	}

	if o.Output == "-" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if dir := filepath.Dir(o.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(o.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write generated file: %w", err)
	}
	slog.Info("Wrote generated functions", "path", o.Output, "functions", len(res.Functions))
	return nil
}

// storeResult saves the definitions and records the run.
func storeResult(ctx context.Context, o options, iface string, res *compiler.Result) error {
	dbConn, err := db.Init(o.DB)
	if err != nil {
		return err
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	if err := st.SaveDefinitions(ctx, iface, o.Source, dcs.Describe(res.Functions)); err != nil {
		return err
	}
	err = st.RecordCompileRun(ctx, &store.CompileRun{
		Interface:   iface,
		Source:      o.Source,
		Elements:    res.Elements,
		Functions:   len(res.Functions),
		Inoperable:  res.Inoperable,
		Skipped:     res.Skipped,
		Diagnostics: res.Diagnostics,
	})
	if err != nil {
		return err
	}
	slog.Info("Stored definitions", "db", o.DB, "interface", iface, "definitions", len(res.Functions))
	return nil
}

// reportDiagnostics logs the rejected elements. The compiler logs its own
// warnings.
func reportDiagnostics(diags []functable.Diagnostic) {
	for _, d := range diags {
		if d.Severity == functable.SeverityError {
			slog.Error(d.Message, "id", d.ID)
		}
	}
}
