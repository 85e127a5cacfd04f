// Package compiler derives network functions from a simulator's clickable
// cockpit definitions.
//
// The source is scanned line by line. A comment directly above element lines
// names the device section; each element line is classified by its function
// tag and becomes one registered function plus one line of Go source that
// reproduces it.
package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"simlink/pkg/catalog"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
)

// Result is the output of one compilation.
type Result struct {
	Table       *functable.Table
	Functions   []netfunc.Function
	Source      []string // One generator line per function, plus comments
	Diagnostics []functable.Diagnostic
	Elements    int // Element lines parsed
	Inoperable  int // Elements skipped as not simulated
	Skipped     int // Elements in unresolved sections or with unresolved references
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithQualifier qualifies catalog constants in generated source, for output
// placed outside the aircraft package.
func WithQualifier(q string) Option {
	return func(c *Compiler) { c.qual = q }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// Compiler turns clickable definitions into functions for one catalog.
type Compiler struct {
	cat    *catalog.Catalog
	qual   string
	logger *slog.Logger
}

// New creates a compiler for cat.
func New(cat *catalog.Catalog, opts ...Option) *Compiler {
	c := &Compiler{
		cat:    cat,
		logger: slog.Default().With("component", "compiler"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CompileFile compiles the definitions in path.
func (c *Compiler) CompileFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definitions: %w", err)
	}
	defer f.Close()
	return c.Compile(f)
}

// section is the device context of consecutive element lines.
type section struct {
	heading string
	device  catalog.DeviceID
	skip    bool
}

// run holds the state of one compilation.
type run struct {
	*Compiler
	res     *Result
	pending map[int]*rockerHalf
}

// Compile reads the whole source and compiles it. Only read errors are
// returned; problems with individual elements become diagnostics.
func (c *Compiler) Compile(r io.Reader) (*Result, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	rn := &run{
		Compiler: c,
		res:      &Result{Table: functable.New(functable.WithLogger(c.logger))},
		pending:  make(map[int]*rockerHalf),
	}

	var sec *section
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if heading, ok := headingText(line); ok {
			if elementFollows(lines, i+1) {
				sec = rn.openSection(heading, i+1)
			}
			continue
		}
		if !strings.HasPrefix(line, "elements[") {
			continue
		}

		def, err := parseDefinition(line)
		if err != nil {
			c.logger.Debug("Ignoring line outside element grammar", "line", i+1, "error", err)
			continue
		}
		rn.res.Elements++
		if sec != nil && sec.skip {
			rn.res.Skipped++
			continue
		}
		rn.compile(def, i+1, sec)
	}
	rn.flushRockers()

	c.logger.Info("Compiled clickable data",
		"elements", rn.res.Elements,
		"functions", len(rn.res.Functions),
		"inoperable", rn.res.Inoperable,
		"skipped", rn.res.Skipped,
		"diagnostics", len(rn.res.Diagnostics))
	return rn.res, nil
}

func headingText(line string) (string, bool) {
	if !strings.HasPrefix(line, "--") || strings.HasPrefix(line, "--[[") {
		return "", false
	}
	text := strings.TrimSpace(strings.TrimLeft(line, "-"))
	return text, text != ""
}

// elementFollows reports whether the next non-blank line is an element line.
func elementFollows(lines []string, from int) bool {
	for _, l := range lines[from:] {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		return strings.HasPrefix(l, "elements[")
	}
	return false
}

func (rn *run) openSection(heading string, line int) *section {
	dev, err := rn.cat.DeviceByName(heading)
	if err != nil {
		rn.warn(0, fmt.Sprintf("line %d: section %q skipped: %v", line, heading, err))
		return &section{heading: heading, skip: true}
	}
	return &section{heading: heading, device: dev.ID}
}

func (rn *run) compile(def *definition, line int, sec *section) {
	e, err := rn.resolve(def, line, sec)
	if err != nil {
		rn.res.Skipped++
		rn.diag(functable.SeverityError, e.arg, fmt.Sprintf("line %d: %s: %v", line, def.key, err))
		return
	}

	if inoperable(e.hint) {
		rn.res.Inoperable++
		rn.res.Source = append(rn.res.Source, fmt.Sprintf("// %d %s: %q is inoperable", e.arg, e.tag, e.hint))
		return
	}

	if half, ok := rockerHalfOf(e); ok {
		rn.rocker(half)
		return
	}

	build, ok := lookupRule(e.tag)
	if !ok {
		rn.logger.Debug("Unknown function tag, exporting raw value", "tag", e.tag, "arg", e.arg, "line", line)
		rn.diag(functable.SeverityInfo, e.arg, fmt.Sprintf("line %d: unknown tag %s, registered as value", line, e.tag))
		rn.add(buildPassthrough(e))
		return
	}
	f, err := build(e)
	if err != nil {
		rn.res.Skipped++
		rn.diag(functable.SeverityError, e.arg, fmt.Sprintf("line %d: %v", line, err))
		return
	}
	rn.add(f)
}

// resolve binds an element's references against the catalog. The returned
// element carries the argument number even on error when it is known.
func (rn *run) resolve(def *definition, line int, sec *section) (*element, error) {
	e := &element{line: line, key: def.key, tag: def.tag}

	args := def.args
	if len(args) > 0 && args[0].kind == valString {
		e.hint = args[0].text
		args = args[1:]
	}

	var devName string
	var cmdNames []string
	rest := args
	for len(rest) > 0 && rest[0].kind == valIdent {
		id := rest[0].text
		if strings.HasPrefix(id, "devices.") && devName == "" {
			devName = symbol(id)
		} else {
			cmdNames = append(cmdNames, symbol(id))
		}
		rest = rest[1:]
	}

	argSeen := false
	for _, v := range rest {
		switch v.kind {
		case valNumber:
			if !argSeen {
				e.arg, argSeen = int(v.num), true
				continue
			}
			e.nums = append(e.nums, v.num)
		case valBool:
			e.flags = append(e.flags, v.flag)
		case valTable:
			var nums []float64
			for _, item := range v.items {
				if item.kind == valNumber {
					nums = append(nums, item.num)
				}
			}
			e.tables = append(e.tables, nums)
		}
	}
	if !argSeen {
		if n, ok := trailingNumber(def.key); ok {
			e.arg, argSeen = n, true
		}
	}
	if !argSeen || e.arg <= 0 {
		return e, errors.New("no argument number")
	}

	switch {
	case devName != "":
		dev, err := rn.cat.DeviceByName(devName)
		if err != nil {
			if sec == nil {
				return e, err
			}
			e.device = sec.device
		} else {
			e.device = dev.ID
		}
	case sec != nil:
		e.device = sec.device
	default:
		return e, fmt.Errorf("%w: no device reference", catalog.ErrUnknownDevice)
	}

	for _, name := range cmdNames {
		cmd, err := rn.cat.Command(e.device, name)
		if err != nil {
			return e, err
		}
		e.cmds = append(e.cmds, catalog.Ref{Device: e.device, Command: cmd.ID})
		e.cmdNames = append(e.cmdNames, cmd.Name)
	}

	e.name, e.labels = splitHint(e.hint)
	if e.name == "" {
		e.name = def.key
	}
	if st := rn.cat.Station(e.arg); st != catalog.StationNone {
		e.name = st.String() + " " + e.name
	}
	return e, nil
}

func trailingNumber(s string) (int, bool) {
	end := len(s)
	start := end
	for start > 0 && unicode.IsDigit(rune(s[start-1])) {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(s[start:end])
	return n, err == nil
}

func (rn *run) add(f netfunc.Function) {
	if err := rn.res.Table.Register(f); err != nil {
		rn.res.Skipped++
		rn.warn(0, err.Error())
		return
	}
	rn.res.Functions = append(rn.res.Functions, f)
	rn.res.Source = append(rn.res.Source, rn.emit(f))
}

func (rn *run) diag(sev functable.Severity, id int, msg string) {
	rn.res.Diagnostics = append(rn.res.Diagnostics, functable.Diagnostic{Severity: sev, ID: id, Message: msg})
}

func (rn *run) warn(id int, msg string) {
	rn.logger.Warn(msg, "id", id)
	rn.diag(functable.SeverityWarning, id, msg)
}

// rockerHalf is one line of a rocker switch described as two buttons.
type rockerHalf struct {
	elem     *element
	positive bool
}

// rockerHalfOf reports whether e is a button bound to one side of a
// rocker. Other tags on _positive/_negative commands compile normally.
func rockerHalfOf(e *element) (*rockerHalf, bool) {
	if len(e.cmdNames) != 1 || !buttonTag(e.tag) {
		return nil, false
	}
	lower := strings.ToLower(e.cmdNames[0])
	switch {
	case strings.HasSuffix(lower, "_positive"):
		return &rockerHalf{elem: e, positive: true}, true
	case strings.HasSuffix(lower, "_negative"):
		return &rockerHalf{elem: e}, true
	}
	return nil, false
}

// rocker buffers a half until its partner with the same argument arrives,
// then registers the merged three position switch.
func (rn *run) rocker(h *rockerHalf) {
	arg := h.elem.arg
	other, ok := rn.pending[arg]
	if !ok {
		rn.pending[arg] = h
		return
	}
	if other.positive == h.positive {
		rn.warn(arg, fmt.Sprintf("line %d: rocker half repeats line %d, keeping the later one", h.elem.line, other.elem.line))
		rn.pending[arg] = h
		return
	}
	delete(rn.pending, arg)

	pos, neg := h, other
	if !h.positive {
		pos, neg = other, h
	}
	f, err := springSwitch(neg.elem, neg.elem.cmds[0], "1", pos.elem.cmds[0], "1")
	if err != nil {
		rn.res.Skipped++
		rn.diag(functable.SeverityError, arg, fmt.Sprintf("line %d: %v", h.elem.line, err))
		return
	}
	rn.add(f)
}

// flushRockers discards halves whose partner never arrived.
func (rn *run) flushRockers() {
	args := make([]int, 0, len(rn.pending))
	for arg := range rn.pending {
		args = append(args, arg)
	}
	sort.Ints(args)
	for _, arg := range args {
		h := rn.pending[arg]
		rn.res.Skipped++
		rn.warn(arg, fmt.Sprintf("line %d: unmatched rocker half %q discarded", h.elem.line, h.elem.hint))
	}
	rn.pending = make(map[int]*rockerHalf)
}
