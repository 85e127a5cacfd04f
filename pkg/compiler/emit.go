package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"

	"simlink/pkg/netfunc"
)

const catalogImport = "simlink/pkg/catalog"

// emit renders the Go expression that reconstructs f.
func (c *Compiler) emit(f netfunc.Function) string {
	switch f := f.(type) {
	case *netfunc.Switch:
		var b strings.Builder
		fmt.Fprintf(&b, "netfunc.MustSwitch(%d, %s, %s, []netfunc.SwitchPosition{", f.ID(), strconv.Quote(f.Name()), c.cat.DeviceExpr(f.Device(), c.qual))
		for i, p := range f.Positions() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.position(p))
		}
		b.WriteString("})")
		return b.String()
	case *netfunc.Axis:
		lo, hi := f.Domain()
		return fmt.Sprintf("netfunc.MustAxis(%d, %s, %s, %s, %s, %s, %t)",
			f.ID(), strconv.Quote(f.Name()), c.cat.RefExpr(f.Ref(), c.qual), num(lo), num(hi), num(f.Step()), f.Inverted())
	case *netfunc.PushButton:
		expr := fmt.Sprintf("netfunc.NewPushButton(%d, %s, %s)", f.ID(), strconv.Quote(f.Name()), c.cat.RefExpr(f.Ref(), c.qual))
		if press, release := f.Values(); press != "1" || release != "0" {
			expr += fmt.Sprintf(".WithValues(%s, %s)", strconv.Quote(press), strconv.Quote(release))
		}
		return expr
	case *netfunc.RotaryEncoder:
		inc, dec := f.Refs()
		if dec.Valid() {
			return fmt.Sprintf("netfunc.NewSplitRotaryEncoder(%d, %s, %s, %s, %s)",
				f.ID(), strconv.Quote(f.Name()), c.cat.RefExpr(inc, c.qual), c.cat.RefExpr(dec, c.qual), num(f.Step()))
		}
		return fmt.Sprintf("netfunc.NewRotaryEncoder(%d, %s, %s, %s)", f.ID(), strconv.Quote(f.Name()), c.cat.RefExpr(inc, c.qual), num(f.Step()))
	case *netfunc.NetworkValue:
		return fmt.Sprintf("netfunc.NewNetworkValue(%d, %s, %s, %s)",
			f.ID(), strconv.Quote(f.Name()), c.cat.DeviceExpr(f.Device(), c.qual), strconv.Quote(f.Element().Format()))
	case *netfunc.ScaledNetworkValue:
		var pts []string
		for _, p := range f.Curve().Points() {
			pts = append(pts, fmt.Sprintf("netfunc.Point{X: %s, Y: %s}", num(p.X), num(p.Y)))
		}
		return fmt.Sprintf("netfunc.MustScaledNetworkValue(%d, %s, %s, %s, netfunc.MustCalibration(%s))",
			f.ID(), strconv.Quote(f.Name()), c.cat.DeviceExpr(f.Device(), c.qual), strconv.Quote(f.Element().Format()), strings.Join(pts, ", "))
	case *netfunc.Ignored:
		return fmt.Sprintf("netfunc.NewIgnored(%d, %s)", f.ID(), strconv.Quote(f.Name()))
	default:
		return fmt.Sprintf("// %s: %T has no generator form", f.Name(), f)
	}
}

func (c *Compiler) position(p netfunc.SwitchPosition) string {
	fields := []string{
		"Value: " + strconv.Quote(p.Value),
		"Label: " + strconv.Quote(p.Label),
	}
	if p.Press.Valid() {
		fields = append(fields, "Press: "+c.cat.RefExpr(p.Press, c.qual))
		if p.PressValue != p.Value {
			fields = append(fields, "PressValue: "+strconv.Quote(p.PressValue))
		}
	}
	if p.Release.Valid() {
		fields = append(fields, "Release: "+c.cat.RefExpr(p.Release, c.qual))
		if p.ReleaseValue != "0" {
			fields = append(fields, "ReleaseValue: "+strconv.Quote(p.ReleaseValue))
		}
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GoFile describes the generated source file.
type GoFile struct {
	Package    string // Package clause
	Func       string // Name of the function returning the table; default GeneratedFunctions
	Source     string // Definition file named in the header
	ImportPath string // Import path of the catalog package when constants are qualified
}

// WriteGoFile renders the generator lines of res as a gofmt-formatted Go
// file declaring one function that returns every compiled function.
func WriteGoFile(w io.Writer, res *Result, gf GoFile) error {
	if gf.Package == "" {
		return fmt.Errorf("generated file needs a package name")
	}
	if gf.Func == "" {
		gf.Func = "GeneratedFunctions"
	}

	var body bytes.Buffer
	for _, line := range res.Source {
		if strings.HasPrefix(line, "//") {
			fmt.Fprintf(&body, "\t\t%s\n", line)
			continue
		}
		fmt.Fprintf(&body, "\t\t%s,\n", line)
	}

	imports := []string{strconv.Quote("simlink/pkg/netfunc")}
	if bytes.Contains(body.Bytes(), []byte("catalog.")) {
		imports = append([]string{strconv.Quote(catalogImport)}, imports...)
	}
	if gf.ImportPath != "" {
		imports = append(imports, "", strconv.Quote(gf.ImportPath))
	}

	var src bytes.Buffer
	fmt.Fprintf(&src, "// Code generated by clickc from %s. DO NOT EDIT.\n\n", gf.Source)
	fmt.Fprintf(&src, "package %s\n\n", gf.Package)
	fmt.Fprintf(&src, "import (\n\t%s\n)\n\n", strings.Join(imports, "\n\t"))
	fmt.Fprintf(&src, "// %s returns the functions compiled from the clickable cockpit\n// definitions.\n", gf.Func)
	fmt.Fprintf(&src, "func %s() []netfunc.Function {\n\treturn []netfunc.Function{\n", gf.Func)
	src.Write(body.Bytes())
	src.WriteString("\t}\n}\n")

	out, err := format.Source(src.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	_, err = w.Write(out)
	return err
}
