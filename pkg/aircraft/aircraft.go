// Package aircraft lists the interfaces the runtime can attach.
package aircraft

import (
	"fmt"
	"sort"
	"strings"

	"simlink/pkg/aircraft/ah64d"
	"simlink/pkg/aircraft/f16"
	"simlink/pkg/catalog"
	"simlink/pkg/dcs"
	"simlink/pkg/netfunc"
)

type entry struct {
	cat       *catalog.Catalog
	functions func() []netfunc.Function
	generated func() []netfunc.Function
}

var registry = map[string]entry{
	ah64d.Name: {cat: ah64d.Catalog, functions: ah64d.Functions, generated: ah64d.GeneratedFunctions},
	f16.Name:   {cat: f16.Catalog, functions: f16.Functions},
}

// Names returns the registered interface names in order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Catalog returns the device catalog of the named interface.
func Catalog(name string) (*catalog.Catalog, error) {
	e, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return e.cat, nil
}

// New creates the named interface. Names match case-insensitively.
func New(name string, opts ...dcs.Option) (*dcs.Interface, error) {
	e, err := lookup(name)
	if err != nil {
		return nil, err
	}
	base := []dcs.Option{dcs.WithFunctions(e.functions)}
	if e.generated != nil {
		base = append(base, dcs.WithGenerated(e.generated))
	}
	return dcs.New(e.cat.Name, e.cat, append(base, opts...)...), nil
}

func lookup(name string) (entry, error) {
	for n, e := range registry {
		if strings.EqualFold(n, name) {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("unknown aircraft %q (known: %s)", name, strings.Join(Names(), ", "))
}
