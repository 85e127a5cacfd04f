package netfunc

import (
	"fmt"
	"math"
	"strings"
)

// Common element formats.
const (
	FormatBool    = "%1d"
	FormatTenths  = "%0.1f"
	FormatDefault = "%0.3f"
	FormatText    = "%s"
)

// DataElement is one exported value owned by a single Function.
type DataElement struct {
	id     int
	format string
	value  string
	dirty  bool
}

// NewDataElement creates an element with an empty value.
func NewDataElement(id int, format string) *DataElement {
	if format == "" {
		format = FormatDefault
	}
	return &DataElement{id: id, format: format}
}

// ID returns the export ID.
func (e *DataElement) ID() int { return e.id }

// Format returns the printf-style format of the element.
func (e *DataElement) Format() string { return e.format }

// Value returns the current formatted value.
func (e *DataElement) Value() string { return e.value }

// Dirty reports whether the value changed since the last ClearDirty.
func (e *DataElement) Dirty() bool { return e.dirty }

// ClearDirty marks the current value as observed.
func (e *DataElement) ClearDirty() { e.dirty = false }

// IsText reports whether the element carries raw text instead of a number.
func (e *DataElement) IsText() bool {
	return strings.HasSuffix(e.format, "s")
}

func (e *DataElement) set(v string) bool {
	if v == e.value {
		return false
	}
	e.value = v
	e.dirty = true
	return true
}

func (e *DataElement) setFloat(v float64) bool {
	return e.set(FormatValue(e.format, v))
}

// init stores a starting value without marking the element dirty.
func (e *DataElement) init(v string) {
	e.value = v
}

// FormatValue renders v with a printf-style format. Integer verbs round.
func FormatValue(format string, v float64) string {
	switch {
	case strings.HasSuffix(format, "d"):
		return fmt.Sprintf(format, int64(math.Round(v)))
	case strings.HasSuffix(format, "s"):
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf(format, v)
	}
}
