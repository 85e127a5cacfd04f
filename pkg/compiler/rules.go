package compiler

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"simlink/pkg/catalog"
	"simlink/pkg/netfunc"
)

// element is a definition resolved against the catalog.
type element struct {
	line     int
	key      string
	tag      string
	hint     string // Full name as written
	name     string // Name without the label list, station-prefixed
	labels   []string
	arg      int
	device   catalog.DeviceID
	cmds     []catalog.Ref
	cmdNames []string // Catalog names of cmds

	// Arguments after the argument number, by kind.
	nums   []float64
	flags  []bool
	tables [][]float64
}

// topDetentSlack is how far an explicit step may leave the last detent from
// 1.0 and still have it pinned there.
const topDetentSlack = 0.01

// builder constructs the function for one element.
type builder func(e *element) (netfunc.Function, error)

type rule struct {
	tag    string
	prefix bool
	button bool // Builds a push button; may be one half of a rocker
	build  builder
}

// rules maps function tags to builders. Exact tags are tried first, then the
// longest matching prefix.
var rules = []rule{
	{tag: "default_2_position", prefix: true, build: buildTwoPosition},
	{tag: "default_red_cover", build: buildTwoPosition},
	{tag: "default_CB_button", build: buildTwoPosition},
	{tag: "default_guard", build: buildTwoPosition},
	{tag: "circuit_breaker", build: buildTwoPosition},
	{tag: "default_3_position", prefix: true, build: buildThreePosition},
	{tag: "springloaded_3_pos", prefix: true, build: buildSpringLoaded},
	{tag: "multiposition_switch", prefix: true, build: buildMultiposition},
	{tag: "default_axis", prefix: true, build: buildAxis},
	{tag: "default_button", prefix: true, button: true, build: buildButton},
	{tag: "push_button_tumb", button: true, build: buildButton},
	{tag: "default_button_axis", build: buildButtonAxis},
}

func lookupRule(tag string) (builder, bool) {
	r := findRule(tag)
	if r == nil {
		return nil, false
	}
	return r.build, true
}

func findRule(tag string) *rule {
	for i := range rules {
		if !rules[i].prefix && rules[i].tag == tag {
			return &rules[i]
		}
	}
	var best *rule
	for i := range rules {
		r := &rules[i]
		if r.prefix && strings.HasPrefix(tag, r.tag) && (best == nil || len(r.tag) > len(best.tag)) {
			best = r
		}
	}
	return best
}

// buttonTag reports whether tag compiles to a push button.
func buttonTag(tag string) bool {
	r := findRule(tag)
	return r != nil && r.button
}

func (e *element) command(i int) (catalog.Ref, error) {
	if i >= len(e.cmds) {
		return catalog.Ref{}, fmt.Errorf("%s needs %d command references, got %d", e.tag, i+1, len(e.cmds))
	}
	return e.cmds[i], nil
}

func (e *element) inverted() bool {
	for _, f := range e.flags {
		if f {
			return true
		}
	}
	return false
}

// positionLabels returns the declared labels when there is exactly one per
// position, otherwise "Posn 1".."Posn n".
func (e *element) positionLabels(n int) []string {
	if len(e.labels) == n {
		return e.labels
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "Posn " + strconv.Itoa(i+1)
	}
	return out
}

func buildTwoPosition(e *element) (netfunc.Function, error) {
	cmd, err := e.command(0)
	if err != nil {
		return nil, err
	}
	values := []string{"0.0", "1.0"}
	if e.inverted() {
		values = []string{"0.0", "-1.0"}
	}
	labels := e.positionLabels(2)
	return netfunc.NewSwitch(e.arg, e.name, e.device, []netfunc.SwitchPosition{
		{Value: values[0], Label: labels[0], Press: cmd},
		{Value: values[1], Label: labels[1], Press: cmd},
	})
}

func buildThreePosition(e *element) (netfunc.Function, error) {
	cmd, err := e.command(0)
	if err != nil {
		return nil, err
	}
	labels := e.positionLabels(3)
	return netfunc.NewSwitch(e.arg, e.name, e.device, []netfunc.SwitchPosition{
		{Value: "-1.0", Label: labels[0], Press: cmd},
		{Value: "0.0", Label: labels[1], Press: cmd},
		{Value: "1.0", Label: labels[2], Press: cmd},
	})
}

func buildSpringLoaded(e *element) (netfunc.Function, error) {
	down, err := e.command(0)
	if err != nil {
		return nil, err
	}
	up := down
	if len(e.cmds) > 1 {
		up = e.cmds[1]
	}
	return springSwitch(e, down, "-1", up, "1")
}

// springSwitch builds a three position switch that returns to the middle;
// the outer positions press and release their command.
func springSwitch(e *element, down catalog.Ref, downValue string, up catalog.Ref, upValue string) (netfunc.Function, error) {
	labels := e.positionLabels(3)
	return netfunc.NewSwitch(e.arg, e.name, e.device, []netfunc.SwitchPosition{
		{Value: "-1.0", Label: labels[0], Press: down, PressValue: downValue, Release: down},
		{Value: "0.0", Label: labels[1]},
		{Value: "1.0", Label: labels[2], Press: up, PressValue: upValue, Release: up},
	})
}

func buildMultiposition(e *element) (netfunc.Function, error) {
	cmd, err := e.command(0)
	if err != nil {
		return nil, err
	}
	if len(e.nums) == 0 {
		return nil, fmt.Errorf("%s: missing position count", e.tag)
	}
	n := int(e.nums[0])
	if n < 2 {
		return nil, fmt.Errorf("%s: position count %d", e.tag, n)
	}
	// Without an explicit step the detents span 0..1 evenly. The simulator
	// reports the top detent as 1.0, so it must not accumulate rounding.
	value := func(i int) float64 { return float64(i) / float64(n-1) }
	if len(e.nums) > 1 && e.nums[1] > 0 {
		step := e.nums[1]
		value = func(i int) float64 {
			v := float64(i) * step
			if i == n-1 && math.Abs(v-1) < topDetentSlack {
				v = 1
			}
			return v
		}
	}

	labels := e.positionLabels(n)
	positions := make([]netfunc.SwitchPosition, n)
	for i := range positions {
		positions[i] = netfunc.SwitchPosition{
			Value: strconv.FormatFloat(round3(value(i)), 'f', 3, 64),
			Label: labels[i],
			Press: cmd,
		}
	}
	return netfunc.NewSwitch(e.arg, e.name, e.device, positions)
}

func buildAxis(e *element) (netfunc.Function, error) {
	cmd, err := e.command(0)
	if err != nil {
		return nil, err
	}
	step := 0.1
	if len(e.nums) > 1 && e.nums[1] > 0 {
		step = e.nums[1]
	}
	lo, hi := 0.0, 1.0
	if len(e.tables) > 0 && len(e.tables[0]) == 2 && e.tables[0][0] < e.tables[0][1] {
		lo, hi = e.tables[0][0], e.tables[0][1]
	}
	return netfunc.NewAxis(e.arg, e.name, cmd, lo, hi, step, false)
}

func buildButton(e *element) (netfunc.Function, error) {
	cmd, err := e.command(0)
	if err != nil {
		return nil, err
	}
	return netfunc.NewPushButton(e.arg, e.name, cmd), nil
}

func buildButtonAxis(e *element) (netfunc.Function, error) {
	inc, err := e.command(0)
	if err != nil {
		return nil, err
	}
	dec, err := e.command(1)
	if err != nil {
		return nil, err
	}
	return netfunc.NewSplitRotaryEncoder(e.arg, e.name, inc, dec, 0), nil
}

func buildPassthrough(e *element) netfunc.Function {
	return netfunc.NewNetworkValue(e.arg, e.name, e.device, netfunc.FormatDefault)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// splitHint separates a control name from its slash separated position
// labels: "Battery, OFF/ON" yields "Battery" and [OFF ON]. A name without a
// comma is its own label list when it contains a slash. Without any slash
// the whole hint is the name.
func splitHint(hint string) (name string, labels []string) {
	name, list := hint, hint
	if i := strings.LastIndexByte(hint, ','); i >= 0 {
		name, list = strings.TrimSpace(hint[:i]), strings.TrimSpace(hint[i+1:])
	}
	if !strings.Contains(list, "/") {
		return strings.TrimSpace(hint), nil
	}
	for _, l := range strings.Split(list, "/") {
		labels = append(labels, strings.TrimSpace(l))
	}
	return strings.TrimSpace(name), labels
}

// inoperable reports whether a control is marked as not simulated.
func inoperable(hint string) bool {
	h := strings.ToLower(hint)
	return strings.Contains(h, "inoperable") || strings.Contains(h, "inoperative")
}

// Tags returns the recognized function tags; prefix tags end in "*".
func Tags() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.tag
		if r.prefix {
			out[i] += "*"
		}
	}
	sort.Strings(out)
	return out
}
