package compiler

import (
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	toks, err := lex(`elements["PNT-1"] = f(_('a\'b'), devices.X, -1.5e-3, {0, 1}) -- note`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	var kinds []tokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	want := []tokenKind{
		tokIdent, tokPunct, tokString, tokPunct, tokPunct, tokIdent, tokPunct,
		tokIdent, tokPunct, tokString, tokPunct, tokPunct,
		tokIdent, tokPunct,
		tokPunct, tokNumber, tokPunct,
		tokPunct, tokNumber, tokPunct, tokNumber, tokPunct,
		tokPunct, tokEOF,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if toks[9].text != "a'b" {
		t.Errorf("escaped string = %q", toks[9].text)
	}
	if toks[12].text != "devices.X" {
		t.Errorf("dotted ident = %q", toks[12].text)
	}
	if toks[15].text != "1.5e-3" {
		t.Errorf("number = %q", toks[15].text)
	}
}

func TestLex_Errors(t *testing.T) {
	for _, line := range []string{`f("open`, `f(#)`} {
		if _, err := lex(line); err == nil {
			t.Errorf("lex(%q) succeeded", line)
		}
	}
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantKey string
		wantTag string
		want    []value
	}{
		{
			name:    "TwoPosition",
			line:    `elements["PNT-12"] = default_2_position_tumb(_("Battery, OFF/ON"), devices.ELEC, device_commands.BAT, 12)`,
			wantKey: "PNT-12",
			wantTag: "default_2_position_tumb",
			want: []value{
				{kind: valString, text: "Battery, OFF/ON"},
				{kind: valIdent, text: "devices.ELEC"},
				{kind: valIdent, text: "device_commands.BAT"},
				{kind: valNumber, num: 12},
			},
		},
		{
			name:    "TableBoolNilAndTrailingComma",
			line:    `elements["K"] = default_axis_limited("Knob", devices.A, device_commands.B, 3, -0.5, true, nil, {0.1, 0.9},)`,
			wantKey: "K",
			wantTag: "default_axis_limited",
			want: []value{
				{kind: valString, text: "Knob"},
				{kind: valIdent, text: "devices.A"},
				{kind: valIdent, text: "device_commands.B"},
				{kind: valNumber, num: 3},
				{kind: valNumber, num: -0.5},
				{kind: valBool, flag: true},
				{kind: valNil},
				{kind: valTable, items: []value{{kind: valNumber, num: 0.1}, {kind: valNumber, num: 0.9}}},
			},
		},
		{
			name:    "NumericKey",
			line:    `elements[7] = default_button(_("Test"), devices.A, device_commands.T, 7);`,
			wantKey: "7",
			wantTag: "default_button",
			want: []value{
				{kind: valString, text: "Test"},
				{kind: valIdent, text: "devices.A"},
				{kind: valIdent, text: "device_commands.T"},
				{kind: valNumber, num: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := parseDefinition(tt.line)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if def.key != tt.wantKey || def.tag != tt.wantTag {
				t.Errorf("key/tag = %q/%q, want %q/%q", def.key, def.tag, tt.wantKey, tt.wantTag)
			}
			if !reflect.DeepEqual(def.args, tt.want) {
				t.Errorf("args = %+v\nwant %+v", def.args, tt.want)
			}
		})
	}
}

func TestParseDefinition_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"FieldAssignment", `elements["PNT-1"].sound = {{SOUND_SW1}}`},
		{"NestedCall", `elements["PNT-1"] = default_button(_("A"), devices.A, cmd(1), 1)`},
		{"Unclosed", `elements["PNT-1"] = default_button(_("A"), devices.A`},
		{"Trailing", `elements["PNT-1"] = default_button(_("A")) x`},
		{"NotElements", `other["PNT-1"] = default_button(_("A"))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseDefinition(tt.line); err == nil {
				t.Errorf("parseDefinition(%q) succeeded", tt.line)
			}
		})
	}
}

func TestSplitHint(t *testing.T) {
	tests := []struct {
		hint       string
		wantName   string
		wantLabels []string
	}{
		{"Battery, OFF/ON", "Battery", []string{"OFF", "ON"}},
		{"Posn1/Posn2", "Posn1/Posn2", []string{"Posn1", "Posn2"}},
		{"Radio Volume", "Radio Volume", nil},
		{"Light, Master, DIM / BRT", "Light, Master", []string{"DIM", "BRT"}},
		{"Hover Mode, INOPERATIVE", "Hover Mode, INOPERATIVE", nil},
	}
	for _, tt := range tests {
		name, labels := splitHint(tt.hint)
		if name != tt.wantName || !reflect.DeepEqual(labels, tt.wantLabels) {
			t.Errorf("splitHint(%q) = %q, %v; want %q, %v", tt.hint, name, labels, tt.wantName, tt.wantLabels)
		}
	}
}

func TestLookupRule(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"default_2_position_tumb", "buildTwoPosition"},
		{"default_button_axis", "buildButtonAxis"},
		{"default_button_tumb", "buildButton"},
		{"multiposition_switch_limited", "buildMultiposition"},
		{"springloaded_3_pos_tumb_small", "buildSpringLoaded"},
		{"landing_light_tumb", ""},
	}
	builders := map[string]builder{
		"buildTwoPosition":   buildTwoPosition,
		"buildButtonAxis":    buildButtonAxis,
		"buildButton":        buildButton,
		"buildMultiposition": buildMultiposition,
		"buildSpringLoaded":  buildSpringLoaded,
	}
	for _, tt := range tests {
		b, ok := lookupRule(tt.tag)
		if tt.want == "" {
			if ok {
				t.Errorf("lookupRule(%q) matched", tt.tag)
			}
			continue
		}
		if !ok || reflect.ValueOf(b).Pointer() != reflect.ValueOf(builders[tt.want]).Pointer() {
			t.Errorf("lookupRule(%q) did not select %s", tt.tag, tt.want)
		}
	}
}

func TestTrailingNumber(t *testing.T) {
	if n, ok := trailingNumber("PNT-077"); !ok || n != 77 {
		t.Errorf("trailingNumber = %d, %v", n, ok)
	}
	if _, ok := trailingNumber("PNT-X"); ok {
		t.Error("no trailing digits should not match")
	}
}
