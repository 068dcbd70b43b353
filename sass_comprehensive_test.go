package sass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Test the error types
func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ParseError",
			err: &ParseError{
				Message: "unexpected token",
				File:    "test.scss",
				Line:    10,
				Column:  5,
				Context: "invalid syntax here",
			},
			want: "unexpected token at test.scss:10:5\ninvalid syntax here",
		},
		{
			name: "ImportCycleError",
			err:  &ImportCycleError{Chain: []string{"a.scss", "b.scss", "a.scss"}},
			want: "import cycle: a.scss -> b.scss -> a.scss",
		},
		{
			name: "ImportNotFoundError",
			err:  &ImportNotFoundError{Path: "theme"},
			want: `import not found: "theme"`,
		},
		{
			name: "NameError",
			err:  &NameError{Kind: "variable", Name: "$accent", Line: 3, Col: 7},
			want: "undefined variable $accent at 3:7",
		},
		{
			name: "ArityError",
			err:  &ArityError{Mixin: "pad", Expected: 2, Got: 1},
			want: "mixin pad expects 2 argument(s), got 1",
		},
		{
			name: "UnitMismatchError",
			err:  &UnitMismatchError{Left: "px", Right: "s"},
			want: `incompatible units "px" and "s"`,
		},
		{
			name: "EvalError",
			err: &EvalError{
				Message: "lighten",
				Cause:   fmt.Errorf("amount must be a percentage"),
			},
			want: "lighten: amount must be a percentage",
		},
		{
			name: "MultiError",
			err: &MultiError{
				Errors: []error{
					fmt.Errorf("error 1"),
					fmt.Errorf("error 2"),
				},
			},
			want: "2 errors occurred:\n  1. error 1\n  2. error 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Test the thread-safe function registry
func TestFunctionRegistry(t *testing.T) {
	reg := NewFunctionRegistry()

	err := reg.Register("testFunc", func(args ...Value) (Value, error) {
		return Str{Val: "test"}, nil
	})
	if err != nil {
		t.Fatalf("Failed to register function: %v", err)
	}

	fn, ok := reg.Lookup("testFunc")
	if !ok {
		t.Fatal("Function not found")
	}
	result, err := fn()
	if err != nil {
		t.Fatalf("Function execution failed: %v", err)
	}
	if result.(Str).Val != "test" {
		t.Errorf("Expected 'test', got %v", result)
	}

	// Case insensitive lookup
	if _, ok := reg.Lookup("TESTFUNC"); !ok {
		t.Fatal("Case insensitive lookup failed")
	}

	// Duplicate registration
	err = reg.Register("testFunc", func(args ...Value) (Value, error) {
		return Str{Val: "duplicate"}, nil
	})
	if err == nil {
		t.Error("Expected error for duplicate registration")
	}

	// Invalid registrations
	if err := reg.Register("", nil); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := reg.Register("nilFunc", nil); err == nil {
		t.Error("Expected error for nil function")
	}

	if len(reg.List()) != 1 {
		t.Errorf("expected one registered function, got %v", reg.List())
	}
	reg.Clear()
	if len(reg.List()) != 0 {
		t.Error("Clear should remove all functions")
	}
}

func TestUnitConversion(t *testing.T) {
	tests := []struct {
		val      float64
		from, to string
		want     float64
		ok       bool
	}{
		{1, "in", "px", 96, true},
		{96, "px", "in", 1, true},
		{72, "pt", "in", 1, true},
		{1, "pc", "px", 16, true},
		{2.54, "cm", "in", 1, true},
		{25.4, "mm", "in", 1, true},
		{10, "px", "px", 10, true},
		{1, "px", "s", 0, false},
		{1, "em", "px", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			got, ok := convertUnit(tt.val, tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("convertUnit(%v, %q, %q) ok = %v, want %v", tt.val, tt.from, tt.to, ok, tt.ok)
			}
			if ok && (got < tt.want-1e-9 || got > tt.want+1e-9) {
				t.Errorf("convertUnit(%v, %q, %q) = %v, want %v", tt.val, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers equal", Number{Val: 1, Unit: "px"}, Number{Val: 1, Unit: "px"}, true},
		{"numbers converted", Number{Val: 1, Unit: "in"}, Number{Val: 96, Unit: "px"}, true},
		{"numbers incompatible units", Number{Val: 1, Unit: "px"}, Number{Val: 1, Unit: "s"}, false},
		{"string vs number", Str{Val: "1"}, Number{Val: 1}, false},
		{"quoted vs bare string", Str{Val: "auto"}, Literal("auto"), true},
		{"bools", Bool(true), Bool(true), true},
		{"colors", Color{R: 1, G: 2, B: 3, A: 1}, Color{R: 1, G: 2, B: 3, A: 1}, true},
		{"color vs string", Color{R: 1, A: 1}, Str{Val: "#010000"}, false},
		{
			"lists",
			List{Items: []Value{Number{Val: 1, Unit: "px"}}, Sep: " "},
			List{Items: []Value{Number{Val: 1, Unit: "px"}}, Sep: " "},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("valueEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValueRendering(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer number", Number{Val: 30, Unit: "px"}, "30px"},
		{"fractional number", Number{Val: 1.5}, "1.5"},
		{"trailing zeros dropped", Number{Val: 2.50, Unit: "em"}, "2.5em"},
		{"quoted string", Str{Val: "a b", Quoted: true}, `"a b"`},
		{"bare string", Str{Val: "auto"}, "auto"},
		{"color keeps source text", Color{R: 0xab, G: 0xcd, B: 0xef, A: 1, text: "#AbCdEf"}, "#AbCdEf"},
		{"computed color", Color{R: 255, A: 1}, "#ff0000"},
		{"translucent color", Color{G: 128, A: 0.25}, "rgba(0, 128, 0, 0.25)"},
		{"space list", List{Items: []Value{Number{Val: 1, Unit: "px"}, Literal("solid")}, Sep: " "}, "1px solid"},
		{"comma list", List{Items: []Value{Literal("Arial"), Literal("sans-serif")}, Sep: ", "}, "Arial, sans-serif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeVariables(t *testing.T) {
	type Theme struct {
		Primary  string    `json:"primary"`
		BaseSize string    `json:"base-size"`
		Ratio    float64   `json:"ratio"`
		Columns  int       `json:"columns"`
		Family   string    `json:"family"`
		Debug    bool      `json:"debug"`
		Pad      []string  `json:"pad"`
		Updated  time.Time `json:"updated"`
	}

	src := `$primary: #336699;
$base-size: 14px;
$ratio: 1.5;
$columns: 12;
$family: "Inter";
$debug: true;
$pad: 1px 2px;
$updated: "2024-03-01";
`
	var theme Theme
	if err := DecodeVariables(src, nil, &theme); err != nil {
		t.Fatalf("DecodeVariables failed: %v", err)
	}
	if theme.Primary != "#336699" {
		t.Errorf("Primary = %q", theme.Primary)
	}
	if theme.BaseSize != "14px" {
		t.Errorf("BaseSize = %q", theme.BaseSize)
	}
	if theme.Ratio != 1.5 {
		t.Errorf("Ratio = %v", theme.Ratio)
	}
	if theme.Columns != 12 {
		t.Errorf("Columns = %v", theme.Columns)
	}
	if theme.Family != "Inter" {
		t.Errorf("Family = %q", theme.Family)
	}
	if !theme.Debug {
		t.Error("Debug should be true")
	}
	if len(theme.Pad) != 2 || theme.Pad[0] != "1px" || theme.Pad[1] != "2px" {
		t.Errorf("Pad = %v", theme.Pad)
	}
	if theme.Updated.Year() != 2024 || theme.Updated.Month() != time.March {
		t.Errorf("Updated = %v", theme.Updated)
	}

	// decoding requires a pointer
	if err := DecodeVariables(src, nil, theme); err == nil {
		t.Error("expected error for non-pointer destination")
	}
}

func TestDecodeVariablesIntoMap(t *testing.T) {
	var vars map[string]any
	if err := DecodeVariables(`$a: 2; $b: "x";`, nil, &vars); err != nil {
		t.Fatalf("DecodeVariables failed: %v", err)
	}
	if vars["a"] != 2.0 {
		t.Errorf("a = %v", vars["a"])
	}
	if vars["b"] != "x" {
		t.Errorf("b = %v", vars["b"])
	}
}

func TestExportJSON(t *testing.T) {
	src := `$w: 10px;
.a {
  width: $w;
  .b { height: $w * 2; }
}
.c { @extend .a; color: red; }`

	data, err := ExportJSON(src, nil)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	var rules []RuleJSON
	if err := json.Unmarshal(data, &rules); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d: %s", len(rules), data)
	}
	if rules[0].Selectors[0] != ".a" || rules[0].Selectors[1] != ".c" {
		t.Errorf("extend should widen exported selectors: %v", rules[0].Selectors)
	}
	if rules[0].Declarations[0].Property != "width" || rules[0].Declarations[0].Value != "10px" {
		t.Errorf("unexpected first declaration: %+v", rules[0].Declarations[0])
	}
	if rules[1].Selectors[0] != ".a .b" {
		t.Errorf("nested selector not flattened in export: %v", rules[1].Selectors)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, src, nil); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("WriteJSON should end with a newline")
	}
}

func TestCompileFileWithPartials(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"_vars.scss": `$accent: #ff0000;`,
		"main.scss": `@import "vars";
.a { color: $accent; }`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := CompileFile(filepath.Join(dir, "main.scss"), nil)
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
	want := ".a {\n  color: #ff0000;\n}\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFileLoaderPrefersPartial(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "_theme.scss"), []byte(`$c: green;`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "theme.scss"), []byte(`$c: red;`), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := FileLoader(dir)
	src, ok := loader("theme")
	if !ok {
		t.Fatal("loader found nothing")
	}
	if !strings.Contains(src, "green") {
		t.Errorf("underscore partial should win, got %q", src)
	}
}

func TestConcurrentCompiler(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 6; i++ {
		name := filepath.Join(dir, fmt.Sprintf("sheet%d.scss", i))
		src := fmt.Sprintf("$w: %dpx;\n.s%d { width: $w * 2; }", i+1, i)
		if err := os.WriteFile(name, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, name)
	}

	cc := NewConcurrentCompiler(3)
	results, err := cc.CompileFiles(context.Background(), files, nil)
	if err != nil {
		t.Fatalf("CompileFiles failed: %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for i, res := range results {
		if res.Filename != files[i] {
			t.Errorf("result %d out of order: %s", i, res.Filename)
		}
		if res.Err != nil {
			t.Errorf("%s: %v", res.Filename, res.Err)
			continue
		}
		want := fmt.Sprintf("width: %dpx;", (i+1)*2)
		if !strings.Contains(res.CSS, want) {
			t.Errorf("%s: missing %q in output:\n%s", res.Filename, want, res.CSS)
		}
	}
}

func TestConcurrentCompilerAggregatesErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.scss")
	bad := filepath.Join(dir, "bad.scss")
	if err := os.WriteFile(good, []byte(`.a { color: red; }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`.a { width: $missing; }`), 0o644); err != nil {
		t.Fatal(err)
	}

	cc := NewConcurrentCompiler(0)
	if _, err := cc.CompileAll(context.Background(), []string{good, bad}, nil); err == nil {
		t.Fatal("expected aggregated error")
	}

	out, err := cc.CompileAll(context.Background(), []string{good}, nil)
	if err != nil {
		t.Fatalf("CompileAll failed: %v", err)
	}
	if !strings.Contains(out[good], "color: red;") {
		t.Errorf("unexpected output: %v", out)
	}
}

func TestConcurrentCompilerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cc := NewConcurrentCompiler(2)
	if _, err := cc.CompileFiles(ctx, []string{"a.scss", "b.scss"}, nil); err == nil {
		t.Error("expected context error after cancellation")
	}
}

func TestCompileFileMissing(t *testing.T) {
	if _, err := CompileFile(filepath.Join(t.TempDir(), "absent.scss"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
