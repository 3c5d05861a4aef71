package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// run executes the CLI with a private config whose store lives in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, "garnet.toml")
	if _, err := os.Stat(cfgPath); err != nil {
		content := "[store]\npath = \"globals.db\"\n\n[log]\nverbosity = -4\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "9223372036854775807", "+", "1"}, "9223372036854775808"},
		{[]string{"calc", "--", "-7", "/", "2"}, "-4"},
		{[]string{"calc", "1", "+", "0.5"}, "1.5"},
		{[]string{"calc", "0x10", "*", "2"}, "32"},
		{[]string{"calc", `"ab"`, "*", "3"}, `"ababab"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, dir, tt.args...)
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalcErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "calc", "1", "/", "0")
	if err == nil || !strings.Contains(err.Error(), "ZeroDivisionError") {
		t.Errorf("err = %v", err)
	}
	_, err = run(t, dir, "calc", "nil", "+", "1")
	if err == nil || !strings.Contains(err.Error(), "NoMethodError") {
		t.Errorf("err = %v", err)
	}
}

func TestCalcYAML(t *testing.T) {
	out, err := run(t, t.TempDir(), "--format", "yaml", "calc", "2", "*", "2.5")
	if err != nil {
		t.Fatal(err)
	}
	var doc calcResult
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if doc.Result != "5.0" || doc.Class != "Float" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestSortCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "sort", "--", "3", "1.5", "2", "-1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "[-1, 1.5, 2, 3]\n") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "quick sort") {
		t.Errorf("default algorithm should be quick: %q", out)
	}

	out, err = run(t, dir, "sort", "--stable", "--reverse", `"b"`, `"c"`, `"a"`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `["c", "b", "a"]`) || !strings.Contains(out, "insertion sort") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, dir, "sort", "1", `"x"`); err == nil {
		t.Error("mixed kinds should fail to sort")
	}
	if _, err := run(t, dir, "sort", "--algorithm", "bogo", "1"); err == nil {
		t.Error("unknown algorithm should fail")
	}
}

func TestInterpCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"interp", "sum: #{1 + 2 * 3}"}, "sum: 7"},
		{[]string{"interp", "#{10 - 2 - 3}"}, "5"},
		{[]string{"interp", "--set", `name="world"`, "hello #{$name}!"}, "hello world!"},
		{[]string{"interp", `nested #{"a#{1 + 1}b"}`}, "nested a2b"},
		{[]string{"interp", "unset [#{$nothing}]"}, "unset []"},
		{[]string{"interp", "brace } and #{:sym}"}, "brace } and sym"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, dir, tt.args...)
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got := strings.TrimSuffix(out, "\n"); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGlobalsPersistAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "globals", "set", "count", "41"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, dir, "globals", "set", "greeting", `"hi #{40 + 2}"`); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "globals", "get", "count")
	if err != nil || strings.TrimSpace(out) != "41" {
		t.Fatalf("get = (%q, %v)", out, err)
	}

	out, err = run(t, dir, "--format", "yaml", "globals", "list")
	if err != nil {
		t.Fatal(err)
	}
	var entries []globalEntry
	if err := yaml.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Name != "$count" || entries[0].Class != "Integer" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Name != "$greeting" || entries[1].Value != `"hi 42"` {
		t.Errorf("entries[1] = %+v", entries[1])
	}

	if _, err := run(t, dir, "globals", "unset", "count"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, dir, "globals", "get", "count"); err == nil {
		t.Error("unset global should be gone")
	}
	if _, err := run(t, dir, "globals", "unset", "count"); err == nil {
		t.Error("unsetting twice should fail")
	}

	if _, err := os.Stat(filepath.Join(dir, "globals.db")); err != nil {
		t.Errorf("store path should resolve next to the config: %v", err)
	}
}

func TestSymbolsCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "--format", "yaml", "symbols", "alpha", "beta", "odd name", "--keep", "alpha", "--wait", "5s")
	if err != nil {
		t.Fatal(err)
	}
	var doc symbolsResult
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if len(doc.Interned) != 3 || doc.Interned[2] != `:"odd name"` {
		t.Errorf("interned = %v", doc.Interned)
	}
	if len(doc.Kept) != 1 || doc.Kept[0] != "alpha" {
		t.Errorf("kept = %v", doc.Kept)
	}
	if len(doc.Reclaimed) != 2 {
		t.Errorf("reclaimed = %v", doc.Reclaimed)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := run(t, t.TempDir(), "--format", "xml", "calc", "1", "+", "1"); err == nil {
		t.Error("unknown format should fail")
	}
}
