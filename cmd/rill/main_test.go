package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type runOutput struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI inside dir with a fresh command tree.
func execute(t *testing.T, dir, stdin string, args ...string) runOutput {
	t.Helper()
	t.Chdir(dir)

	a := &app{}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	a.finish(err)
	return runOutput{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestParseFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "-- numbers\n[1, [2,], 4_000]\n")

	cases := []struct {
		format string
		want   string
	}{
		{"compact", "[1, [2], 4000]\n"},
		{"tree", "[\n    1,\n    [\n        2,\n    ],\n    4000,\n]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			res := execute(t, dir, "", "parse", "--format", tc.format, "prog.rl")
			if res.err != nil {
				t.Fatalf("err = %v, stderr = %s", res.err, res.stderr)
			}
			if res.stdout != tc.want {
				t.Fatalf("stdout = %q, want %q", res.stdout, tc.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[7]")

	res := execute(t, dir, "", "parse", "--format", "json", "prog.rl")
	if res.err != nil {
		t.Fatal(res.err)
	}
	var node struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"children"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &node); err != nil {
		t.Fatalf("invalid JSON %q: %v", res.stdout, err)
	}
	if node.Kind != "list" || len(node.Children) != 1 || node.Children[0].Value != "7" {
		t.Fatalf("node = %+v", node)
	}
}

func TestParseStdin(t *testing.T) {
	res := execute(t, t.TempDir(), "[1, 2,]", "parse", "-")
	if res.err != nil || res.stdout != "[1, 2]\n" {
		t.Fatalf("stdout=%q err=%v", res.stdout, res.err)
	}
}

func TestParseSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.rl", "[1 2]")

	res := execute(t, dir, "", "parse", "bad.rl")
	if !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v", res.err)
	}
	if res.stdout != "" {
		t.Fatalf("failed parse printed a tree: %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "1:1: ERROR SYN2003: expected expression") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestParseUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[]")
	res := execute(t, dir, "", "parse", "--format", "xml", "prog.rl")
	if res.err == nil || !strings.Contains(res.err.Error(), "unknown format: xml") {
		t.Fatalf("err = %v", res.err)
	}
}

func TestCheckPrintsType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[[1], [], [2, 3]]")

	res := execute(t, dir, "", "check", "prog.rl")
	if res.err != nil {
		t.Fatalf("err = %v, stderr = %s", res.err, res.stderr)
	}
	if res.stdout != "[[int]]\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
}

func TestCheckTypeError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[[1], 2]")

	res := execute(t, dir, "", "check", "prog.rl")
	if !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v", res.err)
	}
	if !strings.Contains(res.stderr, "1:7: ERROR SEM3001: type mismatch: expected [int], found int") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestCheckMissingFile(t *testing.T) {
	res := execute(t, t.TempDir(), "", "check", "absent.rl")
	if res.err == nil || errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v", res.err)
	}
}

func TestCheckDirJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/a.rl", "[1]")
	writeFile(t, dir, "src/b.rl", "[1 2]")
	writeFile(t, dir, "src/c.rl", "[[], [[1]]]")

	res := execute(t, dir, "", "check", "--ui", "off", "--format", "json", "--jobs", "2", "src")
	if !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v", res.err)
	}
	var output checkOutputJSON
	if err := json.Unmarshal([]byte(res.stdout), &output); err != nil {
		t.Fatalf("invalid JSON %q: %v", res.stdout, err)
	}
	if output.Errors != 1 || len(output.Files) != 3 {
		t.Fatalf("output = %+v", output)
	}
	if output.Files[0].Type != "[int]" || output.Files[2].Type != "[[[int]]]" {
		t.Fatalf("types = %q, %q", output.Files[0].Type, output.Files[2].Type)
	}
	bad := output.Files[1]
	if bad.Errors != 1 || bad.Diagnostics.Count != 1 || bad.Diagnostics.Diagnostics[0].Code != "SYN2003" {
		t.Fatalf("bad file = %+v", bad)
	}
}

func TestParseDirCompact(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/a.rl", "[1]")
	writeFile(t, dir, "src/b.rl", "[2]")

	res := execute(t, dir, "", "parse", "--ui", "off", "src")
	if res.err != nil {
		t.Fatal(res.err)
	}
	want := "src/a.rl: [1]\nsrc/b.rl: [2]\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestTimings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[1]")

	res := execute(t, dir, "", "check", "--timings", "prog.rl")
	if res.err != nil {
		t.Fatal(res.err)
	}
	for _, want := range []string{"INFO OBS6001: timings (check)", "timings:\n", "  check"} {
		if !strings.Contains(res.stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestManifestEnablesCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rill.toml", "[cache]\nenabled = true\ndir = \".cache\"\n")
	writeFile(t, dir, "prog.rl", "[[1], 2]")

	var runs []checkOutputJSON
	for range 2 {
		res := execute(t, dir, "", "check", "--format", "json", "prog.rl")
		if !errors.Is(res.err, errDiagnostics) {
			t.Fatalf("err = %v", res.err)
		}
		var output checkOutputJSON
		if err := json.Unmarshal([]byte(res.stdout), &output); err != nil {
			t.Fatal(err)
		}
		runs = append(runs, output)
	}
	if runs[0].Files[0].Cached || !runs[1].Files[0].Cached {
		t.Fatalf("cached flags = %v, %v", runs[0].Files[0].Cached, runs[1].Files[0].Cached)
	}
	if runs[1].Files[0].Diagnostics.Diagnostics[0].Message != runs[0].Files[0].Diagnostics.Diagnostics[0].Message {
		t.Fatal("cached diagnostics differ from fresh ones")
	}
	if _, err := os.Stat(filepath.Join(dir, ".cache", "results")); err != nil {
		t.Fatalf("cache dir not created under the manifest root: %v", err)
	}

	res := execute(t, dir, "", "check", "--format", "json", "--clear-cache", "prog.rl")
	var output checkOutputJSON
	if err := json.Unmarshal([]byte(res.stdout), &output); err != nil {
		t.Fatal(err)
	}
	if output.Files[0].Cached {
		t.Fatal("--clear-cache still served a cached result")
	}
}

func TestManifestErrors(t *testing.T) {
	cases := []struct {
		name     string
		manifest string
		want     string
	}{
		{"unknown key", "[diagnostics]\nmaxx = 3\n", "unknown keys: diagnostics.maxx"},
		{"limit too large", "[diagnostics]\nmax = 70000\n", "[diagnostics].max: 70000 is out of range"},
		{"bad color", "[diagnostics]\ncolor = \"sometimes\"\n", "invalid color value"},
		{"not toml", "[diagnostics\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "rill.toml", tc.manifest)
			writeFile(t, dir, "prog.rl", "[]")
			res := execute(t, dir, "", "check", "prog.rl")
			if res.err == nil || !strings.Contains(res.err.Error(), tc.want) || !strings.Contains(res.err.Error(), "PRJ5001") {
				t.Fatalf("err = %v", res.err)
			}
		})
	}
}

func TestZeroDiagnosticLimitRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.rl", "[")

	res := execute(t, dir, "", "check", "--max-diagnostics", "0", "bad.rl")
	if res.err == nil || !strings.Contains(res.err.Error(), "0 is out of range 1..65535") {
		t.Fatalf("err = %v", res.err)
	}

	writeFile(t, dir, "rill.toml", "[diagnostics]\nmax = 0\n")
	res = execute(t, dir, "", "check", "bad.rl")
	if res.err == nil || !strings.Contains(res.err.Error(), "[diagnostics].max: 0 is out of range") {
		t.Fatalf("manifest err = %v", res.err)
	}
}

func TestErrorSurvivesCacheWarningAtLimitOne(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.rl", "[")
	args := []string{"check", "--cache", "--cache-dir", "c", "--max-diagnostics", "1", "bad.rl"}

	if res := execute(t, dir, "", args...); !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("first run err = %v", res.err)
	}
	entries, err := filepath.Glob(filepath.Join(dir, "c", "results", "*.mp"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache entries = %v, %v", entries, err)
	}
	if err := os.WriteFile(entries[0], []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}

	res := execute(t, dir, "", args...)
	if !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v, stderr = %s", res.err, res.stderr)
	}
	if !strings.Contains(res.stderr, "SYN2003") {
		t.Fatalf("the error was dropped for the cache warning: %q", res.stderr)
	}
	if strings.Contains(res.stderr, "IO4002") {
		t.Fatalf("the warning was kept over the error: %q", res.stderr)
	}
}

func TestManifestFoundInParent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rill.toml", "[diagnostics]\nmax = 1\n")
	writeFile(t, dir, "sub/prog.rl", "[1]")

	res := execute(t, filepath.Join(dir, "sub"), "", "check", "--timings", "prog.rl")
	if res.err != nil {
		t.Fatal(res.err)
	}
	// the limit comes from the manifest; timing reports are kept past it
	if !strings.Contains(res.stderr, "OBS6001") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestFlagOverridesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rill.toml", "[diagnostics]\nmax = 70000\n")
	res := execute(t, dir, "", "check", "--max-diagnostics", "5", "-")
	if res.err == nil {
		t.Fatal("an invalid manifest is rejected even when flags override it")
	}

	writeFile(t, dir, "rill.toml", "[diagnostics]\nmax = 3\n[trace]\nlevel = \"phase\"\noutput = \"trace.ndjson\"\n")
	res = execute(t, dir, "[1]", "check", "--trace-level", "off", "--trace", "", "-")
	if res.err != nil {
		t.Fatal(res.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "trace.ndjson")); !os.IsNotExist(err) {
		t.Fatalf("trace written despite flags: %v", err)
	}
}

func TestTraceToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[1]")

	res := execute(t, dir, "", "check", "--trace", "trace.ndjson", "--trace-level", "phase", "prog.rl")
	if res.err != nil {
		t.Fatal(res.err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "trace.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"name":"check"`, `"name":"parse"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("trace missing %s:\n%s", want, data)
		}
	}
}

func TestTraceRingDumpedOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[1 2]")

	res := execute(t, dir, "", "check", "--trace-mode", "ring", "--trace-level", "phase", "prog.rl")
	if !errors.Is(res.err, errDiagnostics) {
		t.Fatalf("err = %v", res.err)
	}
	if !strings.Contains(res.stderr, "trace: most recent events") || !strings.Contains(res.stderr, "parse") {
		t.Fatalf("stderr = %q", res.stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	res := execute(t, t.TempDir(), "", "version", "--format", "json", "--full")
	if res.err != nil {
		t.Fatal(res.err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(res.stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "rill" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestVersionPretty(t *testing.T) {
	res := execute(t, t.TempDir(), "", "version", "--color", "off")
	if res.err != nil || !strings.HasPrefix(res.stdout, "rill 0.1.0-dev: ") {
		t.Fatalf("stdout=%q err=%v", res.stdout, res.err)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error")
	}
	var buf bytes.Buffer
	if uiModeAuto.enabledFor(&buf) || !uiModeOn.enabledFor(&buf) {
		t.Error("auto must be off for non-terminals")
	}
}

func TestProfilesWritten(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prog.rl", "[1]")

	res := execute(t, dir, "", "check", "--cpu-profile", "cpu.pprof", "--mem-profile", "mem.pprof", "prog.rl")
	if res.err != nil {
		t.Fatal(res.err)
	}
	for _, name := range []string{"cpu.pprof", "mem.pprof"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
