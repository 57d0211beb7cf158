package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildEngineDefaults(t *testing.T) {
	opts := cliOptions{analyzers: "patterns"}

	engine, err := buildEngine(opts, quietLogger())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	if got := engine.Names(); len(got) != 1 || got[0] != "patterns" {
		t.Fatalf("engine names = %v, want [patterns]", got)
	}
}

func TestBuildEngineSkipsUnknownNames(t *testing.T) {
	opts := cliOptions{analyzers: "patterns,nonsense, "}

	engine, err := buildEngine(opts, quietLogger())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	if engine.Count() != 1 {
		t.Fatalf("engine count = %d, want 1", engine.Count())
	}
}

func TestBuildEngineSkipsAnalyzersMissingCredentials(t *testing.T) {
	// llm and inspect require API keys; with none given only patterns
	// survives.
	opts := cliOptions{analyzers: "llm,inspect,patterns"}

	engine, err := buildEngine(opts, quietLogger())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	if got := engine.Names(); len(got) != 1 || got[0] != "patterns" {
		t.Fatalf("engine names = %v, want [patterns]", got)
	}
}

func TestBuildEngineEmptySetIsError(t *testing.T) {
	opts := cliOptions{analyzers: "llm"}

	if _, err := buildEngine(opts, quietLogger()); err == nil {
		t.Fatal("expected error for empty analyzer set")
	}
}

func TestBuildEngineBadRulesFile(t *testing.T) {
	opts := cliOptions{
		analyzers: "patterns",
		rulesPath: filepath.Join(t.TempDir(), "missing.yaml"),
	}

	if _, err := buildEngine(opts, quietLogger()); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func TestBuildEngineCustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rules := `rules:
  - id: custom-check
    pattern: "danger"
    severity: high
    category: custom
    description: "Custom rule"
`
	if err := os.WriteFile(path, []byte(rules), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := cliOptions{analyzers: "patterns", rulesPath: path}

	engine, err := buildEngine(opts, quietLogger())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	if !engine.Has("patterns") {
		t.Fatal("patterns analyzer not registered")
	}
}

func TestResolveConfigPathExplicitWins(t *testing.T) {
	// Explicit paths are returned untouched even when missing, so the
	// loader can report the not-found error for the path the user gave.
	got := resolveConfigPath("/nonexistent/custom.json")
	if got != "/nonexistent/custom.json" {
		t.Fatalf("resolveConfigPath = %q", got)
	}
}

func TestResolveConfigPathParentFallback(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "project")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte(`{"mcpServers":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}

	got := resolveConfigPath(defaultConfigFile)
	if got != filepath.Join("..", defaultConfigFile) {
		t.Fatalf("resolveConfigPath = %q, want parent fallback", got)
	}
}

func TestResolveConfigPathCurrentDirWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte(`{"mcpServers":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if got := resolveConfigPath(defaultConfigFile); got != defaultConfigFile {
		t.Fatalf("resolveConfigPath = %q, want %q", got, defaultConfigFile)
	}
}

func TestPatternsAnalyzerRejectsInvalidRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := patternsAnalyzer(path); err == nil {
		t.Fatal("expected error for empty rule set")
	}
}
