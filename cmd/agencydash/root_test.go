package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testDataDir holds the dataset fixtures shared with the loader tests.
var testDataDir = filepath.Join("..", "..", "internal", "dataset", "testdata")

func testData(name string) string {
	return filepath.Join(testDataDir, name)
}

// executeCmd runs the root command with args and an empty configuration
// file, so no .agencydash on the machine leaks into the test.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("zoom: 8\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", configPath))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "agencydash" {
			t.Errorf("expected use 'agencydash', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup(flagVerbose)
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has data flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup(flagData)
		if flag == nil {
			t.Fatal("expected data flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has log format flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup(flagLogFormat)
		if flag == nil {
			t.Fatal("expected log-format flag")
		}
		if flag.DefValue != logFormatText {
			t.Errorf("expected default %q, got %q", logFormatText, flag.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"serve": false, "table": false, "chart": false, "map": false,
			"report": false, "query": false, "browse": false, "init": false,
			"version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}
