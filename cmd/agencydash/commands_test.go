package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/view"
)

// TestTableCmd tests the table command.
func TestTableCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints every agency", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "table", "-d", testData("agencies.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"Immo Lion Waterloo", "Dijle Residentie", "Sablon Estates"} {
			if !strings.Contains(out, name) {
				t.Errorf("expected %q in output", name)
			}
		}
		if !strings.Contains(out, "9 of 9 agencies shown") {
			t.Errorf("expected status line, got %q", out)
		}
	})

	t.Run("search is accent-insensitive", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "table", "-d", testData("agencies.csv"), "-q", "CHAUSSEE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `2 of 9 agencies shown for "CHAUSSEE"`) {
			t.Errorf("expected 2 matches, got %q", out)
		}
	})

	t.Run("json output sorted by profit", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "table", "-d", testData("agencies.csv"), "--sort", "profit", "--desc", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var doc struct {
			Agencies []struct {
				Name string `json:"name"`
			} `json:"agencies"`
			Summary struct {
				Records int `json:"records"`
				Losses  int `json:"losses"`
			} `json:"summary"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if len(doc.Agencies) != 9 {
			t.Fatalf("expected 9 agencies, got %d", len(doc.Agencies))
		}
		if doc.Agencies[0].Name != "Capitale Patrimoine" {
			t.Errorf("expected Capitale Patrimoine first, got %q", doc.Agencies[0].Name)
		}
		if doc.Summary.Losses != 2 {
			t.Errorf("expected 2 losses, got %d", doc.Summary.Losses)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()
		outputPath := filepath.Join(t.TempDir(), "out", "agencies.md")
		_, errOut, err := executeCmd(t, "table", "-d", testData("agencies.csv"), "-m", "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# Belgian Real Estate Agencies") {
			t.Error("expected Markdown title")
		}
		if !strings.Contains(errOut, "Report written to: "+outputPath) {
			t.Errorf("expected confirmation on stderr, got %q", errOut)
		}
	})

	t.Run("json and markdown are exclusive", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCmd(t, "table", "-d", testData("agencies.csv"), "-j", "-m")
		if err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("unknown sort column", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "table", "-d", testData("agencies.csv"), "--sort", "website")
		if !errors.Is(err, database.ErrUnknownSortColumn) {
			t.Errorf("expected ErrUnknownSortColumn, got %v", err)
		}
		if out != "" {
			t.Errorf("expected no output, got %q", out)
		}
	})

	t.Run("missing dataset prints nothing", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "table", "-d", testData("nope.csv"))
		if err == nil {
			t.Fatal("expected error for missing dataset")
		}
		if out != "" {
			t.Errorf("expected no partial output, got %q", out)
		}
	})
}

// TestChartFormat tests choosing the chart image format.
func TestChartFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		output  string
		want    string
		wantErr bool
	}{
		{name: "default", want: chartFormatSVG},
		{name: "png extension", output: "profit.PNG", want: chartFormatPNG},
		{name: "svg extension", output: "profit.svg", want: chartFormatSVG},
		{name: "flag wins over extension", format: "svg", output: "profit.png", want: chartFormatSVG},
		{name: "upper case flag", format: "PNG", want: chartFormatPNG},
		{name: "unknown format", format: "gif", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := chartFormat(tt.format, tt.output)
			if tt.wantErr {
				if !errors.Is(err, errUnknownChartFormat) {
					t.Errorf("expected errUnknownChartFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestChartCmd tests the chart command.
func TestChartCmd(t *testing.T) {
	t.Parallel()

	t.Run("svg to stdout", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "chart", "-d", testData("agencies.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "<svg") {
			t.Error("expected SVG output")
		}
	})

	t.Run("png to file", func(t *testing.T) {
		t.Parallel()
		outputPath := filepath.Join(t.TempDir(), "profit.png")
		_, _, err := executeCmd(t, "chart", "-d", testData("agencies.csv"), "-o", outputPath, "--width", "400", "--height", "300")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read chart: %v", err)
		}
		if !bytes.HasPrefix(content, []byte("\x89PNG")) {
			t.Error("expected PNG signature")
		}
	})

	t.Run("chart size out of range", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCmd(t, "chart", "-d", testData("agencies.csv"), "--width", "50")
		if !errors.Is(err, config.ErrInvalidChartSize) {
			t.Errorf("expected ErrInvalidChartSize, got %v", err)
		}
	})
}

// TestMapCmd tests the map command.
func TestMapCmd(t *testing.T) {
	t.Parallel()

	t.Run("records without coordinates are reported", func(t *testing.T) {
		t.Parallel()
		out, errOut, err := executeCmd(t, "map", "-d", testData("missing_coordinates.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var fc struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal([]byte(out), &fc); err != nil {
			t.Fatalf("expected GeoJSON, got %v", err)
		}
		// Reference point, one marker and one connector.
		if len(fc.Features) != 3 {
			t.Errorf("expected 3 features, got %d", len(fc.Features))
		}
		if !strings.Contains(errOut, "1 of 3 agencies on the map") {
			t.Errorf("expected coverage line, got %q", errOut)
		}
		if !strings.Contains(errOut, "Kempen Makelaars (line 3)") {
			t.Errorf("expected excluded agency, got %q", errOut)
		}
	})

	t.Run("writes shapefiles", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "shp")
		_, _, err := executeCmd(t, "map", "-d", testData("agencies.csv"), "-o", filepath.Join(dir, "map.geojson"), "--shapefile-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"map.geojson", view.MarkersShapefile, view.ConnectorsShapefile} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("expected %s, got %v", name, err)
			}
		}
	})
}

// TestReportCmd tests the report command.
func TestReportCmd(t *testing.T) {
	t.Parallel()

	t.Run("summarizes several files", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "report", testData("agencies.csv"), testData("missing_coordinates.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(out, "Dataset:") != 2 {
			t.Errorf("expected 2 summaries, got %q", out)
		}
		if !strings.Contains(out, "Agencies:  9 (2 loss-making)") {
			t.Errorf("expected first summary, got %q", out)
		}
	})

	t.Run("a failed file does not stop the others", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "report", testData("nope.csv"), testData("agencies.csv"))
		if !errors.Is(err, errRenderFailed) {
			t.Errorf("expected errRenderFailed, got %v", err)
		}
		if !strings.Contains(out, "ERROR") {
			t.Error("expected the failed dataset to be reported")
		}
		if !strings.Contains(out, "Agencies:  9") {
			t.Error("expected the good dataset to be reported")
		}
	})

	t.Run("json writes one document per line", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "report", "-j", testData("agencies.csv"), testData("missing_coordinates.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		scanner := bufio.NewScanner(strings.NewReader(out))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lines := 0
		for scanner.Scan() {
			var s struct {
				Records int `json:"records"`
			}
			if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
				t.Fatalf("line %d: expected JSON, got %v", lines+1, err)
			}
			lines++
		}
		if lines != 2 {
			t.Errorf("expected 2 lines, got %d", lines)
		}
	})

	t.Run("defaults to the configured dataset", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "report", "--full", "-m", "-d", testData("agencies.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "## Agencies") {
			t.Error("expected the full agency table")
		}
	})
}

// TestQueryCmd tests the query command.
func TestQueryCmd(t *testing.T) {
	t.Parallel()

	t.Run("select losses", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "query", "-d", testData("agencies.csv"),
			"SELECT name FROM agencies WHERE profit < 0 ORDER BY name")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Dijle Residentie") || !strings.Contains(out, "Uccle Habitat") {
			t.Errorf("expected loss-making agencies, got %q", out)
		}
		if !strings.Contains(out, "(2 rows)") {
			t.Errorf("expected row count, got %q", out)
		}
	})

	t.Run("json result", func(t *testing.T) {
		t.Parallel()
		out, _, err := executeCmd(t, "query", "-j", "-d", testData("agencies.csv"),
			"SELECT COUNT(*) AS n FROM agencies")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result database.Result
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("expected JSON, got %v", err)
		}
		if len(result.Rows) != 1 || result.Rows[0][0] != "9" {
			t.Errorf("expected count 9, got %v", result.Rows)
		}
	})

	t.Run("writes are rejected", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCmd(t, "query", "-d", testData("agencies.csv"), "DELETE FROM agencies")
		if !errors.Is(err, database.ErrNotReadOnly) {
			t.Errorf("expected ErrNotReadOnly, got %v", err)
		}
	})

	t.Run("statement is required", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCmd(t, "query", "-d", testData("agencies.csv"))
		if err == nil {
			t.Error("expected error without a statement")
		}
	})
}

// TestServeCmd tests the serve command.
func TestServeCmd(t *testing.T) {
	t.Parallel()

	t.Run("stops when the context ends", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("zoom: 8\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"serve", "-a", "127.0.0.1:0", "-d", testData("agencies.csv"), "-c", configPath})

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		if err := cmd.ExecuteContext(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "Dashboard running at http://127.0.0.1:") {
			t.Errorf("expected address line, got %q", out.String())
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeCmd(t, "serve", "-a", "localhost")
		if !errors.Is(err, config.ErrInvalidAddr) {
			t.Errorf("expected ErrInvalidAddr, got %v", err)
		}
	})
}

// TestBrowseCmd tests the browse command outside a terminal.
func TestBrowseCmd(t *testing.T) {
	t.Parallel()

	if term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // file descriptors fit in int
		t.Skip("stdin is a terminal")
	}
	_, _, err := executeCmd(t, "browse", "-d", testData("agencies.csv"))
	if !errors.Is(err, errNotTerminal) {
		t.Errorf("expected errNotTerminal, got %v", err)
	}
}

// TestBuildConfig tests merging the configuration file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	newCmd := func(args ...string) *cobra.Command {
		root := NewRootCmd()
		if err := root.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		return root
	}

	t.Run("data flag overrides config file", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("data_file: other.csv\nzoom: 10\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := buildConfig(newCmd("-c", configPath, "-d", "agencies.csv", "-v"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DataFile != "agencies.csv" {
			t.Errorf("expected agencies.csv, got %q", cfg.DataFile)
		}
		if cfg.Zoom != 10 {
			t.Errorf("expected zoom 10 from file, got %d", cfg.Zoom)
		}
		if !cfg.Verbose {
			t.Error("expected verbose")
		}
	})

	t.Run("config file sets data file", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("data_file: other.csv\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := buildConfig(newCmd("-c", configPath))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DataFile != "other.csv" {
			t.Errorf("expected other.csv, got %q", cfg.DataFile)
		}
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		t.Parallel()
		_, err := buildConfig(newCmd("-c", filepath.Join(t.TempDir(), "missing.yaml")))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("unknown log format", func(t *testing.T) {
		t.Parallel()
		_, err := setupLogger(newCmd("--log-format", "xml"), false)
		if !errors.Is(err, errUnknownLogFormat) {
			t.Errorf("expected errUnknownLogFormat, got %v", err)
		}
	})
}

// TestWriteOutput tests writing to stdout or a file.
func TestWriteOutput(t *testing.T) {
	t.Parallel()

	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "hello\n")
		return err
	}

	t.Run("dash means stdout", func(t *testing.T) {
		t.Parallel()
		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)
		if err := writeOutput(cmd, stdoutPath, write); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.String() != "hello\n" {
			t.Errorf("expected hello, got %q", out.String())
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
		if err := writeOutput(&cobra.Command{}, path, write); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(content) != "hello\n" {
			t.Errorf("expected hello, got %q", content)
		}
	})
}
