package browse

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/pipeline"
)

func renderDashboard(t *testing.T, name string) *pipeline.Dashboard {
	t.Helper()
	cfg := config.NewConfig()
	cfg.DataFile = filepath.Join("..", "dataset", "testdata", name)
	d, _ := pipeline.Render(context.Background(), cfg, pipeline.Request{},
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return d
}

func newBrowser(t *testing.T, name string, opts ...Option) *Browser {
	t.Helper()
	b, err := New(renderDashboard(t, name), opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

// TestReadKey tests decoding raw terminal input.
func TestReadKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		key   Key
		r     rune
	}{
		{"letter", "a", KeyRune, 'a'},
		{"accented letter", "é", KeyRune, 'é'},
		{"carriage return", "\r", KeyEnter, 0},
		{"newline", "\n", KeyEnter, 0},
		{"delete", "\x7f", KeyBackspace, 0},
		{"backspace", "\x08", KeyBackspace, 0},
		{"ctrl-c", "\x03", KeyInterrupt, 0},
		{"bare escape", "\x1b", KeyEscape, 0},
		{"arrow up", "\x1b[A", KeyUp, 0},
		{"arrow down", "\x1b[B", KeyDown, 0},
		{"page up", "\x1b[5~", KeyPageUp, 0},
		{"page down", "\x1b[6~", KeyPageDown, 0},
		{"arrow right", "\x1b[C", KeyUnknown, 0},
		{"control byte", "\x01", KeyUnknown, '\x01'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			k, r, err := ReadKey(bufio.NewReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if k != tt.key || r != tt.r {
				t.Errorf("expected (%d, %q), got (%d, %q)", tt.key, tt.r, k, r)
			}
		})
	}

	t.Run("end of input", func(t *testing.T) {
		t.Parallel()
		_, _, err := ReadKey(bufio.NewReader(strings.NewReader("")))
		if !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})
}

// TestNew tests creating a browser.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("failed dashboard", func(t *testing.T) {
		t.Parallel()
		_, err := New(renderDashboard(t, "nope.csv"))
		if !errors.Is(err, ErrNoDashboard) {
			t.Errorf("expected ErrNoDashboard, got %v", err)
		}
	})

	t.Run("starts with every row", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		if b.Rows().Len() != 9 {
			t.Errorf("expected 9 rows, got %d", b.Rows().Len())
		}
		row, ok := b.Selected()
		if !ok || row.Index != 0 {
			t.Errorf("expected first row selected, got %+v", row)
		}
	})
}

// TestHandle tests the browse state machine.
func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("typing searches live", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		for _, r := range "uccle" {
			b.Handle(KeyRune, r)
		}
		if b.Query() != "uccle" {
			t.Errorf("expected query uccle, got %q", b.Query())
		}
		if b.Rows().Len() != 1 {
			t.Fatalf("expected 1 row, got %d", b.Rows().Len())
		}

		b.Handle(KeyBackspace, 0)
		if b.Query() != "uccl" {
			t.Errorf("expected query uccl, got %q", b.Query())
		}
	})

	t.Run("search ignores accents", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		for _, r := range "CHAUSSEE" {
			b.Handle(KeyRune, r)
		}
		if b.Rows().Len() != 2 {
			t.Errorf("expected 2 rows, got %d", b.Rows().Len())
		}
	})

	t.Run("selection stays in range", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv", WithHeight(6))
		b.Handle(KeyUp, 0)
		if row, _ := b.Selected(); row.Index != 0 {
			t.Errorf("expected index 0, got %d", row.Index)
		}
		for range 20 {
			b.Handle(KeyDown, 0)
		}
		if row, _ := b.Selected(); row.Index != 8 {
			t.Errorf("expected index 8, got %d", row.Index)
		}
		b.Handle(KeyPageUp, 0)
		if row, _ := b.Selected(); row.Index != 6 {
			t.Errorf("expected index 6 after page up, got %d", row.Index)
		}
	})

	t.Run("enter opens detail and escape closes it", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		b.Handle(KeyEnter, 0)
		if !b.InDetail() {
			t.Fatal("expected detail view")
		}
		if quit := b.Handle(KeyEscape, 0); quit {
			t.Error("expected escape in detail view to go back")
		}
		if b.InDetail() {
			t.Error("expected list view")
		}
		if quit := b.Handle(KeyEscape, 0); !quit {
			t.Error("expected escape in list view to quit")
		}
	})

	t.Run("enter with no match does nothing", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		for _, r := range "zzz" {
			b.Handle(KeyRune, r)
		}
		b.Handle(KeyEnter, 0)
		if b.InDetail() {
			t.Error("expected no detail view")
		}
	})

	t.Run("ctrl-c quits from anywhere", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		b.Handle(KeyEnter, 0)
		if !b.Handle(KeyInterrupt, 0) {
			t.Error("expected quit")
		}
	})
}

// TestRender tests the drawn screens.
func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("list marks the selection and losses", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "agencies.csv")
		var buf bytes.Buffer
		if err := b.Render(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "> Immo Lion Waterloo") {
			t.Error("expected first agency selected")
		}
		if strings.Count(out, "  loss") != 2 {
			t.Errorf("expected 2 loss markers, got %q", out)
		}
		if !strings.Contains(out, "9 of 9 agencies") {
			t.Error("expected row count")
		}
	})

	t.Run("detail shows map status", func(t *testing.T) {
		t.Parallel()
		b := newBrowser(t, "missing_coordinates.csv")
		b.Handle(KeyDown, 0)
		b.Handle(KeyEnter, 0)

		var buf bytes.Buffer
		if err := b.Render(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Kempen Makelaars") {
			t.Error("expected agency name")
		}
		if !strings.Contains(out, "not on the map") {
			t.Errorf("expected map status, got %q", out)
		}
	})
}

// TestRun tests a scripted session.
func TestRun(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, "agencies.csv")
	var out bytes.Buffer
	// Search "leuven", open it, go back, quit.
	if err := b.Run(strings.NewReader("leuven\r\x1b\x03"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Dijle Residentie") {
		t.Error("expected the matching agency to be drawn")
	}
	if b.Query() != "leuven" {
		t.Errorf("expected query leuven, got %q", b.Query())
	}
}
