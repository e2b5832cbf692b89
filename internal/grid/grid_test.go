package grid

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestRenderEmptyColumns(t *testing.T) {
	g := New(nil, nil)
	if got := g.Render(); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRenderAlignsColumns(t *testing.T) {
	g := New(
		[]string{"id", "name"},
		[][]string{
			{"1", "alice"},
			{"42", "bob"},
		},
	)

	lines := strings.Split(strings.TrimRight(g.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}

	if !strings.Contains(lines[2], "1   alice") {
		t.Errorf("first row misaligned: %q", lines[2])
	}
	if !strings.Contains(lines[3], "42  bob") {
		t.Errorf("second row misaligned: %q", lines[3])
	}
}

func TestRenderHeaderSeparatorMatchesWidths(t *testing.T) {
	g := New([]string{"col"}, [][]string{{"longer-value"}})

	lines := strings.Split(g.Render(), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected at least 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], strings.Repeat("-", len("longer-value"))) {
		t.Errorf("separator should span the widest cell: %q", lines[1])
	}
}

func TestRenderTruncatesWideCells(t *testing.T) {
	g := New([]string{"v"}, [][]string{{strings.Repeat("x", 100)}})
	g.MaxColWidth = 10

	out := g.Render()
	if strings.Contains(out, strings.Repeat("x", 11)) {
		t.Errorf("cell should be truncated to the cap: %q", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("truncation should be marked with an ellipsis: %q", out)
	}
}

func TestRenderShortRow(t *testing.T) {
	g := New([]string{"a", "b"}, [][]string{{"only-a"}})

	out := g.Render()
	if !strings.Contains(out, "only-a") {
		t.Errorf("short rows should still render: %q", out)
	}
}

func TestRenderWideCharacters(t *testing.T) {
	g := New(
		[]string{"name", "flag"},
		[][]string{
			{"東京", "x"},
			{"ab", "y"},
		},
	)

	lines := strings.Split(strings.TrimRight(g.Render(), "\n"), "\n")
	idx1, idx2 := strings.Index(lines[2], "x"), strings.Index(lines[3], "y")
	if idx1 < 0 || idx2 < 0 {
		t.Fatalf("flag cells missing: %q %q", lines[2], lines[3])
	}
	// 東京 occupies 4 display cells but 6 bytes; compare display columns,
	// not byte offsets.
	col1 := runewidth.StringWidth(lines[2][:idx1])
	col2 := runewidth.StringWidth(lines[3][:idx2])
	if col1 != col2 {
		t.Errorf("flag column misaligned: %d vs %d in %q / %q", col1, col2, lines[2], lines[3])
	}
}
