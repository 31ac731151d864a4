package piecetree

import (
	"io"
	"strings"
	"testing"
)

func TestLineContent(t *testing.T) {
	tree := mustNew(t, []string{"alpha\nbeta\ngamma"}, "\n", false)
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if got := tree.LineContent(i + 1); got != want {
			t.Errorf("line %d = %q, want %q", i+1, got, want)
		}
	}
	if got := tree.LineContent(0); got != "" {
		t.Errorf("line 0 = %q, want empty", got)
	}
	if got := tree.LineContent(4); got != "" {
		t.Errorf("line past the end = %q, want empty", got)
	}
}

func TestLineContentCache(t *testing.T) {
	tree := mustNew(t, []string{"repeat\nafter\nme"}, "\n", false)
	first := tree.LineContent(2)
	second := tree.LineContent(2)
	if first != "after" || second != "after" {
		t.Fatalf("cached line = %q/%q, want 'after'", first, second)
	}
	tree.Insert(7, "right ", false)
	if got := tree.LineContent(2); got != "right after" {
		t.Errorf("line cache must be dropped on edit, got %q", got)
	}
}

func TestLineContentAcrossPieces(t *testing.T) {
	// one logical line assembled from several pieces
	tree := mustNew(t, []string{"one ", "long ", "line", "\nsecond"}, "\n", false)
	if got := tree.LineContent(1); got != "one long line" {
		t.Errorf("line 1 = %q", got)
	}
	if got := tree.LineContent(2); got != "second" {
		t.Errorf("line 2 = %q", got)
	}
}

func TestLineRawContent(t *testing.T) {
	tree := mustNew(t, []string{"ab\ncd\r\nef"}, "\n", false)
	if got := tree.LineRawContent(1, 0); got != "ab\n" {
		t.Errorf("raw line 1 = %q", got)
	}
	if got := tree.LineRawContent(2, 0); got != "cd\r\n" {
		t.Errorf("raw line 2 = %q", got)
	}
	if got := tree.LineRawContent(2, 2); got != "cd" {
		t.Errorf("raw line 2 minus terminator = %q", got)
	}
	if got := tree.LineRawContent(3, 0); got != "ef" {
		t.Errorf("raw line 3 = %q", got)
	}
}

func TestLineLength(t *testing.T) {
	tree := mustNew(t, []string{"ab\ncdef\n\nx"}, "\n", false)
	for i, want := range []int{2, 4, 0, 1} {
		if got := tree.LineLength(i + 1); got != want {
			t.Errorf("line length %d = %d, want %d", i+1, got, want)
		}
	}
}

func TestLineLengthNormalizedCRLF(t *testing.T) {
	tree := mustNew(t, []string{"ab\r\ncd\r\n"}, "\r\n", true)
	for i, want := range []int{2, 2, 0} {
		if got := tree.LineLength(i + 1); got != want {
			t.Errorf("line length %d = %d, want %d", i+1, got, want)
		}
	}
}

func TestLinesContentMergesDanglingCR(t *testing.T) {
	// two chunks whose seam carries the pair; stitching in create keeps P6,
	// the walk must report a single break either way
	tree := mustNew(t, []string{"one\r", "\ntwo"}, "\n", false)
	lines := tree.LinesContent()
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("lines = %q, want [one two]", lines)
	}
}

func TestLineByteAt(t *testing.T) {
	tree := mustNew(t, []string{"abc\ndef"}, "\n", false)
	if got := tree.LineByteAt(2, 1); got != 'e' {
		t.Errorf("byte (2,1) = %q, want 'e'", got)
	}
	if got := tree.LineByteAt(1, 2); got != 'c' {
		t.Errorf("byte (1,2) = %q, want 'c'", got)
	}
	if got := tree.LineByteAt(1, 3); got != 0 {
		t.Errorf("byte past line end = %q, want 0", got)
	}
}

func TestByteAt(t *testing.T) {
	tree := mustNew(t, []string{"Hello", " ", "World"}, "\n", false)
	if got := tree.ByteAt(6); got != 'W' {
		t.Errorf("byte at 6 = %q, want 'W'", got)
	}
	if got := tree.ByteAt(4); got != 'o' {
		t.Errorf("byte at 4 = %q, want 'o'", got)
	}
	if got := tree.ByteAt(99); got != 0 {
		t.Errorf("byte out of range = %q, want 0", got)
	}
}

func TestValueInRange(t *testing.T) {
	tree := mustNew(t, []string{"ab\ncd\nef"}, "\n", false)
	if got := tree.ValueInRange(Position{1, 2}, Position{3, 2}, ""); got != "b\ncd\ne" {
		t.Errorf("range value = %q", got)
	}
	if got := tree.ValueInRange(Position{2, 1}, Position{2, 3}, ""); got != "cd" {
		t.Errorf("single line range = %q", got)
	}
	if got := tree.ValueInRange(Position{2, 2}, Position{2, 2}, ""); got != "" {
		t.Errorf("empty range = %q", got)
	}
	if got := tree.ValueInRange(Position{3, 1}, Position{1, 1}, ""); got != "" {
		t.Errorf("reversed range = %q", got)
	}
}

func TestValueInRangeRewritesEOL(t *testing.T) {
	tree := mustNew(t, nil, "\n", false)
	tree.Insert(0, "a\r\nb\nc\rd", false)
	if got := tree.ValueInRange(Position{1, 1}, Position{4, 2}, "\n"); got != "a\nb\nc\nd" {
		t.Errorf("rewritten range = %q", got)
	}
	if got := tree.ValueInRange(Position{1, 1}, Position{4, 2}, "\r\n"); got != "a\r\nb\r\nc\r\nd" {
		t.Errorf("rewritten range = %q", got)
	}
}

func TestValueInRangeVerbatimWhenNormalized(t *testing.T) {
	tree := mustNew(t, []string{"a\r\nb\r\n"}, "\r\n", true)
	if got := tree.ValueInRange(Position{1, 1}, Position{2, 2}, "\r\n"); got != "a\r\nb" {
		t.Errorf("verbatim range = %q", got)
	}
	if got := tree.ValueInRange(Position{1, 1}, Position{2, 2}, "\n"); got != "a\nb" {
		t.Errorf("cross-EOL range = %q", got)
	}
}

func TestSegments(t *testing.T) {
	tree := mustNew(t, []string{"seg1 ", "seg2 ", "seg3"}, "\n", false)
	var collected strings.Builder
	err := tree.EachSegment(func(seg Segment, pos int) error {
		if pos != collected.Len() {
			t.Errorf("segment offset %d, expected %d", pos, collected.Len())
		}
		collected.WriteString(seg.Text)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if collected.String() != "seg1 seg2 seg3" {
		t.Errorf("segments assemble to %q", collected.String())
	}

	count := 0
	for range tree.RangeSegments() {
		count++
		if count == 2 {
			break // early abort must not panic or loop
		}
	}
	if count != 2 {
		t.Errorf("range yielded %d segments before abort", count)
	}
}

func TestEachSegmentPropagatesError(t *testing.T) {
	tree := mustNew(t, []string{"a", "b", "c"}, "\n", false)
	boom := TreeError("boom")
	visited := 0
	err := tree.EachSegment(func(seg Segment, pos int) error {
		visited++
		if visited == 2 {
			return boom
		}
		return nil
	})
	if err != boom {
		t.Errorf("expected callback error, got %v", err)
	}
	if visited != 2 {
		t.Errorf("iteration continued after error, %d visits", visited)
	}
}

func TestReader(t *testing.T) {
	content := "stream\nme\nplease"
	tree := mustNew(t, []string{content}, "\n", false)
	data, err := io.ReadAll(tree.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("reader produced %q", string(data))
	}
}
