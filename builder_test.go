package piecetree

import (
	"errors"
	"testing"
)

func TestBuilderElectsLF(t *testing.T) {
	b := NewBuilder()
	for _, chunk := range []string{"one\n", "two\r\n", "three\n"} {
		if err := b.AppendString(chunk); err != nil {
			t.Fatal(err)
		}
	}
	tree, err := b.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	if tree.EOL() != "\n" {
		t.Errorf("elected EOL = %q, want LF", tree.EOL())
	}
	assertTree(t, tree, "one\ntwo\r\nthree\n")
}

func TestBuilderElectsCRLF(t *testing.T) {
	b := NewBuilder()
	for _, chunk := range []string{"one\r\n", "two\r\n", "three\n"} {
		if err := b.AppendString(chunk); err != nil {
			t.Fatal(err)
		}
	}
	tree, err := b.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	if tree.EOL() != "\r\n" {
		t.Errorf("elected EOL = %q, want CRLF", tree.EOL())
	}
}

func TestBuilderNormalizes(t *testing.T) {
	b := NewBuilder()
	for _, chunk := range []string{"a\r\nb\n", "c\rd\n"} {
		if err := b.AppendString(chunk); err != nil {
			t.Fatal(err)
		}
	}
	tree, err := b.Build(true)
	if err != nil {
		t.Fatal(err)
	}
	assertTree(t, tree, "a\nb\nc\nd\n")
	if !tree.eolNormalized {
		t.Errorf("built tree not marked normalized")
	}
}

func TestBuilderKeepsCRLFAcrossChunkSeam(t *testing.T) {
	b := NewBuilder()
	for _, chunk := range []string{"one\r", "\ntwo"} {
		if err := b.AppendString(chunk); err != nil {
			t.Fatal(err)
		}
	}
	tree, err := b.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	assertTree(t, tree, "one\r\ntwo")
	if tree.LineCount() != 2 {
		t.Errorf("line count = %d, the pair at the seam must count once", tree.LineCount())
	}
	if tree.EOL() != "\r\n" {
		t.Errorf("elected EOL = %q, the seam pair must tally as CRLF", tree.EOL())
	}
}

func TestBuilderStripsBOM(t *testing.T) {
	b := NewBuilder()
	if err := b.AppendString("\uFEFFcontent"); err != nil {
		t.Fatal(err)
	}
	tree, err := b.Build(false)
	if err != nil {
		t.Fatal(err)
	}
	if !b.HasBOM() {
		t.Errorf("builder must report the BOM")
	}
	assertTree(t, tree, "content")
}

func TestBuilderRejectsLateChunks(t *testing.T) {
	b := NewBuilder()
	if err := b.AppendString("done"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(false); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendString("more"); !errors.Is(err, ErrTreeCompleted) {
		t.Errorf("expected ErrTreeCompleted, got %v", err)
	}
	b.Reset()
	if err := b.AppendString("fresh"); err != nil {
		t.Errorf("append after Reset failed: %v", err)
	}
}

func TestBuilderEmpty(t *testing.T) {
	tree, err := NewBuilder().Build(false)
	if err != nil {
		t.Fatal(err)
	}
	assertTree(t, tree, "")
	if tree.EOL() != "\n" {
		t.Errorf("default EOL = %q", tree.EOL())
	}
}
