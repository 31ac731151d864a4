package textfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "text.txt")
	if err := os.WriteFile(name, content, 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestLoad(t *testing.T) {
	content := "Hello\nWorld\nwith some text\n"
	tree, err := Load(writeTemp(t, []byte(content)))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Content() != content {
		t.Errorf("loaded content differs from file content")
	}
	if tree.LineCount() != 4 {
		t.Errorf("line count = %d, should be 4", tree.LineCount())
	}
}

func TestLoadStripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom marked")...)
	tree, err := Load(writeTemp(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Content() != "bom marked" {
		t.Errorf("content = %q, BOM not stripped", tree.Content())
	}
}

func TestLoadUTF16(t *testing.T) {
	// "hi\nü" as UTF-16 LE with BOM
	raw := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0, 0xFC, 0}
	tree, err := Load(writeTemp(t, raw))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Content() != "hi\nü" {
		t.Errorf("content = %q, want %q", tree.Content(), "hi\nü")
	}
}

func TestLoadElectsCRLF(t *testing.T) {
	content := "one\r\ntwo\r\nthree"
	tree, err := Load(writeTemp(t, []byte(content)))
	if err != nil {
		t.Fatal(err)
	}
	if tree.EOL() != "\r\n" {
		t.Errorf("elected EOL = %q, want CRLF", tree.EOL())
	}
	if tree.Content() != content {
		t.Errorf("content changed during load")
	}
}

func TestLoaderProgress(t *testing.T) {
	l := NewLoader()
	l.fragSize = 8 // force several fragments
	events, cancel := l.Subscribe()
	defer cancel()

	var frags []Fragment
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			frags = append(frags, ev.(Fragment))
		}
	}()

	content := strings.Repeat("fragmented content\n", 5)
	tree, err := l.Load(writeTemp(t, []byte(content)))
	if err != nil {
		t.Fatal(err)
	}
	l.Close()
	<-done
	// broadcast delivery may drop events for slow subscribers, so we check
	// plausibility, not completeness
	if len(frags) == 0 {
		t.Errorf("no progress events received")
	}
	lastEnd := 0
	for _, frag := range frags {
		if frag.Pos < lastEnd || frag.Len <= 0 || frag.Pos+frag.Len > len(content) {
			t.Errorf("implausible fragment event %+v", frag)
		}
		lastEnd = frag.Pos + frag.Len
	}
	if tree.Len() != len(content) {
		t.Errorf("tree length = %d, want %d", tree.Len(), len(content))
	}
}

func TestLoadRejectsDirectory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Errorf("expected error for non-regular file")
	}
}
