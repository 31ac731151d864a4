package piecetree

import (
	"bytes"
	"strings"
	"testing"
)

func TestTree2Dot(t *testing.T) {
	tree := mustNew(t, []string{"alpha\n", "beta\n", "gamma"}, "\n", false)
	tree.Insert(3, "X", false)
	var buf bytes.Buffer
	Tree2Dot(tree, &buf)
	out := buf.String()
	if !strings.HasPrefix(out, "strict digraph {") {
		t.Errorf("no DOT header in output")
	}
	if !strings.Contains(out, "->") {
		t.Errorf("no edges in DOT output")
	}
	t.Logf("dot output:\n%s", out)
}

func TestDump(t *testing.T) {
	tree := mustNew(t, []string{"some\n", "pieces\n", "to\n", "show"}, "\n", false)
	var buf bytes.Buffer
	tree.Dump(&buf)
	if strings.Count(buf.String(), "\n") != 4 {
		t.Errorf("dump must print one line per node:\n%s", buf.String())
	}
}
