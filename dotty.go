package piecetree

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type nodeids struct {
	idTable map[*treeNode]int
	max     int
}

func newtable() nodeids {
	return nodeids{
		idTable: make(map[*treeNode]int),
		max:     1,
	}
}

func (ids nodeids) find(node *treeNode) int {
	return ids.idTable[node]
}

func (ids *nodeids) alloc(node *treeNode) int {
	if id := ids.find(node); id > 0 {
		return id
	}
	ids.idTable[node] = ids.max
	ids.max++
	return ids.max - 1
}

// Tree2Dot outputs the internal structure of a Tree in Graphviz DOT format
// (for debugging purposes). Red and black nodes are filled accordingly; node
// labels carry the left-subtree sums and a preview of the piece's text.
func Tree2Dot(t *Tree, w io.Writer) {
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	ids := newtable()
	nodelist, edgelist := "", ""
	nilcnt := 0
	t.iterate(t.root, func(node *treeNode) bool {
		ID := ids.alloc(node)
		label := fmt.Sprintf("%d|%d\\n“%s”", node.sizeLeft, node.lfLeft, piecePreview(t, node, 8))
		nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", ID, label, nodeDotStyles(node))
		for _, child := range []*treeNode{node.left, node.right} {
			if child == t.sentinel {
				nilid := 10000 + nilcnt
				nilcnt++
				nodelist += fmt.Sprintf("\"%d\" %s;\n", nilid, emptyNode())
				edgelist += fmt.Sprintf("\"%d\" -> \"%d\";\n", ID, nilid)
			} else {
				_ = ids.alloc(child)
				edgelist += fmt.Sprintf("\"%d\" -> \"%d\";\n", ID, ids.find(child))
			}
		}
		return true
	})
	io.WriteString(w, nodelist)
	io.WriteString(w, edgelist)
	io.WriteString(w, "}\n")
}

func emptyNode() string {
	return "[label=\"\",color=black,shape=circle,fixedsize=true,width=.2]"
}

func nodeDotStyles(node *treeNode) string {
	s := ",style=filled,shape=box"
	if node.color == red {
		s += ",color=black,fillcolor=\"#ffb0b0\""
	} else {
		s += ",color=black,fillcolor=\"#d0d0d0\",fontcolor=white"
	}
	return s
}

// piecePreview returns up to max bytes of the node's text with line breaks
// made visible.
func piecePreview(t *Tree, node *treeNode, max int) string {
	content := t.nodeContent(node)
	if len(content) > max {
		content = content[:max] + "…"
	}
	quoted := strconv.Quote(content)
	return quoted[1 : len(quoted)-1]
}

// Dump writes an indented structural dump of the tree to w, one node per
// line, red nodes colored when w is a terminal. Intended for debugging
// sessions and test logs.
func (t *Tree) Dump(w io.Writer) {
	width := 80
	redFmt := fmt.Sprintf
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = tw
		}
		redColor := color.New(color.FgRed)
		redColor.EnableColor()
		redFmt = redColor.SprintfFunc()
	}
	blackFmt := fmt.Sprintf
	t.dumpNode(w, t.root, 0, width, redFmt, blackFmt)
}

func (t *Tree) dumpNode(w io.Writer, node *treeNode, depth, width int,
	redFmt, blackFmt func(format string, a ...interface{}) string) {
	//
	if node == t.sentinel {
		return
	}
	t.dumpNode(w, node.left, depth+1, width, redFmt, blackFmt)
	preview := 8
	if width > 40 {
		preview = (width - 40) / 4
	}
	line := fmt.Sprintf("%*ssize.left=%-6d lf.left=%-4d “%s”",
		depth*2, "", node.sizeLeft, node.lfLeft, piecePreview(t, node, preview))
	if node.color == red {
		fmt.Fprintln(w, redFmt("%s", line))
	} else {
		fmt.Fprintln(w, blackFmt("%s", line))
	}
	t.dumpNode(w, node.right, depth+1, width, redFmt, blackFmt)
}
