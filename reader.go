package piecetree

import "io"

// Reader returns a reader for the document bytes. The reader is only valid
// as long as the tree is not mutated.
func (t *Tree) Reader() io.Reader {
	return &treeReader{tree: t}
}

type treeReader struct {
	tree   *Tree
	cursor int
}

func (tr *treeReader) Read(p []byte) (n int, err error) {
	l := len(p)
	if tr.cursor+l > tr.tree.Len() {
		l = tr.tree.Len() - tr.cursor
		if l == 0 {
			return 0, io.EOF
		}
	}
	start := tr.tree.PositionAt(tr.cursor)
	end := tr.tree.PositionAt(tr.cursor + l)
	s := tr.tree.ValueInRange(start, end, "")
	n = copy(p, s)
	tr.cursor += n
	return n, nil
}
