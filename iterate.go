package piecetree

import "iter"

// Segment is one piece's text together with its absolute byte offset in the
// document.
type Segment struct {
	Text   string
	Offset int
}

// EachSegment visits all piece texts in logical order.
//
// The callback receives each segment and its starting byte offset. Iteration
// stops at the first callback error and returns that error to the caller.
// The callback must not mutate the tree.
func (t *Tree) EachSegment(f func(seg Segment, pos int) error) error {
	var err error
	pos := 0
	t.iterate(t.root, func(node *treeNode) bool {
		content := t.nodeContent(node)
		err = f(Segment{Text: content, Offset: pos}, pos)
		pos += len(content)
		return err == nil
	})
	return err
}

// RangeSegments returns an iterator over all segments in logical order.
func (t *Tree) RangeSegments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		pos := 0
		t.iterate(t.root, func(node *treeNode) bool {
			content := t.nodeContent(node)
			if !yield(Segment{Text: content, Offset: pos}) {
				return false
			}
			pos += len(content)
			return true
		})
	}
}

// Equal reports whether two trees hold the same content. Piece and buffer
// layout are irrelevant; only the logical byte sequence is compared.
func (t *Tree) Equal(other *Tree) bool {
	if t.length != other.length {
		return false
	}
	if t.lineCnt != other.lineCnt {
		return false
	}
	offset := 0
	return t.iterate(t.root, func(node *treeNode) bool {
		if node.piece.length == 0 {
			return true
		}
		str := t.nodeContent(node)
		startPos := other.nodeAt(offset)
		endPos := other.nodeAt(offset + len(str))
		val := other.valueBetween(startPos, endPos)
		offset += len(str)
		return str == val
	})
}
