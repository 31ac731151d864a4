package piecetree

import (
	"fmt"
	"strings"
)

// Check validates structural tree invariants.
//
// This checker is intentionally strict and meant for tests and debugging; it
// walks the complete tree and every piece. Violations are reported wrapped
// around ErrInvariantViolated.
func (t *Tree) Check() error {
	if t.sentinel == nil {
		return fmt.Errorf("%w: tree not initialized", ErrInvariantViolated)
	}
	if t.sentinel.color != black {
		return fmt.Errorf("%w: sentinel is not black", ErrInvariantViolated)
	}
	if t.sentinel.sizeLeft != 0 || t.sentinel.lfLeft != 0 {
		return fmt.Errorf("%w: sentinel carries metadata", ErrInvariantViolated)
	}
	if t.sentinel.parent != t.sentinel {
		return fmt.Errorf("%w: sentinel parent not reset", ErrInvariantViolated)
	}
	if t.root == t.sentinel {
		if t.length != 0 || t.lineCnt != 1 {
			return fmt.Errorf("%w: empty tree totals length=%d lines=%d", ErrInvariantViolated, t.length, t.lineCnt)
		}
		return nil
	}
	if t.root.color != black {
		return fmt.Errorf("%w: root is not black", ErrInvariantViolated)
	}
	if _, err := t.checkNode(t.root); err != nil {
		return err
	}

	size, lf := 0, 0
	var prev *treeNode
	var walkErr error
	t.iterate(t.root, func(node *treeNode) bool {
		if err := t.checkPiece(node); err != nil {
			walkErr = err
			return false
		}
		if prev != nil && t.nodeEndsWithCR(prev) && t.nodeStartsWithLF(node) {
			walkErr = fmt.Errorf("%w: unstitched \\r|\\n seam between adjacent pieces", ErrInvariantViolated)
			return false
		}
		prev = node
		size += node.piece.length
		lf += node.piece.lineFeedCnt
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	if size != t.length {
		return fmt.Errorf("%w: length total %d, pieces sum to %d", ErrInvariantViolated, t.length, size)
	}
	if lf+1 != t.lineCnt {
		return fmt.Errorf("%w: line total %d, pieces sum to %d breaks", ErrInvariantViolated, t.lineCnt, lf)
	}
	if t.eolNormalized && t.eol == "\n" {
		if strings.ContainsRune(t.Content(), '\r') {
			return fmt.Errorf(`%w: '\r' in a document normalized to "\n"`, ErrInvariantViolated)
		}
	}
	return nil
}

// checkNode validates red/black coloring, augmented sums and parent links of
// the subtree under n. Returns the subtree's black height.
func (t *Tree) checkNode(n *treeNode) (blackHeight int, err error) {
	if n == t.sentinel {
		return 1, nil
	}
	if n.color == red {
		if n.left.color == red || n.right.color == red {
			return 0, fmt.Errorf("%w: red node has a red child", ErrInvariantViolated)
		}
	}
	if n.left != t.sentinel && n.left.parent != n {
		return 0, fmt.Errorf("%w: broken parent link (left)", ErrInvariantViolated)
	}
	if n.right != t.sentinel && n.right.parent != n {
		return 0, fmt.Errorf("%w: broken parent link (right)", ErrInvariantViolated)
	}
	if got, want := n.sizeLeft, t.calculateSize(n.left); got != want {
		return 0, fmt.Errorf("%w: sizeLeft=%d, left subtree sums to %d", ErrInvariantViolated, got, want)
	}
	if got, want := n.lfLeft, t.calculateLF(n.left); got != want {
		return 0, fmt.Errorf("%w: lfLeft=%d, left subtree sums to %d", ErrInvariantViolated, got, want)
	}
	leftHeight, err := t.checkNode(n.left)
	if err != nil {
		return 0, err
	}
	rightHeight, err := t.checkNode(n.right)
	if err != nil {
		return 0, err
	}
	if leftHeight != rightHeight {
		return 0, fmt.Errorf("%w: black height mismatch (%d != %d)", ErrInvariantViolated, leftHeight, rightHeight)
	}
	if n.color == black {
		leftHeight++
	}
	return leftHeight, nil
}

// checkPiece validates one piece against its buffer.
func (t *Tree) checkPiece(n *treeNode) error {
	p := n.piece
	if p.bufferIndex < 0 || p.bufferIndex >= len(t.buffers) {
		return fmt.Errorf("%w: piece references buffer %d of %d", ErrInvariantViolated, p.bufferIndex, len(t.buffers))
	}
	buf := t.buffers[p.bufferIndex]
	if p.start.line < 0 || p.start.line >= len(buf.lineStarts) ||
		p.end.line < 0 || p.end.line >= len(buf.lineStarts) {
		return fmt.Errorf("%w: piece line out of buffer range", ErrInvariantViolated)
	}
	startOffset := buf.offsetOf(p.start)
	endOffset := buf.offsetOf(p.end)
	if startOffset < 0 || startOffset > endOffset || endOffset > buf.len() {
		return fmt.Errorf("%w: piece range [%d,%d) outside buffer of %d bytes",
			ErrInvariantViolated, startOffset, endOffset, buf.len())
	}
	if endOffset-startOffset != p.length {
		return fmt.Errorf("%w: piece length %d, slice spans %d", ErrInvariantViolated, p.length, endOffset-startOffset)
	}
	if got, want := p.lineFeedCnt, t.lineFeedCount(p.bufferIndex, p.start, p.end); got != want {
		return fmt.Errorf("%w: piece lineFeedCnt %d, recount yields %d", ErrInvariantViolated, got, want)
	}
	return nil
}
