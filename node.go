package piecetree

// Node colors. The sentinel is always black.
type nodeColor uint8

const (
	black nodeColor = iota
	red
)

// treeNode is a node of the sum-augmented red/black tree. sizeLeft and
// lfLeft aggregate the byte length resp. line-feed count of the node's
// complete left subtree; they are what makes offset and line lookups
// logarithmic.
type treeNode struct {
	piece  piece
	color  nodeColor
	parent *treeNode
	left   *treeNode
	right  *treeNode

	sizeLeft int
	lfLeft   int
}

// newSentinel creates the per-tree nil stand-in: black, zero sums,
// self-referential. Every nil child and the root's parent point here.
func newSentinel() *treeNode {
	s := &treeNode{color: black}
	s.parent = s
	s.left = s
	s.right = s
	return s
}

// detach unlinks the node from the tree. A nil parent is how the search
// cache recognizes evicted nodes.
func (n *treeNode) detach() {
	n.parent = nil
	n.left = nil
	n.right = nil
}

func (t *Tree) leftmost(n *treeNode) *treeNode {
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

func (t *Tree) rightmost(n *treeNode) *treeNode {
	for n.right != t.sentinel {
		n = n.right
	}
	return n
}

// next returns the in-order successor, or the sentinel.
func (t *Tree) next(n *treeNode) *treeNode {
	if n.right != t.sentinel {
		return t.leftmost(n.right)
	}
	for n.parent != t.sentinel {
		if n.parent.left == n {
			break
		}
		n = n.parent
	}
	if n.parent == t.sentinel {
		return t.sentinel
	}
	return n.parent
}

// prev returns the in-order predecessor, or the sentinel.
func (t *Tree) prev(n *treeNode) *treeNode {
	if n.left != t.sentinel {
		return t.rightmost(n.left)
	}
	for n.parent != t.sentinel {
		if n.parent.right == n {
			break
		}
		n = n.parent
	}
	if n.parent == t.sentinel {
		return t.sentinel
	}
	return n.parent
}

// calculateSize sums piece lengths of the subtree rooted at n.
func (t *Tree) calculateSize(n *treeNode) int {
	if n == t.sentinel {
		return 0
	}
	return n.sizeLeft + n.piece.length + t.calculateSize(n.right)
}

// calculateLF sums piece line-feed counts of the subtree rooted at n.
func (t *Tree) calculateLF(n *treeNode) int {
	if n == t.sentinel {
		return 0
	}
	return n.lfLeft + n.piece.lineFeedCnt + t.calculateLF(n.right)
}

// resetSentinel restores the sentinel (self-parent, black, zero sums) after
// deletion fix-ups, which corrupt its parent link transiently.
func (t *Tree) resetSentinel() {
	t.sentinel.parent = t.sentinel
	t.sentinel.color = black
	t.sentinel.sizeLeft = 0
	t.sentinel.lfLeft = 0
}

func (t *Tree) leftRotate(x *treeNode) {
	y := x.right

	// y gains x and x's left subtree on its left flank.
	y.sizeLeft += x.sizeLeft + x.piece.length
	y.lfLeft += x.lfLeft + x.piece.lineFeedCnt

	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x.parent.left == x {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree) rightRotate(y *treeNode) {
	x := y.left
	y.left = x.right
	if x.right != t.sentinel {
		x.right.parent = y
	}
	x.parent = y.parent

	// y loses x and x's left subtree from its left flank.
	y.sizeLeft -= x.sizeLeft + x.piece.length
	y.lfLeft -= x.lfLeft + x.piece.lineFeedCnt

	if y.parent == t.sentinel {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

// rbInsertRight links a node carrying p directly after node in in-order
// position and rebalances. A nil node is only legal for an empty tree.
func (t *Tree) rbInsertRight(node *treeNode, p piece) *treeNode {
	z := &treeNode{
		piece:  p,
		color:  red,
		parent: t.sentinel,
		left:   t.sentinel,
		right:  t.sentinel,
	}
	if t.root == t.sentinel {
		t.root = z
		z.color = black
	} else if node.right == t.sentinel {
		node.right = z
		z.parent = node
	} else {
		nextNode := t.leftmost(node.right)
		nextNode.left = z
		z.parent = nextNode
	}
	t.fixInsert(z)
	return z
}

// rbInsertLeft links a node carrying p directly before node in in-order
// position and rebalances.
func (t *Tree) rbInsertLeft(node *treeNode, p piece) *treeNode {
	z := &treeNode{
		piece:  p,
		color:  red,
		parent: t.sentinel,
		left:   t.sentinel,
		right:  t.sentinel,
	}
	if t.root == t.sentinel {
		t.root = z
		z.color = black
	} else if node.left == t.sentinel {
		node.left = z
		z.parent = node
	} else {
		prevNode := t.rightmost(node.left)
		prevNode.right = z
		z.parent = prevNode
	}
	t.fixInsert(z)
	return z
}

func (t *Tree) fixInsert(x *treeNode) {
	t.recomputeTreeMetadata(x)

	for x != t.root && x.parent.color == red {
		if x.parent == x.parent.parent.left {
			y := x.parent.parent.right
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.right {
					x = x.parent
					t.leftRotate(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.rightRotate(x.parent.parent)
			}
		} else {
			y := x.parent.parent.left
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.left {
					x = x.parent
					t.rightRotate(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.leftRotate(x.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *Tree) rbDelete(z *treeNode) {
	var x, y *treeNode
	if z.left == t.sentinel {
		y = z
		x = y.right
	} else if z.right == t.sentinel {
		y = z
		x = y.left
	} else {
		y = t.leftmost(z.right)
		x = y.right
	}

	if y == t.root {
		t.root = x
		x.color = black
		z.detach()
		t.resetSentinel()
		t.root.parent = t.sentinel
		return
	}

	yWasRed := y.color == red

	if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}

	if y == z {
		x.parent = y.parent
		t.recomputeTreeMetadata(x)
	} else {
		if y.parent == z {
			x.parent = y
		} else {
			x.parent = y.parent
		}
		// x changes subtree before y takes over z's place, so fix sums for
		// x's spine first.
		t.recomputeTreeMetadata(x)

		y.left = z.left
		y.right = z.right
		y.parent = z.parent
		y.color = z.color

		if z == t.root {
			t.root = y
		} else if z == z.parent.left {
			z.parent.left = y
		} else {
			z.parent.right = y
		}
		if y.left != t.sentinel {
			y.left.parent = y
		}
		if y.right != t.sentinel {
			y.right.parent = y
		}
		y.sizeLeft = z.sizeLeft
		y.lfLeft = z.lfLeft
		t.recomputeTreeMetadata(y)
	}

	z.detach()

	if x.parent.left == x {
		newSizeLeft := t.calculateSize(x)
		newLFLeft := t.calculateLF(x)
		if newSizeLeft != x.parent.sizeLeft || newLFLeft != x.parent.lfLeft {
			delta := newSizeLeft - x.parent.sizeLeft
			lfDelta := newLFLeft - x.parent.lfLeft
			x.parent.sizeLeft = newSizeLeft
			x.parent.lfLeft = newLFLeft
			t.updateTreeMetadata(x.parent, delta, lfDelta)
		}
	}
	t.recomputeTreeMetadata(x.parent)

	if yWasRed {
		t.resetSentinel()
		return
	}
	t.fixDelete(x)
	t.resetSentinel()
}

func (t *Tree) fixDelete(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

// updateTreeMetadata adds the deltas into every ancestor whose left subtree
// contains x.
func (t *Tree) updateTreeMetadata(x *treeNode, delta, lfDelta int) {
	for x != t.root && x != t.sentinel {
		if x.parent.left == x {
			x.parent.sizeLeft += delta
			x.parent.lfLeft += lfDelta
		}
		x = x.parent
	}
}

// recomputeTreeMetadata walks up from x to the first ancestor whose left
// subtree changed, recomputes its sums from scratch and propagates the
// deltas further up.
func (t *Tree) recomputeTreeMetadata(x *treeNode) {
	if x == t.root {
		return
	}
	for x != t.root && x == x.parent.right {
		x = x.parent
	}
	if x == t.root {
		// x was appended at the in-order end; no left subtree changed.
		return
	}
	x = x.parent

	delta := t.calculateSize(x.left) - x.sizeLeft
	lfDelta := t.calculateLF(x.left) - x.lfLeft
	x.sizeLeft += delta
	x.lfLeft += lfDelta

	for x != t.root && (delta != 0 || lfDelta != 0) {
		if x.parent.left == x {
			x.parent.sizeLeft += delta
			x.parent.lfLeft += lfDelta
		}
		x = x.parent
	}
}
