package piecetree

// nodePosition is the result of locating an absolute offset in the tree:
// the node whose piece contains it, the offset's distance from the piece
// start, and the absolute offset of the piece's first byte.
type nodePosition struct {
	node            *treeNode
	remainder       int
	nodeStartOffset int
}

// cacheEntry memoizes a located node. nodeStartLine is 0 when the entry was
// seeded by an offset lookup and carries no line information.
type cacheEntry struct {
	node            *treeNode
	nodeStartOffset int
	nodeStartLine   int
}

// searchCache keeps the most recently located nodes. It is a strict
// performance aid: every lookup falls back to tree descent on a miss, and
// correctness never depends on a hit.
type searchCache struct {
	limit   int
	entries []cacheEntry
}

func newSearchCache(limit int) *searchCache {
	return &searchCache{limit: limit}
}

// get returns a cached node whose piece spans offset, or nil.
func (c *searchCache) get(offset int) *cacheEntry {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := &c.entries[i]
		if e.nodeStartOffset <= offset && e.nodeStartOffset+e.node.piece.length >= offset {
			return e
		}
	}
	return nil
}

// getByLine returns a cached node whose piece spans the 1-based line, or nil.
func (c *searchCache) getByLine(line int) *cacheEntry {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := &c.entries[i]
		if e.nodeStartLine > 0 && e.nodeStartLine < line && e.nodeStartLine+e.node.piece.lineFeedCnt >= line {
			return e
		}
	}
	return nil
}

func (c *searchCache) set(e cacheEntry) {
	if len(c.entries) >= c.limit {
		c.entries = c.entries[1:]
	}
	c.entries = append(c.entries, e)
}

// validate drops entries whose node has been unlinked from the tree or whose
// span starts at or beyond offset, i.e. everything an edit at offset may have
// shifted.
func (c *searchCache) validate(offset int) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.node.parent == nil || e.nodeStartOffset >= offset {
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
}
