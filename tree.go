package piecetree

/*
BSD 3-Clause License

Copyright (c) Norbert Pillmayer

Please refer to the License file in the repository root.

*/

import (
	"regexp"
	"strings"
)

// AverageBufferSize is the target size of one text chunk in bytes. Inserts
// larger than this are split into fresh immutable buffers; the change buffer
// append fast path is limited to values below it.
//
// Chunk splits never separate a "\r\n" pair and never cut into a multi-byte
// UTF-8 sequence.
const AverageBufferSize = 65535

// Tree is a piece-tree text buffer.
//
// The document is the in-order concatenation of pieces held by a red/black
// tree; every piece references a slice of an immutable chunk buffer or of the
// append-only change buffer (buffer index 0). Offsets are 0-based byte
// offsets, lines and columns of the public API are 1-based.
//
// The zero Tree is not ready for use; construct with New or a Builder.
//
//	Operation            |  Piece tree   |  String
//	---------------------+---------------+--------
//	Insert               |  O(log n)     |  O(n)
//	Delete               |  O(log n)     |  O(n)
//	Offset ↔ (line,col)  |  O(log n)     |  O(n)
//	Line content         |  O(log n + l) |  O(n)
type Tree struct {
	buffers  []*stringBuffer // 0 is the change buffer
	root     *treeNode
	sentinel *treeNode

	length  int
	lineCnt int

	eol           string
	eolNormalized bool

	lastChangeBufferPos bufferPos
	searchCache         *searchCache
	lastVisitedLine     struct {
		line  int
		value string
	}
}

// New builds a tree from the initial chunks, which become immutable buffers
// 1..N. eol must be "\n" or "\r\n"; eolNormalized asserts that the chunks
// contain no other line terminator than eol.
func New(chunks []string, eol string, eolNormalized bool) (*Tree, error) {
	if eol != "\n" && eol != "\r\n" {
		return nil, ErrIllegalEOL
	}
	t := &Tree{}
	t.create(chunks, eol, eolNormalized)
	return t, nil
}

// FromString builds a tree over a single chunk with EOL "\n" and no
// normalization guarantee.
func FromString(text string) *Tree {
	t := &Tree{}
	t.create([]string{text}, "\n", false)
	return t
}

// create (re-)initializes the tree from chunks. Also the tail end of EOL
// normalization, which rebuilds the tree in place.
func (t *Tree) create(chunks []string, eol string, eolNormalized bool) {
	t.buffers = []*stringBuffer{newStringBuffer("", []int{0})}
	t.lastChangeBufferPos = bufferPos{line: 0, column: 0}
	t.sentinel = newSentinel()
	t.root = t.sentinel
	t.lineCnt = 1
	t.length = 0
	t.eol = eol
	t.eolNormalized = eolNormalized
	t.searchCache = newSearchCache(1)
	t.lastVisitedLine.line = 0
	t.lastVisitedLine.value = ""

	chunks = stitchChunkSeams(chunks)
	var lastNode *treeNode
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		buf := newChunkBuffer(chunk)
		p := piece{
			bufferIndex: len(t.buffers),
			start:       bufferPos{line: 0, column: 0},
			end:         buf.endPos(),
			length:      buf.len(),
			lineFeedCnt: len(buf.lineStarts) - 1,
		}
		t.buffers = append(t.buffers, buf)
		lastNode = t.rbInsertRight(lastNode, p)
	}
	t.computeBufferMetadata()
}

// stitchChunkSeams moves a '\r' ending one chunk over to a following chunk
// starting with '\n', so that no "\r\n" pair ever straddles two buffers.
func stitchChunkSeams(chunks []string) []string {
	for i := 0; i+1 < len(chunks); i++ {
		if strings.HasSuffix(chunks[i], "\r") && strings.HasPrefix(chunks[i+1], "\n") {
			chunks[i] = chunks[i][:len(chunks[i])-1]
			chunks[i+1] = "\r" + chunks[i+1]
		}
	}
	return chunks
}

// Len returns the document length in bytes. O(1).
func (t *Tree) Len() int {
	return t.length
}

// LineCount returns the number of lines in the document. O(1). An empty
// document has one (empty) line.
func (t *Tree) LineCount() int {
	return t.lineCnt
}

// EOL returns the document's end-of-line sequence, "\n" or "\r\n".
func (t *Tree) EOL() string {
	return t.eol
}

// SetEOL rewrites every line terminator to eol and marks the document as
// normalized. The content is re-chunked into fresh buffers; all previous
// buffer memory is released.
func (t *Tree) SetEOL(eol string) error {
	if eol != "\n" && eol != "\r\n" {
		return ErrIllegalEOL
	}
	t.eol = eol
	t.normalizeEOL(eol)
	return nil
}

var eolPattern = regexp.MustCompile(`\r\n|\r|\n`)

func (t *Tree) normalizeEOL(eol string) {
	max := 2 * (AverageBufferSize - AverageBufferSize/3)

	var chunks []string
	var carry strings.Builder
	t.iterate(t.root, func(node *treeNode) bool {
		carry.WriteString(t.nodeContent(node))
		for carry.Len() >= max {
			text := carry.String()
			bound := splitBound(text, AverageBufferSize)
			chunks = append(chunks, eolPattern.ReplaceAllString(text[:bound], eol))
			carry.Reset()
			carry.WriteString(text[bound:])
		}
		return true
	})
	if carry.Len() > 0 {
		chunks = append(chunks, eolPattern.ReplaceAllString(carry.String(), eol))
	}
	tracer().Debugf("piece tree: normalized EOL into %d chunk(s)", len(chunks))
	t.create(chunks, eol, true)
}

// splitBound retracts a chunk split point so that it neither tears a "\r\n"
// pair nor cuts into a multi-byte UTF-8 sequence.
func splitBound(text string, bound int) int {
	for bound > 1 && text[bound]&0xC0 == 0x80 {
		bound--
	}
	if text[bound-1] == '\r' && text[bound] == '\n' {
		bound--
	}
	return bound
}

// computeBufferMetadata recomputes the running totals by walking the right
// spine, and drops search-cache entries past the new length.
func (t *Tree) computeBufferMetadata() {
	lfCnt := 1
	length := 0
	for x := t.root; x != t.sentinel; x = x.right {
		lfCnt += x.lfLeft + x.piece.lineFeedCnt
		length += x.sizeLeft + x.piece.length
	}
	t.lineCnt = lfCnt
	t.length = length
	t.searchCache.validate(length)
}

// offsetInBuffer resolves a buffer position to an offset within its buffer.
func (t *Tree) offsetInBuffer(bufferIndex int, pos bufferPos) int {
	return t.buffers[bufferIndex].offsetOf(pos)
}

// nodeContent materializes the text a node's piece references.
func (t *Tree) nodeContent(node *treeNode) string {
	if node == t.sentinel {
		return ""
	}
	p := node.piece
	buf := t.buffers[p.bufferIndex]
	return buf.slice(buf.offsetOf(p.start), buf.offsetOf(p.end))
}

// lineFeedCount counts the line breaks whose final byte lies inside the
// half-open slice (start, end] of the given buffer. A "\r\n" whose '\n' is
// the first byte past end still counts when its '\r' lies inside, so a piece
// boundary through the pair never counts the break twice.
func (t *Tree) lineFeedCount(bufferIndex int, start, end bufferPos) int {
	if end.column == 0 {
		return end.line - start.line
	}
	buf := t.buffers[bufferIndex]
	if end.line == len(buf.lineStarts)-1 {
		// no line break after end in this buffer
		return end.line - start.line
	}
	nextLineStartOffset := buf.lineStarts[end.line+1]
	endOffset := buf.lineStarts[end.line] + end.column
	if nextLineStartOffset > endOffset+1 {
		// end is at least 2 bytes before the next break's final byte
		return end.line - start.line
	}
	previousCharOffset := endOffset - 1
	if buf.byteAt(previousCharOffset) == '\r' {
		return end.line - start.line + 1
	}
	return end.line - start.line
}

// iterate visits the subtree under node in-order; stops early when cb
// returns false.
func (t *Tree) iterate(node *treeNode, cb func(*treeNode) bool) bool {
	if node == t.sentinel {
		return true
	}
	if !t.iterate(node.left, cb) {
		return false
	}
	if !cb(node) {
		return false
	}
	return t.iterate(node.right, cb)
}
