package piecetree

import "github.com/npillmayer/piecetree/linescan"

// bufferPos addresses a byte within one buffer by (line, column), where
// column is the byte distance from the line's start offset. Storing pieces
// with buffer positions instead of raw offsets keeps them valid while the
// change buffer grows.
type bufferPos struct {
	line   int
	column int
}

// stringBuffer is one text chunk plus its line-start offset table.
//
// Buffer index 0 is the change buffer and append-only; all other buffers are
// immutable once registered with a tree.
type stringBuffer struct {
	text       []byte
	lineStarts []int
}

func newStringBuffer(text string, lineStarts []int) *stringBuffer {
	return &stringBuffer{
		text:       []byte(text),
		lineStarts: lineStarts,
	}
}

// newChunkBuffer scans text and wraps it as an immutable buffer.
func newChunkBuffer(text string) *stringBuffer {
	return newStringBuffer(text, linescan.LineStarts(text))
}

func (b *stringBuffer) len() int {
	return len(b.text)
}

// offsetOf resolves a buffer position to a byte offset within this buffer.
func (b *stringBuffer) offsetOf(pos bufferPos) int {
	return b.lineStarts[pos.line] + pos.column
}

// endPos returns the position one past the last byte.
func (b *stringBuffer) endPos() bufferPos {
	last := len(b.lineStarts) - 1
	return bufferPos{line: last, column: len(b.text) - b.lineStarts[last]}
}

// slice returns the text of [start, end) as a string copy.
func (b *stringBuffer) slice(start, end int) string {
	return string(b.text[start:end])
}

func (b *stringBuffer) byteAt(offset int) byte {
	return b.text[offset]
}
