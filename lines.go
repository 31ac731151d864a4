package piecetree

import "strings"

// LineContent returns the content of the 1-based line without its
// terminator. A one-entry cache makes repeated retrieval of the same line
// O(1).
func (t *Tree) LineContent(line int) string {
	if line < 1 || line > t.lineCnt {
		return ""
	}
	if t.lastVisitedLine.line == line {
		return t.lastVisitedLine.value
	}
	t.lastVisitedLine.line = line
	if line == t.lineCnt {
		t.lastVisitedLine.value = t.lineRawContent(line, 0)
	} else if t.eolNormalized {
		t.lastVisitedLine.value = t.lineRawContent(line, len(t.eol))
	} else {
		t.lastVisitedLine.value = stripTrailingBreak(t.lineRawContent(line, 0))
	}
	return t.lastVisitedLine.value
}

// stripTrailingBreak removes one trailing line terminator, whichever of
// "\r\n", "\r", "\n" it is.
func stripTrailingBreak(text string) string {
	if strings.HasSuffix(text, "\r\n") {
		return text[:len(text)-2]
	}
	if strings.HasSuffix(text, "\r") || strings.HasSuffix(text, "\n") {
		return text[:len(text)-1]
	}
	return text
}

// LineRawContent returns the content of the 1-based line including its
// terminator, minus trailingSkip trailing bytes.
func (t *Tree) LineRawContent(line, trailingSkip int) string {
	if line < 1 || line > t.lineCnt || trailingSkip < 0 {
		return ""
	}
	raw := t.lineRawContent(line, 0)
	if trailingSkip >= len(raw) {
		return ""
	}
	return raw[:len(raw)-trailingSkip]
}

func (t *Tree) lineRawContent(line, endOffset int) string {
	x := t.root
	var ret strings.Builder

	if e := t.searchCache.getByLine(line); e != nil {
		x = e.node
		prevAccumulated := t.accumulatedValue(x, line-e.nodeStartLine-1)
		p := x.piece
		buf := t.buffers[p.bufferIndex]
		startOffset := buf.offsetOf(p.start)
		if e.nodeStartLine+p.lineFeedCnt == line {
			// line runs past this piece; collect the tail below
			ret.WriteString(buf.slice(startOffset+prevAccumulated, startOffset+p.length))
		} else {
			accumulated := t.accumulatedValue(x, line-e.nodeStartLine)
			return buf.slice(startOffset+prevAccumulated, startOffset+accumulated-endOffset)
		}
	} else {
		nodeStartOffset := 0
		originalLine := line
		for x != t.sentinel {
			if x.left != t.sentinel && x.lfLeft >= line-1 {
				x = x.left
			} else if x.lfLeft+x.piece.lineFeedCnt > line-1 {
				prevAccumulated := t.accumulatedValue(x, line-x.lfLeft-2)
				accumulated := t.accumulatedValue(x, line-x.lfLeft-1)
				p := x.piece
				buf := t.buffers[p.bufferIndex]
				startOffset := buf.offsetOf(p.start)
				nodeStartOffset += x.sizeLeft
				t.searchCache.set(cacheEntry{
					node:            x,
					nodeStartOffset: nodeStartOffset,
					nodeStartLine:   originalLine - (line - 1 - x.lfLeft),
				})
				return buf.slice(startOffset+prevAccumulated, startOffset+accumulated-endOffset)
			} else if x.lfLeft+x.piece.lineFeedCnt == line-1 {
				prevAccumulated := t.accumulatedValue(x, line-x.lfLeft-2)
				p := x.piece
				buf := t.buffers[p.bufferIndex]
				startOffset := buf.offsetOf(p.start)
				ret.WriteString(buf.slice(startOffset+prevAccumulated, startOffset+p.length))
				break
			} else {
				line -= x.lfLeft + x.piece.lineFeedCnt
				nodeStartOffset += x.sizeLeft + x.piece.length
				x = x.right
			}
		}
	}

	// the line continues into following pieces, up to and including the next
	// line break
	for x = t.next(x); x != t.sentinel; x = t.next(x) {
		p := x.piece
		buf := t.buffers[p.bufferIndex]
		startOffset := buf.offsetOf(p.start)
		if p.lineFeedCnt > 0 {
			accumulated := t.accumulatedValue(x, 0)
			ret.WriteString(buf.slice(startOffset, startOffset+accumulated-endOffset))
			return ret.String()
		}
		ret.WriteString(buf.slice(startOffset, startOffset+p.length))
	}
	return ret.String()
}

// LineLength returns the length of the 1-based line, excluding its
// terminator.
func (t *Tree) LineLength(line int) int {
	if line < 1 || line > t.lineCnt {
		return 0
	}
	if line == t.lineCnt {
		startOffset := t.OffsetAt(line, 1)
		return t.length - startOffset
	}
	if t.eolNormalized {
		return t.OffsetAt(line+1, 1) - t.OffsetAt(line, 1) - len(t.eol)
	}
	// mixed terminators have no constant width
	return len(t.LineContent(line))
}

// LinesContent returns all lines without terminators, in one in-order walk.
// A '\r' ending one piece and a '\n' starting the next are merged into a
// single break even when the pieces have not been stitched.
func (t *Tree) LinesContent() []string {
	var lines []string
	currentLine := ""
	danglingCR := false

	t.iterate(t.root, func(node *treeNode) bool {
		p := node.piece
		pieceLength := p.length
		if pieceLength == 0 {
			return true
		}
		buf := t.buffers[p.bufferIndex]
		lineStarts := buf.lineStarts
		pieceStartLine := p.start.line
		pieceEndLine := p.end.line
		pieceStartOffset := lineStarts[pieceStartLine] + p.start.column

		if danglingCR {
			if buf.byteAt(pieceStartOffset) == '\n' {
				// pretend the '\n' belonged to the previous piece
				pieceStartOffset++
				pieceLength--
			}
			lines = append(lines, currentLine)
			currentLine = ""
			danglingCR = false
			if pieceLength == 0 {
				return true
			}
			if pieceStartLine < pieceEndLine && pieceStartOffset == lineStarts[pieceStartLine+1] {
				// consuming the '\n' finished the piece's first line
				pieceStartLine++
			}
		}

		if pieceStartLine == pieceEndLine {
			// this piece has no line break
			if !t.eolNormalized && buf.byteAt(pieceStartOffset+pieceLength-1) == '\r' {
				danglingCR = true
				currentLine += buf.slice(pieceStartOffset, pieceStartOffset+pieceLength-1)
			} else {
				currentLine += buf.slice(pieceStartOffset, pieceStartOffset+pieceLength)
			}
			return true
		}

		// add the text before the first line break of this piece
		if t.eolNormalized {
			end := max(pieceStartOffset, lineStarts[pieceStartLine+1]-len(t.eol))
			currentLine += buf.slice(pieceStartOffset, end)
		} else {
			currentLine += stripTrailingBreak(buf.slice(pieceStartOffset, lineStarts[pieceStartLine+1]))
		}
		lines = append(lines, currentLine)

		for line := pieceStartLine + 1; line < pieceEndLine; line++ {
			if t.eolNormalized {
				currentLine = buf.slice(lineStarts[line], lineStarts[line+1]-len(t.eol))
			} else {
				currentLine = stripTrailingBreak(buf.slice(lineStarts[line], lineStarts[line+1]))
			}
			lines = append(lines, currentLine)
		}

		if !t.eolNormalized && buf.byteAt(lineStarts[pieceEndLine]+p.end.column-1) == '\r' {
			danglingCR = true
			if p.end.column == 0 {
				// the piece ends right after a lone '\r': take back the line
				// we just closed, its break may still merge with a '\n'
				lines = lines[:len(lines)-1]
			} else {
				currentLine = buf.slice(lineStarts[pieceEndLine], lineStarts[pieceEndLine]+p.end.column-1)
			}
		} else {
			currentLine = buf.slice(lineStarts[pieceEndLine], lineStarts[pieceEndLine]+p.end.column)
		}
		return true
	})

	if danglingCR {
		lines = append(lines, currentLine)
		currentLine = ""
	}
	lines = append(lines, currentLine)
	return lines
}

// ValueInRange concatenates the document content between two positions.
// When eol is non-empty and either differs from the document EOL or the
// document is not normalized, every line terminator in the result is
// rewritten to eol; otherwise the content is returned verbatim.
func (t *Tree) ValueInRange(start, end Position, eol string) string {
	if start.Line > end.Line || (start.Line == end.Line && start.Column >= end.Column) {
		return ""
	}
	startPos := t.nodeAtLine(start.Line, start.Column)
	endPos := t.nodeAtLine(end.Line, end.Column)
	value := t.valueBetween(startPos, endPos)
	if eol != "" {
		if eol != t.eol || !t.eolNormalized {
			return eolPattern.ReplaceAllString(value, eol)
		}
	}
	return value
}

// valueBetween materializes the content between two located positions.
func (t *Tree) valueBetween(startPos, endPos nodePosition) string {
	if startPos.node == t.sentinel || endPos.node == t.sentinel {
		return ""
	}
	if startPos.node == endPos.node {
		node := startPos.node
		buf := t.buffers[node.piece.bufferIndex]
		startOffset := buf.offsetOf(node.piece.start)
		return buf.slice(startOffset+startPos.remainder, startOffset+endPos.remainder)
	}

	x := startPos.node
	buf := t.buffers[x.piece.bufferIndex]
	startOffset := buf.offsetOf(x.piece.start)
	var ret strings.Builder
	ret.WriteString(buf.slice(startOffset+startPos.remainder, startOffset+x.piece.length))

	for x = t.next(x); x != t.sentinel; x = t.next(x) {
		buf := t.buffers[x.piece.bufferIndex]
		startOffset := buf.offsetOf(x.piece.start)
		if x == endPos.node {
			ret.WriteString(buf.slice(startOffset, startOffset+endPos.remainder))
			break
		}
		ret.WriteString(buf.slice(startOffset, startOffset+x.piece.length))
	}
	return ret.String()
}

// Content returns the complete document as one string. This may be an
// expensive operation for large documents, as it collects every piece into a
// single allocation.
func (t *Tree) Content() string {
	var ret strings.Builder
	ret.Grow(t.length)
	t.iterate(t.root, func(node *treeNode) bool {
		ret.WriteString(t.nodeContent(node))
		return true
	})
	return ret.String()
}
