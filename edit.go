package piecetree

import (
	"strings"

	"github.com/npillmayer/piecetree/linescan"
)

// Insert places text at the absolute byte offset, clamped to [0, Len].
// eolNormalized asserts that text contains no terminator other than the
// document EOL; it is ANDed into the tree's normalization flag.
//
// Inserting the empty string is a no-op.
func (t *Tree) Insert(offset int, text string, eolNormalized bool) {
	if len(text) == 0 {
		return
	}
	t.eolNormalized = t.eolNormalized && eolNormalized
	t.lastVisitedLine.line = 0
	t.lastVisitedLine.value = ""
	if offset < 0 {
		offset = 0
	} else if offset > t.length {
		offset = t.length
	}

	if t.root != t.sentinel {
		pos := t.nodeAt(offset)
		node, remainder, nodeStartOffset := pos.node, pos.remainder, pos.nodeStartOffset
		p := node.piece
		if p.bufferIndex == 0 &&
			p.end == t.lastChangeBufferPos &&
			nodeStartOffset+p.length == offset &&
			len(text) < AverageBufferSize {
			// the insert continues the previous edit: grow the piece in place
			t.appendToNode(node, text)
			t.computeBufferMetadata()
			return
		}
		if nodeStartOffset == offset {
			t.insertContentToNodeLeft(text, node)
			t.searchCache.validate(offset)
		} else if nodeStartOffset+node.piece.length > offset {
			// inserting into the middle of a node
			var nodesToDel []*treeNode
			insertPosInBuffer := t.positionInBuffer(node, remainder)
			newRightPiece := piece{
				bufferIndex: p.bufferIndex,
				start:       insertPosInBuffer,
				end:         p.end,
				length:      t.offsetInBuffer(p.bufferIndex, p.end) - t.offsetInBuffer(p.bufferIndex, insertPosInBuffer),
				lineFeedCnt: t.lineFeedCount(p.bufferIndex, insertPosInBuffer, p.end),
			}
			if t.shouldCheckCRLF() && endWithCR(text) {
				if t.nodeCharAt(node, remainder) == '\n' {
					// pull the '\n' out of the right remnant into the insert
					newStart := bufferPos{line: newRightPiece.start.line + 1, column: 0}
					newRightPiece = piece{
						bufferIndex: newRightPiece.bufferIndex,
						start:       newStart,
						end:         newRightPiece.end,
						length:      newRightPiece.length - 1,
						lineFeedCnt: t.lineFeedCount(newRightPiece.bufferIndex, newStart, newRightPiece.end),
					}
					text += "\n"
				}
			}
			// the node keeps the content before the insertion point
			if t.shouldCheckCRLF() && startWithLF(text) && t.nodeCharAt(node, remainder-1) == '\r' {
				// pull the '\r' out of the left remnant into the insert
				previousPos := t.positionInBuffer(node, remainder-1)
				t.deleteNodeTail(node, previousPos)
				text = "\r" + text
				if node.piece.length == 0 {
					nodesToDel = append(nodesToDel, node)
				}
			} else {
				t.deleteNodeTail(node, insertPosInBuffer)
			}
			newPieces := t.createNewPieces(text)
			if newRightPiece.length > 0 {
				t.rbInsertRight(node, newRightPiece)
			}
			tmpNode := node
			for _, np := range newPieces {
				tmpNode = t.rbInsertRight(tmpNode, np)
			}
			t.deleteNodes(nodesToDel)
		} else {
			t.insertContentToNodeRight(text, node)
		}
	} else {
		pieces := t.createNewPieces(text)
		node := t.rbInsertLeft(t.sentinel, pieces[0])
		for k := 1; k < len(pieces); k++ {
			node = t.rbInsertRight(node, pieces[k])
		}
	}
	t.computeBufferMetadata()
}

// Delete removes count bytes starting at the absolute byte offset. A count
// of zero or less is a no-op; the range end is clamped to the document
// length.
func (t *Tree) Delete(offset, count int) {
	t.lastVisitedLine.line = 0
	t.lastVisitedLine.value = ""
	if count <= 0 || t.root == t.sentinel {
		return
	}
	start, end := offset, offset+count
	if start < 0 {
		start = 0
	}
	if end > t.length {
		end = t.length
	}
	if end <= start {
		return
	}
	offset, count = start, end-start

	startPosition := t.nodeAt(offset)
	endPosition := t.nodeAt(offset + count)
	startNode := startPosition.node
	endNode := endPosition.node

	if startNode == endNode {
		startSplitPos := t.positionInBuffer(startNode, startPosition.remainder)
		endSplitPos := t.positionInBuffer(startNode, endPosition.remainder)
		if startPosition.nodeStartOffset == offset {
			if count == startNode.piece.length {
				// delete the whole node
				next := t.next(startNode)
				t.rbDelete(startNode)
				t.validateCRLFWithPrevNode(next)
				t.computeBufferMetadata()
				return
			}
			t.deleteNodeHead(startNode, endSplitPos)
			t.searchCache.validate(offset)
			t.validateCRLFWithPrevNode(startNode)
			t.computeBufferMetadata()
			return
		}
		if startPosition.nodeStartOffset+startNode.piece.length == offset+count {
			t.deleteNodeTail(startNode, startSplitPos)
			t.validateCRLFWithNextNode(startNode)
			t.computeBufferMetadata()
			return
		}
		// delete from the middle: the node is split in two
		t.shrinkNode(startNode, startSplitPos, endSplitPos)
		t.computeBufferMetadata()
		return
	}

	var nodesToDel []*treeNode
	startSplitPos := t.positionInBuffer(startNode, startPosition.remainder)
	t.deleteNodeTail(startNode, startSplitPos)
	t.searchCache.validate(offset)
	if startNode.piece.length == 0 {
		nodesToDel = append(nodesToDel, startNode)
	}
	endSplitPos := t.positionInBuffer(endNode, endPosition.remainder)
	t.deleteNodeHead(endNode, endSplitPos)
	if endNode.piece.length == 0 {
		nodesToDel = append(nodesToDel, endNode)
	}
	for node := t.next(startNode); node != t.sentinel && node != endNode; node = t.next(node) {
		nodesToDel = append(nodesToDel, node)
	}
	prev := startNode
	if startNode.piece.length == 0 {
		prev = t.prev(startNode)
	}
	t.deleteNodes(nodesToDel)
	t.validateCRLFWithNextNode(prev)
	t.computeBufferMetadata()
}

// --- Structural helpers ----------------------------------------------------

func (t *Tree) insertContentToNodeLeft(text string, node *treeNode) {
	var nodesToDel []*treeNode
	if t.shouldCheckCRLF() && endWithCR(text) && t.nodeStartsWithLF(node) {
		// move the '\n' from the node into the inserted text
		p := node.piece
		newStart := bufferPos{line: p.start.line + 1, column: 0}
		node.piece = piece{
			bufferIndex: p.bufferIndex,
			start:       newStart,
			end:         p.end,
			length:      p.length - 1,
			lineFeedCnt: p.lineFeedCnt - 1,
		}
		text += "\n"
		t.updateTreeMetadata(node, -1, -1)
		if node.piece.length == 0 {
			nodesToDel = append(nodesToDel, node)
		}
	}
	newPieces := t.createNewPieces(text)
	newNode := t.rbInsertLeft(node, newPieces[len(newPieces)-1])
	for k := len(newPieces) - 2; k >= 0; k-- {
		newNode = t.rbInsertLeft(newNode, newPieces[k])
	}
	t.validateCRLFWithPrevNode(newNode)
	t.deleteNodes(nodesToDel)
}

func (t *Tree) insertContentToNodeRight(text string, node *treeNode) {
	if t.adjustCarriageReturnFromNext(text, node) {
		// the inserted text ends with '\r'; the following '\n' moved over
		text += "\n"
	}
	newPieces := t.createNewPieces(text)
	newNode := t.rbInsertRight(node, newPieces[0])
	tmpNode := newNode
	for k := 1; k < len(newPieces); k++ {
		tmpNode = t.rbInsertRight(tmpNode, newPieces[k])
	}
	t.validateCRLFWithPrevNode(newNode)
}

// appendToNode is the fast path for typing: the insert extends the piece
// which ends at the change buffer's current write position.
func (t *Tree) appendToNode(node *treeNode, text string) {
	if t.adjustCarriageReturnFromNext(text, node) {
		text += "\n"
	}

	hitCRLF := t.shouldCheckCRLF() && startWithLF(text) && t.nodeEndsWithCR(node)
	changed := t.buffers[0]
	startOffset := changed.len()
	changed.text = append(changed.text, text...)
	lineStarts := linescan.LineStarts(text)
	for i := range lineStarts {
		lineStarts[i] += startOffset
	}
	if hitCRLF {
		// the staged break after the trailing '\r' merges with our '\n':
		// retract the last line start, it no longer is one
		prevStartOffset := changed.lineStarts[len(changed.lineStarts)-2]
		changed.lineStarts = changed.lineStarts[:len(changed.lineStarts)-1]
		t.lastChangeBufferPos = bufferPos{
			line:   t.lastChangeBufferPos.line - 1,
			column: startOffset - prevStartOffset,
		}
	}
	changed.lineStarts = append(changed.lineStarts, lineStarts[1:]...)

	endIndex := len(changed.lineStarts) - 1
	endColumn := changed.len() - changed.lineStarts[endIndex]
	newEnd := bufferPos{line: endIndex, column: endColumn}
	newLength := node.piece.length + len(text)
	oldLineFeedCnt := node.piece.lineFeedCnt
	newLineFeedCnt := t.lineFeedCount(0, node.piece.start, newEnd)
	lfDelta := newLineFeedCnt - oldLineFeedCnt

	node.piece = piece{
		bufferIndex: 0,
		start:       node.piece.start,
		end:         newEnd,
		length:      newLength,
		lineFeedCnt: newLineFeedCnt,
	}
	t.lastChangeBufferPos = newEnd
	t.updateTreeMetadata(node, len(text), lfDelta)
}

// createNewPieces stores text and returns the pieces covering it. Texts
// larger than AverageBufferSize become fresh immutable buffers, one piece
// each; smaller texts are appended to the change buffer.
func (t *Tree) createNewPieces(text string) []piece {
	if len(text) > AverageBufferSize {
		var newPieces []piece
		for len(text) > AverageBufferSize {
			bound := splitBound(text, AverageBufferSize)
			splitText := text[:bound]
			text = text[bound:]

			buf := newChunkBuffer(splitText)
			newPieces = append(newPieces, piece{
				bufferIndex: len(t.buffers),
				start:       bufferPos{line: 0, column: 0},
				end:         buf.endPos(),
				length:      buf.len(),
				lineFeedCnt: len(buf.lineStarts) - 1,
			})
			t.buffers = append(t.buffers, buf)
		}
		buf := newChunkBuffer(text)
		newPieces = append(newPieces, piece{
			bufferIndex: len(t.buffers),
			start:       bufferPos{line: 0, column: 0},
			end:         buf.endPos(),
			length:      buf.len(),
			lineFeedCnt: len(buf.lineStarts) - 1,
		})
		t.buffers = append(t.buffers, buf)
		tracer().Debugf("piece tree: large insert split into %d chunk(s)", len(newPieces))
		return newPieces
	}

	changed := t.buffers[0]
	startOffset := changed.len()
	lineStarts := linescan.LineStarts(text)
	start := t.lastChangeBufferPos
	if changed.lineStarts[len(changed.lineStarts)-1] == startOffset &&
		startOffset != 0 &&
		startWithLF(text) &&
		changed.text[startOffset-1] == '\r' {
		// The change buffer ends with a pending '\r' and the new text begins
		// with '\n'. Appending directly would merge them into one break and
		// silently shift every line start we are about to stage. A filler
		// byte keeps the two apart; it is never referenced by any piece.
		t.lastChangeBufferPos = bufferPos{
			line:   t.lastChangeBufferPos.line,
			column: t.lastChangeBufferPos.column + 1,
		}
		start = t.lastChangeBufferPos
		for i := range lineStarts {
			lineStarts[i] += startOffset + 1
		}
		changed.lineStarts = append(changed.lineStarts, lineStarts[1:]...)
		changed.text = append(changed.text, '_')
		changed.text = append(changed.text, text...)
		startOffset++
	} else {
		if startOffset != 0 {
			for i := range lineStarts {
				lineStarts[i] += startOffset
			}
		}
		changed.lineStarts = append(changed.lineStarts, lineStarts[1:]...)
		changed.text = append(changed.text, text...)
	}

	endOffset := changed.len()
	endIndex := len(changed.lineStarts) - 1
	endColumn := endOffset - changed.lineStarts[endIndex]
	endPos := bufferPos{line: endIndex, column: endColumn}
	newPiece := piece{
		bufferIndex: 0,
		start:       start,
		end:         endPos,
		length:      endOffset - startOffset,
		lineFeedCnt: t.lineFeedCount(0, start, endPos),
	}
	t.lastChangeBufferPos = endPos
	return []piece{newPiece}
}

// deleteNodeHead advances the piece start to pos.
func (t *Tree) deleteNodeHead(node *treeNode, pos bufferPos) {
	p := node.piece
	originalLFCnt := p.lineFeedCnt
	originalStartOffset := t.offsetInBuffer(p.bufferIndex, p.start)

	newStart := pos
	newLineFeedCnt := t.lineFeedCount(p.bufferIndex, newStart, p.end)
	newStartOffset := t.offsetInBuffer(p.bufferIndex, newStart)
	lfDelta := newLineFeedCnt - originalLFCnt
	sizeDelta := originalStartOffset - newStartOffset
	node.piece = piece{
		bufferIndex: p.bufferIndex,
		start:       newStart,
		end:         p.end,
		length:      p.length + sizeDelta,
		lineFeedCnt: newLineFeedCnt,
	}
	t.updateTreeMetadata(node, sizeDelta, lfDelta)
}

// deleteNodeTail retracts the piece end to pos.
func (t *Tree) deleteNodeTail(node *treeNode, pos bufferPos) {
	p := node.piece
	originalLFCnt := p.lineFeedCnt
	originalEndOffset := t.offsetInBuffer(p.bufferIndex, p.end)

	newEnd := pos
	newEndOffset := t.offsetInBuffer(p.bufferIndex, newEnd)
	newLineFeedCnt := t.lineFeedCount(p.bufferIndex, p.start, newEnd)
	lfDelta := newLineFeedCnt - originalLFCnt
	sizeDelta := newEndOffset - originalEndOffset
	node.piece = piece{
		bufferIndex: p.bufferIndex,
		start:       p.start,
		end:         newEnd,
		length:      p.length + sizeDelta,
		lineFeedCnt: newLineFeedCnt,
	}
	t.updateTreeMetadata(node, sizeDelta, lfDelta)
}

// shrinkNode cuts [start, end) out of the piece's interior: the node keeps
// the head, a new node takes the tail.
func (t *Tree) shrinkNode(node *treeNode, start, end bufferPos) {
	p := node.piece
	originalStartPos := p.start
	originalEndPos := p.end

	oldLength := p.length
	oldLFCnt := p.lineFeedCnt
	newEnd := start
	newLineFeedCnt := t.lineFeedCount(p.bufferIndex, p.start, newEnd)
	newLength := t.offsetInBuffer(p.bufferIndex, start) - t.offsetInBuffer(p.bufferIndex, originalStartPos)
	node.piece = piece{
		bufferIndex: p.bufferIndex,
		start:       p.start,
		end:         newEnd,
		length:      newLength,
		lineFeedCnt: newLineFeedCnt,
	}
	t.updateTreeMetadata(node, newLength-oldLength, newLineFeedCnt-oldLFCnt)

	newPiece := piece{
		bufferIndex: p.bufferIndex,
		start:       end,
		end:         originalEndPos,
		length:      t.offsetInBuffer(p.bufferIndex, originalEndPos) - t.offsetInBuffer(p.bufferIndex, end),
		lineFeedCnt: t.lineFeedCount(p.bufferIndex, end, originalEndPos),
	}
	newNode := t.rbInsertRight(node, newPiece)
	t.validateCRLFWithPrevNode(newNode)
}

func (t *Tree) deleteNodes(nodes []*treeNode) {
	for _, node := range nodes {
		t.rbDelete(node)
	}
}

// --- CRLF stitching --------------------------------------------------------

// shouldCheckCRLF reports whether pieces may hold '\r' at all. A document
// normalized to "\n" cannot, so stitching is skipped.
func (t *Tree) shouldCheckCRLF() bool {
	return !(t.eolNormalized && t.eol == "\n")
}

func startWithLF(text string) bool {
	return strings.HasPrefix(text, "\n")
}

func endWithCR(text string) bool {
	return strings.HasSuffix(text, "\r")
}

// nodeStartsWithLF reports whether the node's piece begins with '\n'.
func (t *Tree) nodeStartsWithLF(node *treeNode) bool {
	if node == t.sentinel || node.piece.lineFeedCnt == 0 {
		return false
	}
	p := node.piece
	buf := t.buffers[p.bufferIndex]
	line := p.start.line
	startOffset := buf.lineStarts[line] + p.start.column
	if line == len(buf.lineStarts)-1 {
		return false
	}
	nextLineOffset := buf.lineStarts[line+1]
	if nextLineOffset > startOffset+1 {
		return false
	}
	return buf.byteAt(startOffset) == '\n'
}

// nodeEndsWithCR reports whether the node's piece ends with '\r'.
func (t *Tree) nodeEndsWithCR(node *treeNode) bool {
	if node == t.sentinel || node.piece.lineFeedCnt == 0 {
		return false
	}
	return t.nodeCharAt(node, node.piece.length-1) == '\r'
}

// nodeCharAt reads a byte inside the node's piece; offset is piece-relative.
func (t *Tree) nodeCharAt(node *treeNode, offset int) byte {
	p := node.piece
	if offset < 0 || offset >= p.length {
		return 0
	}
	buf := t.buffers[p.bufferIndex]
	return buf.byteAt(buf.offsetOf(p.start) + offset)
}

// validateCRLFWithPrevNode repairs a '\r'+'\n' seam between node and its
// in-order predecessor.
func (t *Tree) validateCRLFWithPrevNode(node *treeNode) {
	if t.shouldCheckCRLF() && t.nodeStartsWithLF(node) {
		prev := t.prev(node)
		if t.nodeEndsWithCR(prev) {
			t.fixCRLF(prev, node)
		}
	}
}

// validateCRLFWithNextNode repairs a '\r'+'\n' seam between node and its
// in-order successor.
func (t *Tree) validateCRLFWithNextNode(node *treeNode) {
	if t.shouldCheckCRLF() && t.nodeEndsWithCR(node) {
		next := t.next(node)
		if t.nodeStartsWithLF(next) {
			t.fixCRLF(node, next)
		}
	}
}

// fixCRLF replaces the '\r' ending prev and the '\n' starting next by one
// fresh piece carrying the literal "\r\n", so the pair is never torn across
// pieces (and thus never counted as two breaks).
func (t *Tree) fixCRLF(prev, next *treeNode) {
	var nodesToDel []*treeNode
	lineStarts := t.buffers[prev.piece.bufferIndex].lineStarts

	var newEnd bufferPos
	if prev.piece.end.column == 0 {
		// it means the '\r' is the last byte of its line
		newEnd = bufferPos{
			line:   prev.piece.end.line - 1,
			column: lineStarts[prev.piece.end.line] - lineStarts[prev.piece.end.line-1] - 1,
		}
	} else {
		newEnd = bufferPos{line: prev.piece.end.line, column: prev.piece.end.column - 1}
	}
	prev.piece = piece{
		bufferIndex: prev.piece.bufferIndex,
		start:       prev.piece.start,
		end:         newEnd,
		length:      prev.piece.length - 1,
		lineFeedCnt: prev.piece.lineFeedCnt - 1,
	}
	t.updateTreeMetadata(prev, -1, -1)
	if prev.piece.length == 0 {
		nodesToDel = append(nodesToDel, prev)
	}

	newStart := bufferPos{line: next.piece.start.line + 1, column: 0}
	next.piece = piece{
		bufferIndex: next.piece.bufferIndex,
		start:       newStart,
		end:         next.piece.end,
		length:      next.piece.length - 1,
		lineFeedCnt: t.lineFeedCount(next.piece.bufferIndex, newStart, next.piece.end),
	}
	t.updateTreeMetadata(next, -1, -1)
	if next.piece.length == 0 {
		nodesToDel = append(nodesToDel, next)
	}

	pieces := t.createNewPieces("\r\n")
	t.rbInsertRight(prev, pieces[0])
	for _, node := range nodesToDel {
		t.rbDelete(node)
	}
}

// adjustCarriageReturnFromNext pulls a leading '\n' out of node's successor
// when the text about to follow node ends with '\r'. Returns true when the
// caller must append the '\n' to its text.
func (t *Tree) adjustCarriageReturnFromNext(text string, node *treeNode) bool {
	if t.shouldCheckCRLF() && endWithCR(text) {
		nextNode := t.next(node)
		if t.nodeStartsWithLF(nextNode) {
			if nextNode.piece.length == 1 {
				t.rbDelete(nextNode)
			} else {
				p := nextNode.piece
				newStart := bufferPos{line: p.start.line + 1, column: 0}
				nextNode.piece = piece{
					bufferIndex: p.bufferIndex,
					start:       newStart,
					end:         p.end,
					length:      p.length - 1,
					lineFeedCnt: t.lineFeedCount(p.bufferIndex, newStart, p.end),
				}
				t.updateTreeMetadata(nextNode, -1, -1)
			}
			return true
		}
	}
	return false
}
