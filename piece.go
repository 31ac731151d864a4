package piecetree

// piece references the half-open slice [start, end) of one buffer. Pieces are
// immutable values; "mutating" a node replaces its piece wholesale.
//
// length and lineFeedCnt are cached so that tree descent never has to touch
// buffer memory.
type piece struct {
	bufferIndex int
	start       bufferPos
	end         bufferPos
	length      int
	lineFeedCnt int
}
