/*
Package piecetree implements a piece-tree text buffer for editors.

# Piece trees

A piece tree stores a document as an ordered sequence of "pieces", where each
piece references a half-open slice of an immutable text chunk. The original
file content is never copied around during editing: inserted text is appended
to a single mutable change buffer, and edits merely split, trim and re-link
pieces. The piece sequence is indexed by a red/black tree whose nodes carry
two running sums over their left subtree, total byte length and total number
of line feeds, so that both byte offsets and line numbers resolve in
logarithmic time.

The piece table goes back to early editors on machines where copying a large
file on every keystroke was out of the question. From a survey by Charles
Crowley, "Data Structures for Text Sequences", 1998:

The piece table method is the best all around method. It is very time and
space efficient, even for very long sequences. […] The sequence is
represented by a series of spans, or pieces, each of which points into one of
two buffers: the file buffer, containing the original file contents, and the
add buffer, containing all characters added to the sequence.

Replacing the flat piece list with a balanced search tree removes the one
weakness of the classical design, linear scans over the piece sequence, and
is what makes the structure practical for documents of hundreds of megabytes
with thousands of accumulated edits.

Texts are addressed in bytes of UTF-8. Only '\r' and '\n' are structural;
all other interpretation (grapheme clusters, bidi, normalization) is left to
clients. A '\r' directly followed by a '\n' always counts as a single line
break, and the tree actively repairs piece seams that would tear such a pair
apart.

The tree is single-threaded: concurrent readers are fine as long as no
mutation is in flight, but the package makes no attempt at interior locking.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package piecetree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'piecetree'
func tracer() tracing.Trace {
	return tracing.Select("piecetree")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// TreeError is an error type for the piecetree module.
type TreeError string

func (e TreeError) Error() string {
	return string(e)
}

// ErrIllegalEOL is flagged when a client hands in an end-of-line string other
// than "\n" or "\r\n".
const ErrIllegalEOL = TreeError(`EOL sequence must be "\n" or "\r\n"`)

// ErrTreeCompleted signals that a builder has already produced a tree and
// it's illegal to stage further chunks.
const ErrTreeCompleted = TreeError("forbidden to add chunks; tree has been built")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = TreeError("illegal arguments")

// ErrInvariantViolated is wrapped by the invariant checker for every broken
// tree property it detects.
const ErrInvariantViolated = TreeError("tree invariant violated")
