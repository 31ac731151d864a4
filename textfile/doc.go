/*
Package textfile loads text files as piece trees.

Files are read in fragments of roughly piecetree.AverageBufferSize bytes,
cut at UTF-8 rune boundaries, and staged through a tree builder. Input with
a byte-order mark (UTF-8, UTF-16 LE/BE) is decoded transparently. A Loader
broadcasts per-fragment progress events, so interactive clients can display
loading state for very large files.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'piecetree'
func tracer() tracing.Trace {
	return tracing.Select("piecetree")
}
