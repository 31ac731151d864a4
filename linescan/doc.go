/*
Package linescan locates and classifies line terminators in text fragments.

The scanner produces the line-start offset tables which the piece tree's
buffers index by (line, column) pairs, plus the CR/LF/CRLF tallies used for
end-of-line election and normalization decisions.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package linescan
