package piecetree

import (
	"strings"

	"github.com/npillmayer/piecetree/linescan"
)

const utf8BOM = "\uFEFF"

// Builder incrementally stages text chunks and finalizes them into a Tree.
//
// Builder collects chunks in arrival order, keeps "\r\n" pairs intact across
// chunk boundaries, tallies the line terminators it has seen, and elects the
// document EOL when Build is called. This keeps chunk surgery in one place,
// away from the tree constructor.
//
// The empty instance is a valid builder, but clients may use NewBuilder.
type Builder struct {
	chunks []string
	cr     int
	lf     int
	crlf   int
	bom    bool
	done   bool
}

// NewBuilder creates a new and empty tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AppendString stages a chunk of text.
//
// A UTF-8 byte-order mark on the first chunk is stripped and remembered. A
// '\r' ending the previously staged chunk is moved over when the new chunk
// opens with '\n', so no pair is ever torn across two chunk buffers.
func (b *Builder) AppendString(chunk string) error {
	if b == nil {
		return ErrIllegalArguments
	}
	if b.done {
		return ErrTreeCompleted
	}
	if len(b.chunks) == 0 && strings.HasPrefix(chunk, utf8BOM) {
		b.bom = true
		chunk = chunk[len(utf8BOM):]
	}
	if len(b.chunks) > 0 && strings.HasPrefix(chunk, "\n") {
		last := len(b.chunks) - 1
		if strings.HasSuffix(b.chunks[last], "\r") {
			// the pair straddles the chunk seam: hand the '\r' over
			b.chunks[last] = b.chunks[last][:len(b.chunks[last])-1]
			b.cr--
			chunk = "\r" + chunk
		}
	}
	sc := linescan.Text(chunk)
	b.cr += sc.CR
	b.lf += sc.LF
	b.crlf += sc.CRLF
	if len(chunk) > 0 {
		b.chunks = append(b.chunks, chunk)
	}
	return nil
}

// Reset drops the staged chunks and prepares the builder for a fresh build.
func (b *Builder) Reset() {
	b.chunks = nil
	b.cr = 0
	b.lf = 0
	b.crlf = 0
	b.bom = false
	b.done = false
}

// HasBOM reports whether the first staged chunk opened with a UTF-8
// byte-order mark.
func (b *Builder) HasBOM() bool {
	return b.bom
}

// EOL returns the elected end-of-line sequence for the staged text: "\r\n"
// when carriage returns dominate, otherwise "\n".
func (b *Builder) EOL() string {
	total := b.cr + b.lf + b.crlf
	if total == 0 {
		return "\n"
	}
	if b.cr+b.crlf > total/2 {
		return "\r\n"
	}
	return "\n"
}

// Build finalizes the staged chunks into a tree.
//
// With normalizeEOL set, chunks containing a terminator other than the
// elected EOL are rewritten before construction and the tree is marked
// normalized. It is illegal to stage further chunks after Build, but Build
// may be called multiple times.
func (b *Builder) Build(normalizeEOL bool) (*Tree, error) {
	if b == nil {
		return nil, ErrIllegalArguments
	}
	b.done = true
	eol := b.EOL()
	chunks := b.chunks
	normalized := false
	if normalizeEOL && b.needsNormalizing(eol) {
		normalized = true
		rewritten := make([]string, len(chunks))
		for i, chunk := range chunks {
			rewritten[i] = eolPattern.ReplaceAllString(chunk, eol)
		}
		chunks = rewritten
		tracer().Debugf("tree builder: normalized %d chunk(s) to %q", len(chunks), eol)
	}
	return New(chunks, eol, normalized)
}

// needsNormalizing reports whether any staged terminator differs from eol.
func (b *Builder) needsNormalizing(eol string) bool {
	if eol == "\r\n" {
		return b.cr > 0 || b.lf > 0
	}
	return b.cr > 0 || b.crlf > 0
}
