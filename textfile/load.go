package textfile

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/guiguan/caster"
	"github.com/npillmayer/piecetree"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Fragment is the progress event a Loader broadcasts after reading one
// fragment of the input file.
type Fragment struct {
	Pos int // byte position of the fragment within the decoded input
	Len int // decoded fragment length in bytes
}

// Load reads a text file and builds a piece tree from its content.
//
// The file is read in bounded fragments; a BOM selects the input encoding
// (UTF-8 is assumed without one). The resulting tree has its EOL elected
// from the terminators found in the file, without normalization.
func Load(name string) (*piecetree.Tree, error) {
	l := NewLoader()
	defer l.Close()
	return l.Load(name)
}

// Loader reads files fragment by fragment and publishes a Fragment event for
// each. Subscribers registered before Load starts receive every event.
//
// A Loader may load several files sequentially; it is not safe for
// concurrent use.
type Loader struct {
	cast     *caster.Caster
	fragSize int
}

// NewLoader creates a loader with the default fragment size.
func NewLoader() *Loader {
	return &Loader{
		cast:     caster.New(nil),
		fragSize: piecetree.AverageBufferSize,
	}
}

// Subscribe registers a progress channel. The returned cancel function
// unsubscribes; the channel is closed when the loader is closed.
func (l *Loader) Subscribe() (<-chan interface{}, func()) {
	ch, _ := l.cast.Sub(nil, 16)
	return ch, func() { l.cast.Unsub(ch) }
}

// Close shuts down the progress broadcast and releases all subscribers.
func (l *Loader) Close() {
	l.cast.Close()
}

// Load reads one file and builds a piece tree, broadcasting a Fragment event
// per fragment read.
func (l *Loader) Load(name string) (*piecetree.Tree, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("file is not a regular file")
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	tracer().Debugf("textfile: loading %q (%d bytes)", name, fi.Size())

	// BOMOverride switches to UTF-16 when the file starts with its BOM and
	// strips a UTF-8 BOM; plain files pass through undecoded.
	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	builder := piecetree.NewBuilder()
	pos := 0
	buf := make([]byte, l.fragSize)
	var carry []byte
	for {
		n, err := decoded.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			cut := completePrefix(chunk)
			if appendErr := builder.AppendString(string(chunk[:cut])); appendErr != nil {
				return nil, appendErr
			}
			carry = append([]byte(nil), chunk[cut:]...)
			l.cast.Pub(Fragment{Pos: pos, Len: cut})
			pos += cut
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error loading text fragment: %w", err)
		}
	}
	if len(carry) > 0 {
		if err := builder.AppendString(string(carry)); err != nil {
			return nil, err
		}
		l.cast.Pub(Fragment{Pos: pos, Len: len(carry)})
	}
	return builder.Build(false)
}

// completePrefix returns the length of the longest prefix of chunk which
// does not end inside a multi-byte UTF-8 sequence.
func completePrefix(chunk []byte) int {
	n := len(chunk)
	if n == 0 {
		return 0
	}
	start := n - 1
	for start > 0 && chunk[start]&0xC0 == 0x80 {
		start--
	}
	if chunk[start] >= 0x80 && !utf8.FullRune(chunk[start:]) {
		return start
	}
	return n
}
