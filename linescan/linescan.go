package linescan

// Scan is the result of scanning a text for line breaks.
//
// LineStarts[0] is always 0; for every line break the offset just past the
// break is appended, so LineStarts[i] is the byte offset of the first byte of
// line i. A "\r\n" pair counts as a single break of width 2.
type Scan struct {
	LineStarts []int
	CR         int // count of isolated '\r'
	LF         int // count of isolated '\n'
	CRLF       int // count of "\r\n" pairs
	// IsBasicASCII is true iff every byte is '\t' or within [0x20, 0x7E].
	IsBasicASCII bool
}

// Breaks returns the total number of line breaks found.
func (sc Scan) Breaks() int {
	return sc.CR + sc.LF + sc.CRLF
}

// Text scans text for line breaks and classifies them.
//
// This is the one place where '\r' and '\n' are interpreted; everything else
// in the module works off the resulting offsets.
func Text(text string) Scan {
	sc := Scan{
		LineStarts:   []int{0},
		IsBasicASCII: true,
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				sc.CRLF++
				sc.LineStarts = append(sc.LineStarts, i+2)
				i++
			} else {
				sc.CR++
				sc.LineStarts = append(sc.LineStarts, i+1)
			}
		case '\n':
			sc.LF++
			sc.LineStarts = append(sc.LineStarts, i+1)
		default:
			if c != '\t' && (c < 0x20 || c > 0x7e) {
				sc.IsBasicASCII = false
			}
		}
	}
	return sc
}

// LineStarts is the fast variant of Text for callers which only need the
// offset table.
func LineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				starts = append(starts, i+2)
				i++
			} else {
				starts = append(starts, i+1)
			}
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}
