package diagnostic

import "sort"

// LineIndex provides efficient byte offset to line/column conversion. It
// pre-computes line start positions for O(log n) lookups, so the parser and
// the diagnostic list can both convert offsets without rescanning source on
// every call.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of each line start
}

// NewLineIndex scans source once for line boundaries (\n, \r, \r\n all
// count as one break) and returns an index ready for repeated lookups.
func NewLineIndex(source string) *LineIndex {
	lineStarts := []int{0}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			lineStarts = append(lineStarts, i+1)
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &LineIndex{source: source, lineStarts: lineStarts}
}

// ByteOffsetToLineColumn converts a byte offset to a 0-indexed line and
// column. offset is clamped to [0, len(source)].
func (idx *LineIndex) ByteOffsetToLineColumn(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(idx.source) {
		offset = len(idx.source)
	}
	line = sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - idx.lineStarts[line]
}
