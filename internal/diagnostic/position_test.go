package diagnostic

import (
	"fmt"
	"testing"
)

func TestLineIndexSingleLine(t *testing.T) {
	source := "const x = 1;"
	idx := NewLineIndex(source)

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 0, 0},   // 'c'
		{6, 0, 6},   // 'x'
		{11, 0, 11}, // ';'
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestLineIndexMultiLine(t *testing.T) {
	source := "const x = 1;\nconst y = 2;\nconst z = 3;"
	idx := NewLineIndex(source)

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 0, 0},   // 'c' of first line
		{6, 0, 6},   // 'x' of first line
		{12, 0, 12}, // ';' of first line
		{13, 1, 0},  // 'c' of second line (after \n)
		{19, 1, 6},  // 'y' of second line
		{26, 2, 0},  // 'c' of third line
		{32, 2, 6},  // 'z' of third line
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestLineIndexNewlineStyles(t *testing.T) {
	// CRLF and lone CR each count as a single line break, same as LF.
	tests := []struct {
		name   string
		source string
		offset int
		line   int
		col    int
	}{
		{"unix_lf", "a\nb\nc", 4, 2, 0},
		{"windows_crlf", "a\r\nb\r\nc", 6, 2, 0},
		{"old_mac_cr", "a\rb\rc", 4, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewLineIndex(tt.source)
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestLineIndexCRLFPositions(t *testing.T) {
	source := "ab\r\ncd\r\nef"
	idx := NewLineIndex(source)

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 0, 0}, // 'a'
		{1, 0, 1}, // 'b'
		{2, 0, 2}, // '\r' (still on line 0)
		{4, 1, 0}, // 'c' (first char of line 1)
		{5, 1, 1}, // 'd'
		{8, 2, 0}, // 'e' (first char of line 2)
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestByteOffsetToLineColumnOutOfBounds(t *testing.T) {
	source := "abc"
	idx := NewLineIndex(source)

	line, col := idx.ByteOffsetToLineColumn(100)
	if line != 0 || col != 3 {
		t.Errorf("out of bounds offset: got (%d, %d), want (0, 3)", line, col)
	}

	line, col = idx.ByteOffsetToLineColumn(-1)
	if line != 0 || col != 0 {
		t.Errorf("negative offset: got (%d, %d), want (0, 0)", line, col)
	}
}

func TestByteOffsetToLineColumnEmptySourcePositiveOffset(t *testing.T) {
	idx := NewLineIndex("")
	line, col := idx.ByteOffsetToLineColumn(5)
	if line != 0 || col != 0 {
		t.Errorf("empty source, offset 5: got (%d, %d), want (0, 0)", line, col)
	}
}
