// Package markdown holds the line-oriented helpers every pricing parser shares:
// currency parsing, heading and pipe-table scanning, name cleanup and the
// processing-tier merge.
package markdown

import (
	"regexp"
	"strings"
)

// MinTableRows is header + separator + one data row.
const MinTableRows = 3

// Table is a Markdown pipe table with its separator row removed.
type Table struct {
	Header []string
	Rows   [][]string
	// Raw is the number of pipe lines consumed, separator included.
	Raw int
}

// Valid reports whether the table has enough lines to carry prices.
func (t Table) Valid() bool {
	return t.Raw >= MinTableRows && len(t.Header) > 0
}

// Column returns the index of the first header containing want
// (case-insensitive) and none of the excluded substrings, or -1.
func (t Table) Column(want string, exclude ...string) int {
	want = strings.ToLower(want)
	for i, h := range t.Header {
		lh := strings.ToLower(h)
		if !strings.Contains(lh, want) {
			continue
		}
		skip := false
		for _, ex := range exclude {
			if strings.Contains(lh, strings.ToLower(ex)) {
				skip = true
				break
			}
		}
		if !skip {
			return i
		}
	}
	return -1
}

// HasHeader reports whether any header contains want.
func (t Table) HasHeader(want string) bool {
	return t.Column(want) >= 0
}

// Cell returns row[idx], or "" when the column is missing.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// IsTableLine reports whether line is part of a pipe table.
func IsTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// SplitRow splits a pipe table line into trimmed cells.
func SplitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	parts := strings.Split(s, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

var separatorCell = regexp.MustCompile(`^:?-{3,}:?$`)

// IsSeparatorRow reports whether every non-empty cell is a --- marker.
func IsSeparatorRow(cells []string) bool {
	seen := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !separatorCell.MatchString(c) {
			return false
		}
		seen = true
	}
	return seen
}

// ReadTable consumes consecutive pipe lines starting at lines[start] and
// returns the table and the index of the first line after it.
func ReadTable(lines []string, start int) (Table, int) {
	var t Table
	i := start
	for ; i < len(lines) && IsTableLine(lines[i]); i++ {
		t.Raw++
		cells := SplitRow(lines[i])
		if t.Header == nil {
			t.Header = cells
			continue
		}
		if IsSeparatorRow(cells) {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, i
}

// SkipKey reports whether a row's key cell should be ignored: empty,
// a separator artifact, or a repeated "Model" header.
func SkipKey(cell string) bool {
	c := strings.TrimSpace(StripEmphasis(cell))
	if c == "" || strings.HasPrefix(c, "---") {
		return true
	}
	return strings.EqualFold(c, "model")
}

// Heading parses an ATX heading, returning its level and text.
func Heading(line string) (level int, text string, ok bool) {
	s := strings.TrimSpace(line)
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(s) || s[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(strings.TrimRight(s[level:], "#")), true
}

// Lines splits a document into lines, normalizing CRLF.
func Lines(doc string) []string {
	return strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
}
