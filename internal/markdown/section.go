package markdown

import "strings"

// Section returns the lines below the first heading whose text equals title
// (case-insensitive), up to the next heading of the same or a higher level.
// Deeper headings stay inside the section; parsers use them as tier labels.
func Section(lines []string, title string) ([]string, bool) {
	start, level := -1, 0
	for i, line := range lines {
		lv, text, ok := Heading(line)
		if !ok {
			continue
		}
		if start < 0 {
			if strings.EqualFold(StripEmphasis(text), title) {
				start, level = i+1, lv
			}
			continue
		}
		if lv <= level {
			return lines[start:i], true
		}
	}
	if start < 0 {
		return nil, false
	}
	return lines[start:], true
}

// Sections splits a document at every heading of the given level and returns
// each heading's text with its body, in document order.
func Sections(lines []string, level int) []Block {
	var blocks []Block
	var cur *Block
	for _, line := range lines {
		if lv, text, ok := Heading(line); ok && lv <= level {
			if cur != nil {
				blocks = append(blocks, *cur)
				cur = nil
			}
			if lv == level {
				cur = &Block{Title: StripEmphasis(text)}
			}
			continue
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

// Block is a heading and the lines beneath it.
type Block struct {
	Title string
	Lines []string
}

// Tables reads every valid pipe table in lines, invoking fn with the tier
// label in effect when the table started.
func Tables(lines []string, fn func(t Table, tier Tier)) {
	tier := TierStandard
	for i := 0; i < len(lines); {
		if t, ok := TierLabel(lines[i]); ok {
			tier = t
			i++
			continue
		}
		if !IsTableLine(lines[i]) {
			i++
			continue
		}
		table, next := ReadTable(lines, i)
		i = next
		if table.Valid() {
			fn(table, tier)
		}
	}
}
