package tui

import "strings"

var glyphs = map[rune][5]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {" ██", "  █", "  █", "  █", "  █"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {" ", "▪", " ", "▪", " "},
}

// BigClock renders text such as "24:59" in five-row block glyphs. Unknown
// runes are skipped.
func BigClock(text string) string {
	var rows [5]strings.Builder
	for _, char := range text {
		glyph, ok := glyphs[char]
		if !ok {
			continue
		}
		for row := range rows {
			if rows[row].Len() > 0 {
				rows[row].WriteString(" ")
			}
			rows[row].WriteString(glyph[row])
		}
	}
	lines := make([]string, len(rows))
	for row := range rows {
		lines[row] = rows[row].String()
	}
	return strings.Join(lines, "\n")
}
