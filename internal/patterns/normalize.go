// Package patterns provides shared regex patterns and text helpers for
// tweet parsing.
package patterns

import "strings"

// decorativeRanges lists the Unicode ranges the posting account uses for
// decorative glyphs. Anything in these ranges carries no structured
// information and is stripped before a line is classified.
var decorativeRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F900, 0x1F9FF}, // supplemental symbols and pictographs
	{0x1FA70, 0x1FAFF}, // symbols and pictographs extended
	{0x1F1E6, 0x1F1FF}, // regional indicators (flag pairs)
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats (includes the airplane glyph)
	{0x3000, 0x303F},   // CJK symbols and punctuation
	{0xFE00, 0xFE0F},   // variation selectors
	{0x200D, 0x200D},   // zero-width joiner
	{0x20E3, 0x20E3},   // combining enclosing keycap
}

func isDecorative(r rune) bool {
	for _, rng := range decorativeRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// Normalize strips decorative glyphs from a line and trims surrounding
// whitespace. ASCII letters, digits and the grammar separators (pipe,
// dash, colon, space) pass through untouched.
func Normalize(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if isDecorative(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
