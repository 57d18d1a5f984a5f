package timeline

// Year mention extraction. Two forms appear in the transcripts: full
// years ("1947") and apostrophe-abbreviated ones ("'47"). A full year
// must be a digit run of exactly four digits inside 1800-1999, so
// "2024" and "12345" never match. Go's regexp has no lookbehind, so
// the boundary rules are enforced by scanning digit runs directly.

const (
	fullYearMin = 1800
	fullYearMax = 1999
)

// YearMention is one year found in free text.
type YearMention struct {
	Year int
	// Pos and End delimit the matched token in the input, including
	// the apostrophe for abbreviated years.
	Pos int
	End int
}

// ExtractYears finds all year mentions in text, in order. span is the
// century anchor for abbreviated years: '47 resolves to the year
// ending in 47 inside [spanStart, spanEnd] when one exists.
func ExtractYears(text string, spanStart, spanEnd int) []YearMention {
	var out []YearMention
	n := len(text)

	for i := 0; i < n; {
		if !isDigit(text[i]) {
			i++
			continue
		}

		runStart := i
		for i < n && isDigit(text[i]) {
			i++
		}
		runLen := i - runStart

		switch {
		case runLen == 4:
			year := atoi4(text[runStart:i])
			if year >= fullYearMin && year <= fullYearMax {
				out = append(out, YearMention{Year: year, Pos: runStart, End: i})
			}
		case runLen == 2 && runStart > 0 && text[runStart-1] == '\'':
			short := atoi4(text[runStart:i])
			if year, ok := resolveShortYear(short, spanStart, spanEnd); ok {
				out = append(out, YearMention{Year: year, Pos: runStart - 1, End: i})
			}
		}
	}
	return out
}

// resolveShortYear places a two-digit year in the century that lands
// it inside [spanStart, spanEnd].
func resolveShortYear(short, spanStart, spanEnd int) (int, bool) {
	for century := spanStart / 100 * 100; century <= spanEnd; century += 100 {
		year := century + short
		if year >= spanStart && year <= spanEnd {
			return year, true
		}
	}
	return 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func atoi4(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return v
}

// Part is one piece of linkified text: either plain text (Year 0,
// Entry -1) or a year mention linked to a timeline entry index.
type Part struct {
	Text  string `json:"text"`
	Year  int    `json:"year,omitempty"`
	Entry int    `json:"entry"`
}

// Linkify splits text into literal parts and year links resolved
// against the timeline entries. A year links to the first entry whose
// range contains it; years no entry covers are left as plain text.
func Linkify(text string, entries []Entry, spanStart, spanEnd int) []Part {
	mentions := ExtractYears(text, spanStart, spanEnd)
	var parts []Part
	last := 0

	for _, m := range mentions {
		entry := -1
		for i, e := range entries {
			if e.Contains(m.Year) {
				entry = i
				break
			}
		}
		if entry < 0 {
			continue
		}
		if m.Pos > last {
			parts = append(parts, Part{Text: text[last:m.Pos], Entry: -1})
		}
		parts = append(parts, Part{Text: text[m.Pos:m.End], Year: m.Year, Entry: entry})
		last = m.End
	}
	if last < len(text) {
		parts = append(parts, Part{Text: text[last:], Entry: -1})
	}
	return parts
}
