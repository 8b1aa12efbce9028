package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ligatures = strings.NewReplacer(
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬀ", "ff",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
		"ﬆ", "st",
		"œ", "oe",
		"æ", "ae",
	)

	// "ab-\nweichung" -> "abweichung"
	hyphenBreak  = regexp.MustCompile(`([\p{L}\p{N}])-\r?\n([\p{Ll}])`)
	pageNumber   = regexp.MustCompile(`^(?:[Pp]age\s*)?\d+(?:\s*/\s*\d+)?$`)
	spaceRun     = regexp.MustCompile("[ \t\f\v\u00A0]+")
	newlineRun   = regexp.MustCompile(`\n{3,}`)
	nonTextRunes = regexp.MustCompile(`[^\p{L}\p{N}\s\-.,;:()\[\]{}'"/]`)
)

// Clean bereitet extrahierten Text für das Keyword-Ranking auf.
// NFKC, Ligaturen, Silbentrennung am Zeilenende, Seitenzahlen und überzählige Leerzeichen.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = normalizeUnicode(s)
	s = hyphenBreak.ReplaceAllString(s, "$1$2")
	s = nonTextRunes.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spaceRun.ReplaceAllString(l, " "))
		if pageNumber.MatchString(l) {
			continue
		}
		kept = append(kept, l)
	}
	s = strings.Join(kept, "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func normalizeUnicode(s string) string {
	s = ligatures.Replace(s)
	out, _, err := transform.String(norm.NFKC, s)
	if err != nil {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return ' '
		}
		return r
	}, out)
}
