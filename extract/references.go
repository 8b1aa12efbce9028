package extract

import (
	"regexp"
	"strings"
)

var referenceHeadings = []string{
	"References",
	"Bibliography",
	"Literature",
	"Works Cited",
	"Literaturverzeichnis",
	"Literatur",
	"Quellen",
}

var referenceHeading = regexp.MustCompile(`(?i)^(?:#{1,2}\s*|[0-9]+\.?\s*)?(?:` +
	strings.Join(referenceHeadings, "|") + `)\s*$`)

// TrimReferences schneidet den Text ab der Überschrift des Literaturverzeichnisses ab.
// Steht die Überschrift in der ersten Zeile oder fehlt sie, bleibt der Text unverändert.
func TrimReferences(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if referenceHeading.MatchString(strings.TrimSpace(line)) {
			return strings.TrimSpace(strings.Join(lines[:i], "\n"))
		}
	}
	return text
}
