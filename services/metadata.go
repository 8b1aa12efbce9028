package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nickng/bibtex"

	"scientify/models"
)

// Quelle der Metadaten in der Upload-Antwort.
const (
	SourceBibTeX = "bibtex"
	SourceManual = "manual"
)

var doiPattern = regexp.MustCompile(`(?i)^10\.\d{4,}/[-._;()/:\w\[\]]+$`)

// ValidDOI prüft einen DOI gegen das Muster 10.NNNN/suffix.
func ValidDOI(doi string) bool {
	return doiPattern.MatchString(doi)
}

// MetadataInput sind die vom Nutzer übergebenen Felder. Leere Strings gelten als nicht gesetzt.
type MetadataInput struct {
	BibTeX  []byte
	Title   string
	Authors string
	Year    string
	Journal string
	DOI     string
}

// Metadata ist das Ergebnis der Zusammenführung aus BibTeX und manuellen Feldern.
type Metadata struct {
	Title   string
	Authors string
	Year    int
	Journal string
	DOI     string
	Source  string
	// Record ist der geparste BibTeX-Eintrag, nil bei manueller Eingabe.
	Record *models.BibRecord
}

// ResolveMetadata führt BibTeX-Eintrag und manuelle Felder zusammen. Ein nicht-leerer Nutzerwert gewinnt je Feld.
// Reihenfolge der Prüfungen: BibTeX parsen, DOI-Format, Pflichtfelder. Die DOI-Eindeutigkeit prüft der Aufrufer.
func ResolveMetadata(in MetadataInput) (*Metadata, error) {
	md := &Metadata{Source: SourceManual}
	year := strings.TrimSpace(in.Year)

	if len(strings.TrimSpace(string(in.BibTeX))) > 0 {
		rec, err := ParseBibTeX(in.BibTeX)
		if err != nil {
			return nil, err
		}
		md.Source = SourceBibTeX
		md.Record = rec
		md.Title = rec.Title
		md.Authors = rec.Authors
		md.Journal = rec.Journal
		md.DOI = rec.DOI
		if rec.Year != nil {
			md.Year = *rec.Year
		}
	}

	md.Title = prefer(in.Title, md.Title)
	md.Authors = prefer(in.Authors, md.Authors)
	md.Journal = prefer(in.Journal, md.Journal)
	md.DOI = prefer(in.DOI, md.DOI)
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, invalid("invalid year", fmt.Sprintf("year %q is not an integer", year))
		}
		md.Year = y
	}

	if md.DOI != "" && !ValidDOI(md.DOI) {
		return nil, invalid("invalid DOI", fmt.Sprintf("%q does not match 10.NNNN/suffix", md.DOI))
	}

	var missing []string
	if md.Title == "" {
		missing = append(missing, "title")
	}
	if len(SplitAuthors(md.Authors)) == 0 {
		missing = append(missing, "authors")
	}
	if md.Year == 0 {
		missing = append(missing, "year")
	}
	if md.Journal == "" {
		missing = append(missing, "journal")
	}
	if len(missing) > 0 {
		return nil, invalid("missing required fields", missing...)
	}
	return md, nil
}

func prefer(user, parsed string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	return strings.TrimSpace(parsed)
}

// Unquotierte Werte wie "year = 2020" würden sonst als @string-Variable aufgelöst.
var bareBibValue = regexp.MustCompile(`(?m)(=\s*)([A-Za-z0-9_.:/-]+)(\s*[,}])`)

// ParseBibTeX liest den ersten Eintrag eines BibTeX-Dokuments.
func ParseBibTeX(raw []byte) (rec *models.BibRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, invalid("invalid BibTeX", fmt.Sprint(r))
		}
	}()

	src := bareBibValue.ReplaceAllString(string(raw), "${1}{${2}}${3}")
	bib, err := bibtex.Parse(strings.NewReader(src))
	if err != nil {
		return nil, invalid("invalid BibTeX", err.Error())
	}
	if len(bib.Entries) == 0 {
		return nil, invalid("invalid BibTeX", "no entries found")
	}
	entry := bib.Entries[0]

	field := func(names ...string) string {
		for _, n := range names {
			for key, v := range entry.Fields {
				if !strings.EqualFold(key, n) || v == nil {
					continue
				}
				if s := cleanBibValue(v.String()); s != "" {
					return s
				}
			}
		}
		return ""
	}

	rec = &models.BibRecord{
		Title:   field("title"),
		Authors: bibAuthors(field("author", "authors")),
		Journal: field("journal", "journaltitle", "booktitle"),
		DOI:     field("doi"),
	}
	if y := field("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return nil, invalid("invalid BibTeX", fmt.Sprintf("year %q is not an integer", y))
		}
		rec.Year = &year
	}
	return rec, nil
}

// cleanBibValue entfernt Schutzklammern und überzählige Leerzeichen.
func cleanBibValue(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = strings.Trim(strings.TrimSpace(s), `"`)
	return strings.Join(strings.Fields(s), " ")
}

// bibAuthors wandelt "Last, First and Other, Name" in "First Last, Name Other".
func bibAuthors(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, " and ")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if last, first, ok := strings.Cut(p, ","); ok {
			p = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
		}
		if p != "" {
			names = append(names, p)
		}
	}
	return strings.Join(names, ", ")
}

// SplitAuthors trennt den Autoren-String an Kommas in getrimmte, nicht-leere Namen.
func SplitAuthors(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
