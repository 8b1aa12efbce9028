package converter

import (
	"context"
	"html"
	"regexp"
	"strings"
)

// Rule ist eine einzelne Ersetzung der LaTeX→HTML-Tabelle.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

func rule(name, pattern, replacement string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// LatexRules wird in genau dieser Reihenfolge angewendet. Spätere Regeln sehen die Ausgabe der früheren.
var LatexRules = []Rule{
	// Strukturbefehle
	rule("documentclass", `\\documentclass(?:\[[^\]]*\])?\{[^}]*\}`, ""),
	rule("usepackage", `\\usepackage(?:\[[^\]]*\])?\{[^}]*\}`, ""),
	rule("begin-document", `\\begin\{document\}`, ""),
	rule("end-document", `\\end\{document\}`, ""),
	rule("maketitle", `\\maketitle`, ""),

	// Titelei
	rule("title", `\\title\{([^}]*)\}`, `<h1 class="title">${1}</h1>`),
	rule("author", `\\author\{([^}]*)\}`, `<h3 class="author">${1}</h3>`),
	rule("date", `\\date\{([^}]*)\}`, `<h4 class="date">${1}</h4>`),

	// Gliederung
	rule("section", `\\section\*?\{([^}]*)\}`, `<h2>${1}</h2>`),
	rule("subsection", `\\subsection\*?\{([^}]*)\}`, `<h3>${1}</h3>`),
	rule("subsubsection", `\\subsubsection\*?\{([^}]*)\}`, `<h4>${1}</h4>`),
	rule("paragraph", `\\paragraph\{([^}]*)\}`, `<h5>${1}</h5>`),

	// Auszeichnungen
	rule("textbf", `\\textbf\{([^}]*)\}`, `<strong>${1}</strong>`),
	rule("textit", `\\textit\{([^}]*)\}`, `<em>${1}</em>`),
	rule("emph", `\\emph\{([^}]*)\}`, `<em>${1}</em>`),
	rule("underline", `\\underline\{([^}]*)\}`, `<u>${1}</u>`),
	rule("texttt", `\\texttt\{([^}]*)\}`, `<code>${1}</code>`),

	// Mathematik bleibt ungerendert
	rule("math-block", `\$\$([^$]+)\$\$`, `<div class="math-block">${1}</div>`),
	rule("math-inline", `\$([^$]+)\$`, `<span class="math-inline">${1}</span>`),

	// Listen
	rule("begin-itemize", `\\begin\{itemize\}`, "<ul>"),
	rule("end-itemize", `\\end\{itemize\}`, "</ul>"),
	rule("begin-enumerate", `\\begin\{enumerate\}`, "<ol>"),
	rule("end-enumerate", `\\end\{enumerate\}`, "</ol>"),
	rule("item", `\\item(?:\[[^\]]*\])?\s*`, "<li>"),

	rule("begin-quote", `\\begin\{quote\}`, "<blockquote>"),
	rule("end-quote", `\\end\{quote\}`, "</blockquote>"),

	// Gleitumgebungen werden zu Platzhaltern
	rule("figure", `(?s)\\begin\{figure\*?\}.*?\\end\{figure\*?\}`, `<div class="figure">[Figure]</div>`),
	rule("table", `(?s)\\begin\{table\*?\}.*?\\end\{table\*?\}`, `<div class="table">[Table]</div>`),

	// Zeilenumbruch vor dem Entfernen von Befehlen, sonst frisst \\[a-zA-Z]+ das Folgewort.
	rule("linebreak", `\\\\`, "<br>"),

	// Übrige Befehle entfernen
	rule("command-with-arg", `\\[a-zA-Z]+(?:\[[^\]]*\])?\{[^}]*\}`, ""),
	rule("command", `\\[a-zA-Z]+`, ""),

	// Absätze und Leerraum
	rule("paragraph-break", `\n\s*\n`, "</p><p>"),
	rule("whitespace", `\s+`, " "),
}

// ApplyRules wendet die Regeln nacheinander auf s an.
func ApplyRules(rules []Rule, s string) string {
	for _, r := range rules {
		s = r.Pattern.ReplaceAllString(s, r.Replacement)
	}
	return s
}

// LatexToHTML übersetzt LaTeX-Quelltext in ein HTML-Fragment. Ungültige UTF-8-Sequenzen werden ersetzt.
func LatexToHTML(src []byte) string {
	text := strings.ToValidUTF8(string(src), "\uFFFD")
	text = html.EscapeString(text)
	return strings.TrimSpace(ApplyRules(LatexRules, text))
}

// LatexConverter ist die einstufige Kette für .tex/.latex.
type LatexConverter struct {
	printer printer
}

// NewLatexConverter erstellt die LaTeX-Stufe.
func NewLatexConverter(renderer Renderer, verify Verifier) *LatexConverter {
	return &LatexConverter{printer: printer{renderer: renderer, verify: verify, sanitizer: NewSanitizer()}}
}

// Name implementiert Converter.
func (c *LatexConverter) Name() string { return MethodLatex }

// Convert implementiert Converter.
func (c *LatexConverter) Convert(ctx context.Context, content []byte, filename string) Outcome {
	body := LatexToHTML(content)
	pdf, pages, err := c.printer.print(ctx, "<p>"+body+"</p>", "LaTeX Document")
	if err != nil {
		return failed(c.Name(), err)
	}
	return Outcome{Stage: c.Name(), Result: Result{
		Content:   pdf,
		Filename:  PDFFilename(filename),
		Method:    MethodLatex,
		PageCount: pages,
	}}
}
