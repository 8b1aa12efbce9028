package extract

import (
	"errors"
	"regexp"
	"strings"
)

// Befehle, deren Argumente keinen Fließtext enthalten.
var droppedCommands = map[string]bool{
	"documentclass": true, "usepackage": true, "label": true, "ref": true, "eqref": true,
	"cite": true, "citep": true, "citet": true, "includegraphics": true, "bibliography": true,
	"bibliographystyle": true, "input": true, "include": true, "newcommand": true,
	"renewcommand": true, "vspace": true, "hspace": true, "pagestyle": true, "setlength": true,
	"url": true,
}

var errUnbalanced = errors.New("unbalanced braces")

// latexToText wandelt LaTeX in Fließtext. Argumente von Auszeichnungsbefehlen bleiben erhalten,
// Umgebungsnamen, Kommentare und Metabefehle verschwinden. Unausgeglichene Klammern sind ein Fehler.
func latexToText(src string) (string, error) {
	var sb strings.Builder
	depth := 0

	for i := 0; i < len(src); {
		c := src[i]
		switch c {
		case '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '\\':
			if i+1 >= len(src) {
				i++
				continue
			}
			next := src[i+1]
			if !isLetter(next) {
				if next == '\\' {
					sb.WriteByte('\n')
				} else {
					sb.WriteByte(next)
				}
				i += 2
				continue
			}
			j := i + 1
			for j < len(src) && isLetter(src[j]) {
				j++
			}
			name := src[i+1 : j]
			for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
				j++
			}
			if j < len(src) && src[j] == '*' {
				j++
			}
			j = skipOptional(src, j)

			switch {
			case droppedCommands[name], name == "begin", name == "end":
				k, err := skipGroup(src, j)
				if err != nil {
					return "", err
				}
				j = skipOptional(src, k)
				if name == "begin" || name == "end" {
					sb.WriteByte('\n')
				}
			case name == "item", name == "par", name == "newline":
				sb.WriteByte('\n')
			default:
				sb.WriteByte(' ')
			}
			i = j
		case '{':
			depth++
			i++
		case '}':
			depth--
			if depth < 0 {
				return "", errUnbalanced
			}
			i++
		case '$', '&':
			sb.WriteByte(' ')
			i++
		case '~':
			sb.WriteByte(' ')
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	if depth != 0 {
		return "", errUnbalanced
	}
	return sb.String(), nil
}

// skipGroup überspringt eine {...}-Gruppe ab i, falls vorhanden.
func skipGroup(src string, i int) (int, error) {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i >= len(src) || src[i] != '{' {
		return i, nil
	}
	depth := 0
	for ; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, errUnbalanced
}

// skipOptional überspringt ein optionales [..]-Argument.
func skipOptional(src string, i int) int {
	if i >= len(src) || src[i] != '[' {
		return i
	}
	end := strings.IndexByte(src[i:], ']')
	if end < 0 {
		return i
	}
	return i + end + 1
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

var stripRules = []*regexp.Regexp{
	regexp.MustCompile(`\\[a-zA-Z]+\{[^}]*\}`),
	regexp.MustCompile(`\\[a-zA-Z]+`),
	regexp.MustCompile(`\{[^}]*\}`),
	regexp.MustCompile(`%.*`),
}

// stripLatex ist das grobe Ausweichverfahren, wenn latexToText scheitert.
func stripLatex(src string) string {
	for _, re := range stripRules {
		src = re.ReplaceAllString(src, "")
	}
	return strings.TrimSpace(src)
}
