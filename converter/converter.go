// Package converter überführt hochgeladene Dokumente in die kanonische PDF-Form.
package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Konvertierungsmethoden, wie sie in der Upload-Antwort gemeldet werden.
const (
	MethodNone     = "none"
	MethodPandoc   = "pandoc"
	MethodDocxHTML = "docx-html"
	MethodLatex    = "standard"
)

// Result ist das kanonische Dokument nach erfolgreicher Konvertierung.
type Result struct {
	Content  []byte
	Filename string
	Method   string
	// PageCount ist 0, wenn die Bytes unverändert durchgereicht wurden.
	PageCount int
}

// Outcome ist das explizite Ergebnis einer einzelnen Konvertierungsstufe.
type Outcome struct {
	Stage  string
	Result Result
	Err    error
}

// OK meldet, ob die Stufe erfolgreich war.
func (o Outcome) OK() bool {
	return o.Err == nil
}

func failed(stage string, err error) Outcome {
	return Outcome{Stage: stage, Err: err}
}

// Converter ist eine zustandslose Konvertierungsstrategie.
type Converter interface {
	Name() string
	Convert(ctx context.Context, content []byte, filename string) Outcome
}

// Chain probiert die Strategien der Reihe nach, bis eine erfolgreich ist.
type Chain []Converter

// Run liefert das erste erfolgreiche Outcome sowie alle Outcomes in Ausführungsreihenfolge.
// Ohne Erfolg trägt der erste Rückgabewert ErrExhausted.
func (c Chain) Run(ctx context.Context, content []byte, filename string) (Outcome, []Outcome) {
	attempts := make([]Outcome, 0, len(c))
	for _, conv := range c {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, failed(conv.Name(), err))
			break
		}
		out := conv.Convert(ctx, content, filename)
		if out.Stage == "" {
			out.Stage = conv.Name()
		}
		attempts = append(attempts, out)
		if out.OK() {
			return out, attempts
		}
	}
	return Outcome{Err: ErrExhausted}, attempts
}

// ErrExhausted ist das Outcome einer Kette, in der keine Stufe erfolgreich war.
var ErrExhausted = errors.New("all conversion stages failed")

// ConversionError wird geliefert, wenn alle Stufen einer Kette fehlgeschlagen sind.
type ConversionError struct {
	Extension string
	Attempts  []Outcome
}

func (e *ConversionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Stage, a.Err))
	}
	return fmt.Sprintf("conversion of %s failed (%s)", e.Extension, strings.Join(parts, "; "))
}

// Unwrap liefert die Fehler aller Stufen, damit errors.Is z.B. context.Canceled findet.
func (e *ConversionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// UnsupportedFormatError meldet eine Dateiendung ohne Konvertierungskette.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "unsupported file extension: file has no extension"
	}
	return fmt.Sprintf("unsupported file extension: %s", e.Extension)
}

// Ext liefert die kleingeschriebene Endung inklusive Punkt.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// PDFFilename ersetzt die Endung des Originalnamens durch ".pdf".
func PDFFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".pdf"
}
