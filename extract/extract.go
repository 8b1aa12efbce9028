// Package extract liefert Best-Effort-Klartext aus hochgeladenen Dokumenten für das Keyword-Ranking.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"scientify/converter"
	"scientify/docx"
)

// Dispatcher wählt das Extraktionsverfahren nach Dateiendung. Fehler werden nur geloggt.
type Dispatcher struct {
	Logger *zap.Logger
}

// NewDispatcher erstellt einen Dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{Logger: logger}
}

// Extract liefert bereinigten Text oder "" bei jedem Fehler. Extract gibt nie einen Fehler zurück und fängt Panics der Parser ab.
func (d *Dispatcher) Extract(filename string, content []byte) (text string) {
	log := d.Logger.With(zap.String("filename", filename))
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Textextraktion mit Panic abgebrochen", zap.Any("panic", r))
			text = ""
		}
	}()

	var (
		raw string
		err error
	)
	switch ext := converter.Ext(filename); ext {
	case ".pdf":
		raw, err = pdfText(content)
	case ".docx":
		raw, err = docxText(content)
	case ".tex", ".latex":
		raw = d.latexText(log, content)
	default:
		log.Warn("Dateityp für Textextraktion nicht unterstützt", zap.String("extension", ext))
		return ""
	}
	if err != nil {
		log.Warn("Textextraktion fehlgeschlagen", zap.Error(err))
		return ""
	}

	text = TrimReferences(Clean(raw))
	log.Debug("Text extrahiert", zap.Int("chars", len(text)))
	return text
}

// pdfText liest die Textebene Seite für Seite.
func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func docxText(content []byte) (string, error) {
	doc, err := docx.Parse(content)
	if err != nil {
		return "", err
	}
	return strings.Join(doc.Paragraphs(), "\n"), nil
}

func (d *Dispatcher) latexText(log *zap.Logger, content []byte) string {
	src := strings.ToValidUTF8(string(content), "")
	text, err := latexToText(src)
	if err == nil {
		return text
	}
	log.Warn("Strukturierte LaTeX-Konvertierung fehlgeschlagen, Befehle werden entfernt", zap.Error(err))
	return stripLatex(src)
}
