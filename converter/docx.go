package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scientify/docx"
)

const docxTitle = "DOCX Document"

// PandocConverter ist die hochwertige .docx-Stufe über das externe pandoc-Binary.
type PandocConverter struct {
	// Path zum pandoc-Binary
	Path    string
	printer printer
}

// NewPandocConverter erstellt die pandoc-Stufe.
func NewPandocConverter(path string, renderer Renderer, verify Verifier) *PandocConverter {
	if path == "" {
		path = "pandoc"
	}
	return &PandocConverter{Path: path, printer: printer{renderer: renderer, verify: verify, sanitizer: NewSanitizer()}}
}

// Name implementiert Converter.
func (c *PandocConverter) Name() string { return MethodPandoc }

// Convert implementiert Converter.
func (c *PandocConverter) Convert(ctx context.Context, content []byte, filename string) Outcome {
	body, err := c.toHTML(ctx, content)
	if err != nil {
		return failed(c.Name(), err)
	}
	pdf, pages, err := c.printer.print(ctx, body, docxTitle)
	if err != nil {
		return failed(c.Name(), err)
	}
	return Outcome{Stage: c.Name(), Result: Result{
		Content:   pdf,
		Filename:  PDFFilename(filename),
		Method:    MethodPandoc,
		PageCount: pages,
	}}
}

// toHTML schreibt das Dokument in ein temporäres Verzeichnis und lässt pandoc HTML erzeugen.
// Das Verzeichnis wird auf jedem Pfad entfernt.
func (c *PandocConverter) toHTML(ctx context.Context, content []byte) (string, error) {
	if _, err := exec.LookPath(c.Path); err != nil {
		return "", fmt.Errorf("pandoc not available: %w", err)
	}

	dir, err := os.MkdirTemp("", "scientify-pandoc-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.docx")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return "", fmt.Errorf("write temp docx: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, "--from=docx", "--to=html", src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("pandoc: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return "", errors.New("pandoc produced no output")
	}
	return stdout.String(), nil
}

// DocxHTMLConverter ist die Ausweichstufe für .docx. Sie liest das Dokument selbst und baut einfaches HTML.
type DocxHTMLConverter struct {
	printer printer
}

// NewDocxHTMLConverter erstellt die Ausweichstufe.
func NewDocxHTMLConverter(renderer Renderer, verify Verifier) *DocxHTMLConverter {
	return &DocxHTMLConverter{printer: printer{renderer: renderer, verify: verify, sanitizer: NewSanitizer()}}
}

// Name implementiert Converter.
func (c *DocxHTMLConverter) Name() string { return MethodDocxHTML }

// Convert implementiert Converter.
func (c *DocxHTMLConverter) Convert(ctx context.Context, content []byte, filename string) Outcome {
	doc, err := docx.Parse(content)
	if err != nil {
		return failed(c.Name(), err)
	}
	pdf, pages, err := c.printer.print(ctx, DocxToHTML(doc), docxTitle)
	if err != nil {
		return failed(c.Name(), err)
	}
	return Outcome{Stage: c.Name(), Result: Result{
		Content:   pdf,
		Filename:  PDFFilename(filename),
		Method:    MethodDocxHTML,
		PageCount: pages,
	}}
}

// DocxToHTML baut aus einem geparsten Dokument ein HTML-Fragment.
// Überschriften folgen der Formatvorlage, aufeinanderfolgende Listenabsätze werden zu einer <ul>.
func DocxToHTML(doc *docx.Document) string {
	var sb strings.Builder
	inList := false
	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, b := range doc.Blocks {
		switch {
		case b.Table != nil:
			closeList()
			writeTable(&sb, b.Table)
		case b.Paragraph != nil:
			p := b.Paragraph
			if strings.TrimSpace(p.Text()) == "" {
				continue
			}
			if p.ListItem {
				if !inList {
					sb.WriteString("<ul>\n")
					inList = true
				}
				sb.WriteString("<li>")
				writeRuns(&sb, p.Runs)
				sb.WriteString("</li>\n")
				continue
			}
			closeList()
			tag := "p"
			if lvl := docx.HeadingLevel(p.Style); lvl > 0 {
				tag = fmt.Sprintf("h%d", lvl)
			}
			sb.WriteString("<" + tag + ">")
			writeRuns(&sb, p.Runs)
			sb.WriteString("</" + tag + ">\n")
		}
	}
	closeList()
	return sb.String()
}

func writeRuns(sb *strings.Builder, runs []docx.Run) {
	for _, r := range runs {
		text := html.EscapeString(r.Text)
		if r.Underline {
			text = "<u>" + text + "</u>"
		}
		if r.Italic {
			text = "<em>" + text + "</em>"
		}
		if r.Bold {
			text = "<strong>" + text + "</strong>"
		}
		sb.WriteString(text)
	}
}

func writeTable(sb *strings.Builder, t *docx.Table) {
	sb.WriteString("<table>\n")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
}
