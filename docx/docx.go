// Package docx liest den Textinhalt von Office-Open-XML-Dokumenten (word/document.xml).
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Run ist ein zusammenhängender Textabschnitt mit einheitlicher Formatierung.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Paragraph ist ein Absatz mit Formatvorlage und Runs.
type Paragraph struct {
	Style    string
	ListItem bool
	Runs     []Run
}

// Text liefert den unformatierten Absatztext.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Table ist eine Tabelle mit reinem Zelltext. Verschachtelte Tabellen werden in die Zelle abgeflacht.
type Table struct {
	Rows [][]string
}

// Block ist entweder ein Absatz oder eine Tabelle in Dokumentreihenfolge.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Document ist der geparste Dokumentkörper.
type Document struct {
	Blocks []Block
}

// Paragraphs liefert die Texte aller Absätze außerhalb von Tabellen.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Paragraph != nil {
			out = append(out, b.Paragraph.Text())
		}
	}
	return out
}

// Parse liest ein .docx-Archiv aus dem Speicher.
func Parse(content []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, errors.New("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseBody(xml.NewDecoder(rc))
}

type parser struct {
	doc Document

	para   *Paragraph
	run    *Run
	inRun  bool
	inText bool

	tableDepth int
	table      *Table
	row        []string
	cell       strings.Builder
}

func parseBody(dec *xml.Decoder) (*Document, error) {
	p := &parser{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			if p.inText && p.run != nil {
				p.run.Text += string(t)
			}
		}
	}
	return &p.doc, nil
}

// wordNS ist der Namespace von WordprocessingML; DrawingML-Elemente (a:p, a:t) werden ignoriert.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

func inWordNS(n xml.Name) bool {
	return n.Space == "" || n.Space == wordNS
}

func (p *parser) start(t xml.StartElement) {
	if !inWordNS(t.Name) {
		return
	}
	switch t.Name.Local {
	case "tbl":
		if p.tableDepth == 0 {
			p.table = &Table{}
		}
		p.tableDepth++
	case "tr":
		if p.tableDepth == 1 {
			p.row = nil
		}
	case "tc":
		if p.tableDepth == 1 {
			p.cell.Reset()
		}
	case "p":
		p.para = &Paragraph{}
	case "pStyle":
		if p.para != nil {
			p.para.Style = attr(t, "val")
		}
	case "numPr":
		if p.para != nil {
			p.para.ListItem = true
		}
	case "r":
		p.run = &Run{}
		p.inRun = true
	case "b":
		if p.inRun {
			p.run.Bold = toggleOn(t)
		}
	case "i":
		if p.inRun {
			p.run.Italic = toggleOn(t)
		}
	case "u":
		if p.inRun {
			v := attr(t, "val")
			p.run.Underline = v != "none" && v != "0" && v != "false"
		}
	case "t":
		p.inText = true
	case "tab":
		if p.inRun {
			p.run.Text += "\t"
		}
	case "br", "cr":
		if p.inRun {
			p.run.Text += "\n"
		}
	}
}

func (p *parser) end(t xml.EndElement) {
	if !inWordNS(t.Name) {
		return
	}
	switch t.Name.Local {
	case "t":
		p.inText = false
	case "r":
		if p.para != nil && p.run != nil && p.run.Text != "" {
			p.para.Runs = append(p.para.Runs, *p.run)
		}
		p.run = nil
		p.inRun = false
	case "p":
		if p.para == nil {
			return
		}
		if p.tableDepth > 0 {
			text := strings.TrimSpace(p.para.Text())
			if text != "" {
				if p.cell.Len() > 0 {
					p.cell.WriteByte(' ')
				}
				p.cell.WriteString(text)
			}
		} else {
			p.doc.Blocks = append(p.doc.Blocks, Block{Paragraph: p.para})
		}
		p.para = nil
	case "tc":
		if p.tableDepth == 1 {
			p.row = append(p.row, p.cell.String())
		}
	case "tr":
		if p.tableDepth == 1 && p.table != nil {
			p.table.Rows = append(p.table.Rows, p.row)
		}
	case "tbl":
		p.tableDepth--
		if p.tableDepth == 0 && p.table != nil {
			p.doc.Blocks = append(p.doc.Blocks, Block{Table: p.table})
			p.table = nil
		}
	}
}

// HeadingLevel leitet die Überschriftenebene aus dem Namen der Formatvorlage ab.
// "Heading1" → 1, "Title" → 1, "Subtitle" → 2, sonst 0.
func HeadingLevel(style string) int {
	lower := strings.ToLower(style)

	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}

	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimSpace(lower[len(prefix):])
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn wertet OOXML-On/Off-Elemente wie <w:b/> oder <w:b w:val="0"/> aus.
func toggleOn(t xml.StartElement) bool {
	switch attr(t, "val") {
	case "0", "false", "off":
		return false
	}
	return true
}
