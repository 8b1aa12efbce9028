package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicationOut ist die öffentliche Darstellung einer Publication inklusive Relationen.
type PublicationOut struct {
	ID         uint       `json:"id"`
	Title      string     `json:"title"`
	Filename   string     `json:"filename"`
	UploadDate time.Time  `json:"upload_date"`
	Journal    string     `json:"journal,omitempty"`
	Year       *int       `json:"year,omitempty"`
	DOI        *string    `json:"doi,omitempty"`
	Authors    []Author   `json:"authors"`
	Keywords   []Keyword  `json:"keywords"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

// NewPublicationOut baut die Darstellung; withOwner steuert, ob user_id enthalten ist.
func NewPublicationOut(p *Publication, withOwner bool) PublicationOut {
	out := PublicationOut{
		ID:         p.ID,
		Title:      p.Title,
		Filename:   p.Filename,
		UploadDate: p.UploadDate,
		Journal:    p.Journal,
		Year:       p.Year,
		DOI:        p.DOI,
		Authors:    p.Authors,
		Keywords:   p.Keywords,
	}
	if out.Authors == nil {
		out.Authors = []Author{}
	}
	if out.Keywords == nil {
		out.Keywords = []Keyword{}
	}
	if withOwner {
		owner := p.UserID
		out.UserID = &owner
	}
	return out
}

// UploadResponse beschreibt das Ergebnis einer Ingestion.
type UploadResponse struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Authors           []string   `json:"authors"`
	Keywords          []string   `json:"keywords"`
	Journal           string     `json:"journal,omitempty"`
	Year              *int       `json:"year,omitempty"`
	DOI               *string    `json:"doi,omitempty"`
	OriginalFilename  string     `json:"original_filename"`
	ConvertedFilename string     `json:"converted_filename"`
	ConversionMethod  string     `json:"conversion_method"`
	MetadataSource    string     `json:"metadata_source"`
	PageCount         int        `json:"page_count,omitempty"`
	BibTeXData        *BibRecord `json:"bibtex_data,omitempty"`
}

// BibRecord enthält die Felder des ersten Eintrags eines BibTeX-Dokuments.
type BibRecord struct {
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"`
	Year    *int   `json:"year,omitempty"`
	Journal string `json:"journal,omitempty"`
	DOI     string `json:"doi,omitempty"`
}
