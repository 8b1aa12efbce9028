package models

import (
	"time"

	"github.com/google/uuid"
)

// Publication repräsentiert ein hochgeladenes wissenschaftliches Dokument in kanonischer PDF-Form.
type Publication struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"not null"`

	// Kanonische Dokument-Bytes, nur über /download ausgeliefert
	File       []byte    `json:"-" gorm:"not null"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date" gorm:"not null;index"`

	Journal string  `json:"journal,omitempty"`
	Year    *int    `json:"year,omitempty"`
	DOI     *string `json:"doi,omitempty" gorm:"column:doi;uniqueIndex"`

	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	Authors  []Author  `json:"authors" gorm:"many2many:publication_authors;constraint:OnDelete:CASCADE"`
	Keywords []Keyword `json:"keywords" gorm:"many2many:publication_keywords;constraint:OnDelete:CASCADE"`

	// Archiv-Spiegel
	ArchivedAt *time.Time `json:"-" gorm:"index"`
	S3Link     string     `json:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (Publication) TableName() string {
	return "publications"
}

// AuthorNames liefert die Namen aller Autoren in Relationsreihenfolge.
func (p *Publication) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return names
}

// KeywordNames liefert die Namen aller Keywords in Relationsreihenfolge.
func (p *Publication) KeywordNames() []string {
	names := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		names = append(names, k.Name)
	}
	return names
}
