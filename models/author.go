package models

// Author ist ein geteilter Autoreneintrag. Der Name ist exakt (case-sensitive) eindeutig.
type Author struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors"
}
