package models

// Keyword ist ein geteiltes Schlagwort. Der Name ist immer kleingeschrieben und getrimmt.
type Keyword struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Keyword) TableName() string {
	return "keywords"
}
