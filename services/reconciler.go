package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scientify/models"
)

// maxReconcileAttempts begrenzt Lookup/Insert-Runden bei konkurrierenden Einfügungen.
const maxReconcileAttempts = 5

// Reconciler löst Autoren und Keywords auf bestehende Zeilen auf oder legt sie an.
// Die Unique-Indizes auf name sind die eigentliche Garantie; ein verlorenes Rennen führt zu einem erneuten Lookup.
type Reconciler struct{}

type namedEntity interface {
	models.Author | models.Keyword
}

// ResolveAuthor sucht einen Autor exakt (case-sensitive) nach Namen oder legt ihn an.
func (Reconciler) ResolveAuthor(tx *gorm.DB, name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty author name")
	}
	return getOrCreate(tx, name, func() *models.Author { return &models.Author{Name: name} })
}

// ResolveKeyword normalisiert den Namen (klein, getrimmt) und sucht oder legt das Keyword an.
func (Reconciler) ResolveKeyword(tx *gorm.DB, name string) (*models.Keyword, error) {
	name = NormalizeKeyword(name)
	if name == "" {
		return nil, errors.New("empty keyword")
	}
	return getOrCreate(tx, name, func() *models.Keyword { return &models.Keyword{Name: name} })
}

// NormalizeKeyword liefert die kanonische Form eines Keywords.
func NormalizeKeyword(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func getOrCreate[T namedEntity](tx *gorm.DB, name string, build func() *T) (*T, error) {
	for attempt := 0; attempt < maxReconcileAttempts; attempt++ {
		var existing T
		err := tx.Where("name = ?", name).Take(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup %q: %w", name, err)
		}

		row := build()
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(row)
		switch {
		case res.Error == nil && res.RowsAffected == 1:
			return row, nil
		case res.Error == nil, errors.Is(res.Error, gorm.ErrDuplicatedKey):
			// Eine parallele Transaktion hat den Namen zuerst angelegt.
			continue
		default:
			return nil, fmt.Errorf("insert %q: %w", name, res.Error)
		}
	}
	return nil, fmt.Errorf("could not reconcile %q after %d attempts", name, maxReconcileAttempts)
}
