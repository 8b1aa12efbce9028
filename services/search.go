package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/models"
)

// Order ist eine Sortierrichtung für Publikationslisten.
type Order string

const (
	OrderDateAsc   Order = "date_asc"
	OrderDateDesc  Order = "date_desc"
	OrderTitleAsc  Order = "title_asc"
	OrderTitleDesc Order = "title_desc"
)

// ParseOrder liest order_by. Unbekannte oder leere Werte ergeben date_desc.
func ParseOrder(s string) Order {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderDateAsc, OrderDateDesc, OrderTitleAsc, OrderTitleDesc:
		return o
	default:
		return OrderDateDesc
	}
}

// orderClause ist die SQL-Sortierung. Titel werden ohne Beachtung der Groß-/Kleinschreibung sortiert.
func (o Order) orderClause() string {
	switch o {
	case OrderDateAsc:
		return "publications.upload_date ASC, publications.id ASC"
	case OrderTitleAsc:
		return "LOWER(publications.title) ASC, publications.id ASC"
	case OrderTitleDesc:
		return "LOWER(publications.title) DESC, publications.id DESC"
	default:
		return "publications.upload_date DESC, publications.id DESC"
	}
}

// less ist dieselbe Sortierung für bereits geladene Publikationen, Gleichstand entscheidet die ID.
func (o Order) less(a, b *models.Publication) bool {
	switch o {
	case OrderDateAsc:
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.Before(b.UploadDate)
		}
		return a.ID < b.ID
	case OrderTitleAsc:
		if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
			return ta < tb
		}
		return a.ID < b.ID
	case OrderTitleDesc:
		if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
			return ta > tb
		}
		return a.ID > b.ID
	default:
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.After(b.UploadDate)
		}
		return a.ID > b.ID
	}
}

// SortPublications sortiert nach der Richtung o. SQL-Liste und Suchergebnis teilen damit eine Reihenfolge.
func SortPublications(pubs []models.Publication, o Order) {
	sort.SliceStable(pubs, func(i, j int) bool { return o.less(&pubs[i], &pubs[j]) })
}

// SearchService implementiert die gestufte Suche über Keywords, Autoren und Titel.
type SearchService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewSearchService erstellt den Suchdienst.
func NewSearchService(db *gorm.DB, logger *zap.Logger) *SearchService {
	return &SearchService{DB: db, Logger: logger}
}

// listScope lädt Publikationen ohne Dateiinhalt, aber mit Relationen.
func listScope(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Publication{}).Omit("file").
		Preload("Authors", orderByID).
		Preload("Keywords", orderByID)
}

// Search liefert alle Publikationen (ohne Query) oder das Ergebnis der drei Stufen.
// Die Stufen bestimmen nur Zugehörigkeit und Dedup-Reihenfolge. Die endgültige Reihenfolge folgt allein order.
func (s *SearchService) Search(ctx context.Context, query string, order Order) ([]models.Publication, error) {
	db := s.DB.WithContext(ctx)
	query = strings.TrimSpace(query)

	if query == "" {
		searchCounter.WithLabelValues("all").Inc()
		var pubs []models.Publication
		if err := listScope(db).Order(order.orderClause()).Find(&pubs).Error; err != nil {
			return nil, err
		}
		SortPublications(pubs, order)
		return pubs, nil
	}
	searchCounter.WithLabelValues("query").Inc()

	// Beide Seiten werden in Go gefaltet; SQLite-LOWER kennt nur ASCII.
	needle := strings.ToLower(query)
	tokens := strings.Fields(needle)

	var candidates []models.Publication
	if err := listScope(db).Order("publications.id").Find(&candidates).Error; err != nil {
		return nil, err
	}

	tiers := []struct {
		name  string
		match func(*models.Publication) bool
	}{
		{"keyword", func(p *models.Publication) bool {
			names := p.KeywordNames()
			for _, tok := range tokens {
				if !anyContains(names, tok) {
					return false
				}
			}
			return true
		}},
		{"author", func(p *models.Publication) bool {
			return anyContains(p.AuthorNames(), needle)
		}},
		{"title", func(p *models.Publication) bool {
			return strings.Contains(strings.ToLower(p.Title), needle)
		}},
	}

	seen := map[uint]struct{}{}
	var merged []models.Publication
	for _, tier := range tiers {
		matches, added := 0, 0
		for i := range candidates {
			p := &candidates[i]
			if !tier.match(p) {
				continue
			}
			matches++
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, *p)
			added++
		}
		s.Logger.Debug("Suchstufe ausgewertet",
			zap.String("tier", tier.name), zap.Int("matches", matches), zap.Int("added", added))
	}

	SortPublications(merged, order)
	if merged == nil {
		merged = []models.Publication{}
	}
	return merged, nil
}

// anyContains meldet, ob einer der Namen needle ohne Beachtung der Groß-/Kleinschreibung enthält.
func anyContains(names []string, needle string) bool {
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			return true
		}
	}
	return false
}
