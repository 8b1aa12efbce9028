package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scientify/models"
)

// PublicationService bündelt Lese- und Löschoperationen außerhalb der Suche.
type PublicationService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewPublicationService erstellt den Dienst.
func NewPublicationService(db *gorm.DB, logger *zap.Logger) *PublicationService {
	return &PublicationService{DB: db, Logger: logger}
}

// ListForUser liefert die Publikationen eines Besitzers, einfach sortiert.
func (s *PublicationService) ListForUser(ctx context.Context, userID uuid.UUID, order Order) ([]models.Publication, error) {
	searchCounter.WithLabelValues("owner").Inc()
	var pubs []models.Publication
	err := listScope(s.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order(order.orderClause()).
		Find(&pubs).Error
	if err != nil {
		return nil, err
	}
	SortPublications(pubs, order)
	return pubs, nil
}

// Get lädt eine Publikation inklusive Dateiinhalt.
func (s *PublicationService) Get(ctx context.Context, id uint) (*models.Publication, error) {
	var pub models.Publication
	err := s.DB.WithContext(ctx).First(&pub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

// Delete löscht eine eigene Publikation samt Join-Zeilen und liefert ihren Titel.
// Fremde Publikationen ergeben ErrNotFound. Geteilte Autoren und Keywords bleiben erhalten.
func (s *PublicationService) Delete(ctx context.Context, userID uuid.UUID, id uint) (string, error) {
	var title string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pub models.Publication
		err := tx.Omit("file").Where("id = ? AND user_id = ?", id, userID).Take(&pub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Select(clause.Associations).Delete(&pub).Error; err != nil {
			return err
		}
		title = pub.Title
		return nil
	})
	if err != nil {
		return "", err
	}
	s.Logger.Info("Publikation gelöscht", zap.Uint("id", id), zap.String("user_id", userID.String()))
	return title, nil
}

// Authors liefert alle Autoren, nur für Debug-Routen.
func (s *PublicationService) Authors(ctx context.Context) ([]models.Author, error) {
	var out []models.Author
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// KeywordList liefert alle Keywords, nur für Debug-Routen.
func (s *PublicationService) KeywordList(ctx context.Context) ([]models.Keyword, error) {
	var out []models.Keyword
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}
