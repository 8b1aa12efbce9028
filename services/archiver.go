package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/models"
	"scientify/storage"
)

// Archiver spiegelt kanonische Dokumente in einen S3-Bucket.
type Archiver struct {
	DB      *gorm.DB
	Logger  *zap.Logger
	Client  storage.ObjectPutter
	Bucket  string
	BaseURL string
	// BatchSize begrenzt die Anzahl Dokumente je Lauf.
	BatchSize int
	Now       func() time.Time
}

// NewArchiver erstellt einen Archiver.
func NewArchiver(db *gorm.DB, logger *zap.Logger, client storage.ObjectPutter, baseURL, bucket string) *Archiver {
	return &Archiver{
		DB:        db,
		Logger:    logger,
		Client:    client,
		Bucket:    bucket,
		BaseURL:   baseURL,
		BatchSize: 50,
		Now:       time.Now,
	}
}

// ArchiveKey ist der Objektschlüssel einer Publikation im Bucket.
func ArchiveKey(pub *models.Publication) string {
	name := pub.Filename
	if name == "" {
		name = "document.pdf"
	}
	return fmt.Sprintf("publications/%d/%s", pub.ID, name)
}

// Run archiviert noch nicht gespiegelte Publikationen. Fehlgeschlagene Uploads werden geloggt und beim nächsten Lauf wiederholt.
func (a *Archiver) Run(ctx context.Context) (int, error) {
	var pending []models.Publication
	err := a.DB.WithContext(ctx).
		Where("archived_at IS NULL").
		Order("id").
		Limit(a.BatchSize).
		Find(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("load pending publications: %w", err)
	}

	archived := 0
	for i := range pending {
		pub := &pending[i]
		log := a.Logger.With(zap.Uint("publication_id", pub.ID))
		key := ArchiveKey(pub)

		link, err := storage.UploadFile(ctx, a.Client, a.BaseURL, a.Bucket, key, "application/pdf", pub.File)
		if err != nil {
			log.Error("S3-Upload fehlgeschlagen", zap.String("key", key), zap.Error(err))
			continue
		}

		now := a.Now().UTC()
		err = a.DB.WithContext(ctx).Model(&models.Publication{}).
			Where("id = ?", pub.ID).
			Updates(map[string]any{"archived_at": now, "s3_link": link}).Error
		if err != nil {
			log.Error("Archivstatus konnte nicht gespeichert werden", zap.Error(err))
			continue
		}
		archivedCounter.Inc()
		archived++
		log.Info("Dokument archiviert", zap.String("s3_link", link))
	}
	return archived, nil
}
