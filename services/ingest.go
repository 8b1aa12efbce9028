package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/converter"
	"scientify/models"
)

// DocumentConverter überführt ein hochgeladenes Dokument in die kanonische Form.
type DocumentConverter interface {
	Supports(filename string) bool
	Convert(ctx context.Context, content []byte, filename string) (converter.Result, error)
}

// TextExtractor liefert Best-Effort-Klartext. Fehler werden intern geloggt und ergeben "".
type TextExtractor interface {
	Extract(filename string, content []byte) string
}

// KeywordExtractor rankt Schlagwörter aus Klartext.
type KeywordExtractor interface {
	Extract(text string, n int) ([]string, error)
}

// UploadRequest ist eine einzelne Ingestion.
type UploadRequest struct {
	MetadataInput
	Filename string
	Content  []byte
	UserID   uuid.UUID
}

// IngestService orchestriert Metadaten, Konvertierung, Keywords und Persistenz einer Publikation.
type IngestService struct {
	DB         *gorm.DB
	Logger     *zap.Logger
	Converter  DocumentConverter
	Extractor  TextExtractor
	Keywords   KeywordExtractor
	Reconciler Reconciler
	// KeywordCount ist die Anzahl gerankter Schlagwörter je Publikation.
	KeywordCount int
	Now          func() time.Time
}

// NewIngestService erstellt den Orchestrator.
func NewIngestService(db *gorm.DB, logger *zap.Logger, conv DocumentConverter, ext TextExtractor, kw KeywordExtractor, keywordCount int) *IngestService {
	if keywordCount <= 0 {
		keywordCount = 5
	}
	return &IngestService{
		DB:           db,
		Logger:       logger,
		Converter:    conv,
		Extractor:    ext,
		Keywords:     kw,
		KeywordCount: keywordCount,
		Now:          time.Now,
	}
}

// Ingest führt eine Ingestion vollständig aus. Vor dem Commit bricht jeder Fehler die gesamte Transaktion ab.
func (s *IngestService) Ingest(ctx context.Context, req UploadRequest) (*models.UploadResponse, error) {
	log := s.Logger.With(zap.String("filename", req.Filename), zap.String("user_id", req.UserID.String()))

	if req.UserID == uuid.Nil {
		return nil, invalid("missing owner", "user id is required")
	}
	if strings.TrimSpace(req.Filename) == "" || len(req.Content) == 0 {
		return nil, invalid("missing file", "file is required")
	}

	md, err := ResolveMetadata(req.MetadataInput)
	if err != nil {
		return nil, err
	}
	if md.DOI != "" {
		if err := s.ensureDOIUnused(ctx, md.DOI); err != nil {
			return nil, err
		}
	}

	if !s.Converter.Supports(req.Filename) {
		return nil, invalid("unsupported file extension",
			fmt.Sprintf("%q is not allowed, please upload one of .pdf, .docx, .tex, .latex", converter.Ext(req.Filename)))
	}

	start := time.Now()
	ext := converter.Ext(req.Filename)
	result, err := s.Converter.Convert(ctx, req.Content, req.Filename)
	conversionDuration.WithLabelValues(ext).Observe(time.Since(start).Seconds())
	if err != nil {
		conversionsCounter.WithLabelValues(ext, "failed").Inc()
		var unsupported *converter.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return nil, invalid("unsupported file extension", unsupported.Error())
		}
		log.Error("Konvertierung fehlgeschlagen", zap.Error(err))
		return nil, err
	}
	conversionsCounter.WithLabelValues(result.Method, "ok").Inc()

	keywords := s.rankKeywords(log, req.Filename, req.Content)
	authors := distinct(SplitAuthors(md.Authors))

	var pubID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authorRows := make([]models.Author, 0, len(authors))
		for _, name := range authors {
			a, err := s.Reconciler.ResolveAuthor(tx, name)
			if err != nil {
				return err
			}
			authorRows = append(authorRows, *a)
		}

		keywordRows := make([]models.Keyword, 0, len(keywords))
		for _, name := range keywords {
			k, err := s.Reconciler.ResolveKeyword(tx, name)
			if err != nil {
				return err
			}
			keywordRows = append(keywordRows, *k)
		}

		pub := models.Publication{
			Title:      md.Title,
			File:       result.Content,
			Filename:   result.Filename,
			UploadDate: s.Now().UTC(),
			Journal:    md.Journal,
			UserID:     req.UserID,
			Authors:    authorRows,
			Keywords:   keywordRows,
		}
		year := md.Year
		pub.Year = &year
		if md.DOI != "" {
			doi := md.DOI
			pub.DOI = &doi
		}

		// Autoren und Keywords existieren bereits, nur die Join-Zeilen werden geschrieben.
		if err := tx.Omit("Authors.*", "Keywords.*").Create(&pub).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && md.DOI != "" {
				return &ConflictError{Identifier: md.DOI}
			}
			return fmt.Errorf("create publication: %w", err)
		}
		pubID = pub.ID
		return nil
	})
	if err != nil {
		log.Warn("Ingestion zurückgerollt", zap.Error(err))
		return nil, err
	}

	var saved models.Publication
	if err := s.DB.WithContext(ctx).Omit("file").
		Preload("Authors", orderByID).Preload("Keywords", orderByID).
		First(&saved, pubID).Error; err != nil {
		return nil, fmt.Errorf("reload publication: %w", err)
	}

	uploadsCounter.WithLabelValues(md.Source).Inc()
	log.Info("Publikation gespeichert",
		zap.Uint("id", saved.ID),
		zap.String("method", result.Method),
		zap.Int("keywords", len(saved.Keywords)))

	resp := &models.UploadResponse{
		ID:                saved.ID,
		Title:             saved.Title,
		Authors:           saved.AuthorNames(),
		Keywords:          saved.KeywordNames(),
		Journal:           saved.Journal,
		Year:              saved.Year,
		DOI:               saved.DOI,
		OriginalFilename:  req.Filename,
		ConvertedFilename: result.Filename,
		ConversionMethod:  result.Method,
		MetadataSource:    md.Source,
		PageCount:         result.PageCount,
	}
	if md.Source == SourceBibTeX {
		resp.BibTeXData = md.Record
	}
	return resp, nil
}

func (s *IngestService) ensureDOIUnused(ctx context.Context, doi string) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Publication{}).Where("doi = ?", doi).Count(&count).Error; err != nil {
		return fmt.Errorf("check doi: %w", err)
	}
	if count > 0 {
		return &ConflictError{Identifier: doi}
	}
	return nil
}

// rankKeywords extrahiert Text aus dem Original und rankt Keywords. Fehler ergeben eine leere Liste.
func (s *IngestService) rankKeywords(log *zap.Logger, filename string, content []byte) []string {
	if s.Extractor == nil || s.Keywords == nil {
		return nil
	}
	text := s.Extractor.Extract(filename, content)
	if text == "" {
		return nil
	}
	ranked, err := s.Keywords.Extract(text, s.KeywordCount)
	if err != nil {
		log.Warn("Keyword-Extraktion fehlgeschlagen", zap.Error(err))
		return nil
	}
	names := make([]string, 0, len(ranked))
	for _, k := range ranked {
		if k = NormalizeKeyword(k); k != "" {
			names = append(names, k)
		}
	}
	return distinct(names)
}

func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
