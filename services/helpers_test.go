package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/config"
	"scientify/converter"
	"scientify/models"
	"scientify/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.OpenDB(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fakeConverter reicht Bytes durch und benennt Nicht-PDFs um.
type fakeConverter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeConverter) Supports(filename string) bool {
	switch converter.Ext(filename) {
	case ".pdf", ".docx", ".tex", ".latex":
		return true
	}
	return false
}

func (f *fakeConverter) Convert(_ context.Context, content []byte, filename string) (converter.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return converter.Result{}, f.err
	}
	if converter.Ext(filename) == ".pdf" {
		return converter.Result{Content: content, Filename: filename, Method: converter.MethodNone}, nil
	}
	return converter.Result{
		Content:   append([]byte("%PDF-"), content...),
		Filename:  converter.PDFFilename(filename),
		Method:    converter.MethodLatex,
		PageCount: 1,
	}, nil
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeExtractor struct{ text string }

func (f fakeExtractor) Extract(string, []byte) string { return f.text }

type fakeKeywords struct {
	words []string
	err   error
}

func (f fakeKeywords) Extract(_ string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.words) > n {
		return f.words[:n], nil
	}
	return f.words, nil
}

func newTestIngest(db *gorm.DB, conv *fakeConverter, kw KeywordExtractor) *IngestService {
	s := NewIngestService(db, zap.NewNop(), conv, fakeExtractor{text: "some text"}, kw, 5)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	s.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Hour)
	}
	return s
}

func manualRequest(owner uuid.UUID, filename, title, authors string) UploadRequest {
	return UploadRequest{
		MetadataInput: MetadataInput{Title: title, Authors: authors, Year: "2024", Journal: "Journal of Tests"},
		Filename:      filename,
		Content:       []byte("%PDF-1.4 original bytes"),
		UserID:        owner,
	}
}

// seed legt eine Publikation direkt an.
func seed(t *testing.T, db *gorm.DB, owner uuid.UUID, title string, uploaded time.Time, authors, keywords []string) models.Publication {
	t.Helper()
	var r Reconciler
	pub := models.Publication{
		Title:      title,
		File:       []byte("%PDF-" + title),
		Filename:   title + ".pdf",
		UploadDate: uploaded,
		Journal:    "J",
		UserID:     owner,
	}
	for _, a := range authors {
		row, err := r.ResolveAuthor(db, a)
		require.NoError(t, err)
		pub.Authors = append(pub.Authors, *row)
	}
	for _, k := range keywords {
		row, err := r.ResolveKeyword(db, k)
		require.NoError(t, err)
		pub.Keywords = append(pub.Keywords, *row)
	}
	require.NoError(t, db.Omit("Authors.*", "Keywords.*").Create(&pub).Error)
	return pub
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var errBoom = errors.New("boom")
