package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scientify/config"
	"scientify/converter"
	"scientify/extract"
	"scientify/keywords"
	"scientify/models"
	"scientify/services"
	"scientify/storage"
)

type ingestOptions struct {
	File    string
	BibTeX  string
	Title   string
	Authors string
	Year    string
	Journal string
	DOI     string
	User    string
}

// ingester ist der Teil des Orchestrators, den die CLI braucht.
type ingester interface {
	Ingest(ctx context.Context, req services.UploadRequest) (*models.UploadResponse, error)
}

// buildRequest liest Dokument und BibTeX von der Platte.
func buildRequest(o ingestOptions) (services.UploadRequest, error) {
	owner, err := uuid.Parse(o.User)
	if err != nil {
		return services.UploadRequest{}, fmt.Errorf("invalid --user: %w", err)
	}
	content, err := os.ReadFile(o.File)
	if err != nil {
		return services.UploadRequest{}, fmt.Errorf("read --file: %w", err)
	}
	var bib []byte
	if o.BibTeX != "" {
		if bib, err = os.ReadFile(o.BibTeX); err != nil {
			return services.UploadRequest{}, fmt.Errorf("read --bibtex: %w", err)
		}
	}
	return services.UploadRequest{
		MetadataInput: services.MetadataInput{
			BibTeX:  bib,
			Title:   o.Title,
			Authors: o.Authors,
			Year:    o.Year,
			Journal: o.Journal,
			DOI:     o.DOI,
		},
		Filename: filepath.Base(o.File),
		Content:  content,
		UserID:   owner,
	}, nil
}

func ingestAndPrint(ctx context.Context, svc ingester, req services.UploadRequest, out io.Writer) error {
	resp, err := svc.Ingest(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func run(ctx context.Context, o ingestOptions, out io.Writer) error {
	req, err := buildRequest(o)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging := zap.NewNop()
	if cfg.LogDevelopment {
		if logging, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logging.Sync()

	db, err := storage.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	renderer := converter.NewRodRenderer(cfg.ChromeURL, logging)
	defer renderer.Close()
	pipeline := converter.NewPipeline(
		converter.DefaultChains(cfg.PandocPath, renderer, converter.PDFPageCount),
		cfg.ConversionWorkers, cfg.ConversionTimeout, logging)
	ranker, err := keywords.NewRanker(cfg.KeywordLanguage)
	if err != nil {
		return err
	}

	svc := services.NewIngestService(db, logging, pipeline, extract.NewDispatcher(logging), ranker, cfg.KeywordCount)
	return ingestAndPrint(ctx, svc, req, out)
}
