package converter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultChains liefert die Fallback-Ketten je Endung.
func DefaultChains(pandocPath string, renderer Renderer, verify Verifier) map[string]Chain {
	latex := Chain{NewLatexConverter(renderer, verify)}
	return map[string]Chain{
		".pdf":   {Passthrough{}},
		".docx":  {NewPandocConverter(pandocPath, renderer, verify), NewDocxHTMLConverter(renderer, verify)},
		".tex":   latex,
		".latex": latex,
	}
}

// Pipeline wählt die Kette zur Dateiendung und begrenzt gleichzeitige Konvertierungen.
type Pipeline struct {
	Logger *zap.Logger

	chains  map[string]Chain
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewPipeline erstellt eine Pipeline mit höchstens workers parallelen Konvertierungen.
// timeout <= 0 deaktiviert das Zeitlimit.
func NewPipeline(chains map[string]Chain, workers int64, timeout time.Duration, logger *zap.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		Logger:  logger,
		chains:  chains,
		sem:     semaphore.NewWeighted(workers),
		timeout: timeout,
	}
}

// Supports meldet, ob für die Endung des Dateinamens eine Kette existiert.
func (p *Pipeline) Supports(filename string) bool {
	_, ok := p.chains[Ext(filename)]
	return ok
}

// Convert führt die passende Kette aus. Unbekannte Endungen schlagen sofort mit *UnsupportedFormatError fehl,
// eine erschöpfte Kette mit *ConversionError.
func (p *Pipeline) Convert(ctx context.Context, content []byte, filename string) (Result, error) {
	ext := Ext(filename)
	chain, ok := p.chains[ext]
	if !ok || len(chain) == 0 {
		return Result{}, &UnsupportedFormatError{Extension: ext}
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("wait for conversion slot: %w", err)
	}
	defer p.sem.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log := p.Logger.With(zap.String("filename", filename), zap.String("extension", ext))
	start := time.Now()
	best, attempts := chain.Run(ctx, content, filename)
	for _, a := range attempts {
		if !a.OK() {
			log.Warn("Konvertierungsstufe fehlgeschlagen", zap.String("stage", a.Stage), zap.Error(a.Err))
		}
	}
	if !best.OK() {
		return Result{}, &ConversionError{Extension: ext, Attempts: attempts}
	}

	log.Info("Dokument konvertiert",
		zap.String("method", best.Result.Method),
		zap.Int("attempts", len(attempts)),
		zap.Duration("duration", time.Since(start)))
	return best.Result, nil
}
