package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

func init() {
	// pdfcpu soll keine Konfigurationsdateien im Home-Verzeichnis anlegen.
	api.DisableConfigDir()
}

// Renderer rendert ein vollständiges HTML-Dokument zu PDF-Bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Verifier prüft gerenderte Bytes und liefert die Seitenzahl.
type Verifier func(pdf []byte) (int, error)

// PDFPageCount validiert PDF-Bytes mit pdfcpu und liefert die Seitenzahl.
func PDFPageCount(pdf []byte) (int, error) {
	if len(pdf) == 0 {
		return 0, errors.New("empty pdf")
	}
	n, err := api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}
	if n < 1 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}

// NewSanitizer liefert die HTML-Policy für Konverterausgaben. class-Attribute bleiben für das Druck-Stylesheet erhalten.
func NewSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}

// printer bündelt Sanitizing, Template, Rendering und Verifikation für HTML-basierte Stufen.
type printer struct {
	renderer  Renderer
	verify    Verifier
	sanitizer *bluemonday.Policy
}

func (p printer) print(ctx context.Context, body, title string) ([]byte, int, error) {
	if p.renderer == nil {
		return nil, 0, errors.New("no html renderer configured")
	}
	page, err := WrapHTML(p.sanitizer.Sanitize(body), title)
	if err != nil {
		return nil, 0, err
	}
	pdf, err := p.renderer.Render(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("render html to pdf: %w", err)
	}
	verify := p.verify
	if verify == nil {
		verify = PDFPageCount
	}
	pages, err := verify(pdf)
	if err != nil {
		return nil, 0, err
	}
	return pdf, pages, nil
}

// RodRenderer druckt HTML über headless Chrome (DevTools Page.printToPDF).
type RodRenderer struct {
	// ControlURL eines laufenden Chrome; leer = lokal starten.
	ControlURL string
	Logger     *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodRenderer erstellt einen Renderer. Der Browser wird erst beim ersten Render verbunden.
func NewRodRenderer(controlURL string, logger *zap.Logger) *RodRenderer {
	return &RodRenderer{ControlURL: controlURL, Logger: logger}
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	wsURL := r.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		r.launcher = l
		r.Logger.Info("Lokales Chrome für PDF-Rendering gestartet", zap.String("url", wsURL))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	r.browser = b
	return b, nil
}

// Render öffnet einen neuen Tab, setzt das Dokument und druckt es.
// Der Tab wird auf jedem Pfad geschlossen, auch bei Abbruch des Kontexts.
func (r *RodRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.Logger.Warn("Schließen des Render-Tabs fehlgeschlagen", zap.Error(cerr))
		}
	}()

	p := page.Context(ctx)
	if err := p.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	stream, err := p.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()

	return io.ReadAll(stream)
}

// Close beendet Browser und ggf. den lokal gestarteten Chrome-Prozess.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}
