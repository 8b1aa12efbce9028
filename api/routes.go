// Package api stellt die HTTP-Oberfläche der Ingestion- und Suchdienste bereit.
package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/models"
	"scientify/services"
)

// Options steuert die optionalen Teile des Routers.
type Options struct {
	APISecretKey   string
	CORSOrigin     string
	MaxUploadBytes int64
	DebugRoutes    bool
}

// Services bündelt die Abhängigkeiten der Handler.
type Services struct {
	DB           *gorm.DB
	Ingest       *services.IngestService
	Search       *services.SearchService
	Publications *services.PublicationService
}

// NewRouter baut den gin-Router mit allen Routen.
func NewRouter(opts Options, svc Services, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.CORSOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{opts.CORSOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", userHeader, apiKeyHeader},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(apiKeyAuthMiddleware(opts.APISecretKey))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupRootRoutes(router, svc.DB)
	setupUploadRoutes(router, svc.Ingest, opts.MaxUploadBytes, log)
	setupPublicationRoutes(router, svc, log)
	if opts.DebugRoutes {
		setupDebugRoutes(router, svc, log)
	}
	return router
}

func setupRootRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Welcome to Scientify API",
			"description": "The intelligent platform to manage your scientific publications",
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func setupUploadRoutes(router *gin.Engine, ingest *services.IngestService, maxBytes int64, log *zap.Logger) {
	handler := func(c *gin.Context) {
		if maxBytes > 0 {
			if c.Request.ContentLength > maxBytes {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", maxBytes)})
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "File needed", "details": []string{"file"}})
			return
		}
		content, err := readPart(fileHeader)
		if err != nil {
			log.Error("Reading uploaded file failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}

		var bib []byte
		if bibHeader, err := c.FormFile("bibtex"); err == nil {
			if bib, err = readPart(bibHeader); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read bibtex file"})
				return
			}
		}

		req := services.UploadRequest{
			MetadataInput: services.MetadataInput{
				BibTeX:  bib,
				Title:   c.PostForm("title"),
				Authors: c.PostForm("authors"),
				Year:    c.PostForm("year"),
				Journal: c.PostForm("journal"),
				DOI:     c.PostForm("doi"),
			},
			Filename: fileHeader.Filename,
			Content:  content,
			UserID:   currentUser(c),
		}
		resp, err := ingest.Ingest(c.Request.Context(), req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}

	rg := router.Group("/upload", requireUser())
	rg.POST("", handler)
	rg.POST("/", handler)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func setupPublicationRoutes(router *gin.Engine, svc Services, log *zap.Logger) {
	router.GET("/publications", func(c *gin.Context) {
		order := services.ParseOrder(c.Query("order_by"))
		pubs, err := svc.Search.Search(c.Request.Context(), c.Query("search"), order)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, toOut(pubs, false))
	})

	router.GET("/users/me/publications", requireUser(), func(c *gin.Context) {
		order := services.ParseOrder(c.Query("order_by"))
		pubs, err := svc.Publications.ListForUser(c.Request.Context(), currentUser(c), order)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, toOut(pubs, true))
	})

	router.DELETE("/publications/:id", requireUser(), func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		title, err := svc.Publications.Delete(c.Request.Context(), currentUser(c), id)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Publication '%s' successfully deleted", title)})
	})

	router.GET("/download/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		pub, err := svc.Publications.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, log, err)
			return
		}
		filename := pub.Filename
		if filename == "" {
			filename = "document.pdf"
		}
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		c.Data(http.StatusOK, "application/pdf", pub.File)
	})
}

func setupDebugRoutes(router *gin.Engine, svc Services, log *zap.Logger) {
	rg := router.Group("/debug")

	rg.GET("/publications", func(c *gin.Context) {
		pubs, err := svc.Search.Search(c.Request.Context(), "", services.OrderDateDesc)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total_publications": len(pubs), "publications": toOut(pubs, true)})
	})

	rg.GET("/authors", func(c *gin.Context) {
		authors, err := svc.Publications.Authors(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, authors)
	})

	rg.GET("/keywords", func(c *gin.Context) {
		keywords, err := svc.Publications.KeywordList(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, keywords)
	})
}

// parseID liest :id; bei ungültigen Werten ist die Antwort bereits geschrieben.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid publication id"})
		return 0, false
	}
	return uint(id), true
}

func toOut(pubs []models.Publication, withOwner bool) []models.PublicationOut {
	out := make([]models.PublicationOut, 0, len(pubs))
	for i := range pubs {
		out = append(out, models.NewPublicationOut(&pubs[i], withOwner))
	}
	return out
}
