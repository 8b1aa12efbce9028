package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scientify/converter"
	"scientify/services"
)

// writeError bildet die Fehlertaxonomie der Services auf HTTP-Antworten ab.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var (
		validation  *services.ValidationError
		conflict    *services.ConflictError
		unsupported *converter.UnsupportedFormatError
		conversion  *converter.ConversionError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "details": validation.Problems})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": conflict.Error(), "details": []string{conflict.Identifier}})
	case errors.As(err, &unsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": unsupported.Error(), "details": []string{unsupported.Extension}})
	case errors.As(err, &conversion):
		log.Error("Conversion exhausted", zap.Error(err))
		details := make([]string, 0, len(conversion.Attempts))
		for _, a := range conversion.Attempts {
			details = append(details, fmt.Sprintf("%s: %v", a.Stage, a.Err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "document conversion failed", "details": details})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
	default:
		log.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
