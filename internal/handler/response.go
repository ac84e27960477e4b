package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nfseconv/internal/domain"
	"nfseconv/internal/logger"
	"nfseconv/internal/nfse"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var parseErr *nfse.ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "PARSE_ERROR", parseErr.Error()
	case errors.Is(err, domain.ErrMalformedDocument):
		return http.StatusUnprocessableEntity, "PARSE_ERROR", "document is not well-formed XML"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: txt, xml, zip"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidArchive):
		return http.StatusBadRequest, "INVALID_ARCHIVE", "archive is not a valid zip file"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusBadRequest, "NO_DOCUMENTS", "no .txt or .xml documents to convert"
	case errors.Is(err, domain.ErrInvalidOptions):
		return http.StatusBadRequest, "INVALID_OPTIONS", err.Error()
	case errors.Is(err, domain.ErrObjectNotFound):
		return http.StatusNotFound, "OBJECT_NOT_FOUND", "object not found in storage"
	case errors.Is(err, domain.ErrSourceDisabled):
		return http.StatusServiceUnavailable, "SOURCE_DISABLED", "object storage source is disabled"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	log := logger.FromContext(c.Request.Context())
	if status >= 500 {
		log.Error().Err(err).Msg("internal error")
	} else {
		log.Debug().Err(err).Str("code", code).Msg("request rejected")
	}
	RespondError(c, status, code, msg)
}
