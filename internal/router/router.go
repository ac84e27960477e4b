package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nfseconv/internal/handler"
	"nfseconv/internal/middleware"
)

// Options configure the engine's middleware and optional routes.
type Options struct {
	AllowedOrigins []string
	// ObjectSource registers POST /convert-object.
	ObjectSource bool
	// MaxMultipartMemory bounds the in-memory part of multipart uploads.
	MaxMultipartMemory int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log zerolog.Logger,
	opts Options,
	convertH *handler.ConvertHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/health", healthH.Liveness)
	r.GET("/healthz", healthH.Liveness)

	// Conversion routes keep the paths the web frontend already calls.
	r.POST("/upload", convertH.Upload)
	r.POST("/upload-multi", convertH.UploadMulti)
	r.POST("/upload-zip", convertH.UploadZip)
	r.POST("/extract", convertH.Extract)
	if opts.ObjectSource {
		r.POST("/convert-object", convertH.ConvertObject)
	}

	return r
}
