package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// ImageHandler handles recipe image uploads
type ImageHandler struct {
	imageService service.IImageService
	auth         middleware.TokenValidator
	rateLimiter  *middleware.RateLimiter
	log          logrus.FieldLogger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService service.IImageService, auth middleware.TokenValidator, rateLimiter *middleware.RateLimiter, log logrus.FieldLogger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		auth:         auth,
		rateLimiter:  rateLimiter,
		log:          log.WithField("handler", "image"),
	}
}

// RegisterRoutes registers the image routes
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images",
		middleware.AuthMiddleware(h.auth),
		middleware.RequireRole(types.RoleUser),
		h.rateLimiter.Middleware(),
		h.Upload,
	)
}

// Upload stores the multipart "image" file and returns its public URL
func (h *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}
	if fh.Size > service.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()

	url, err := h.imageService.Upload(c.Request.Context(), middleware.CallerFrom(c), fh.Filename, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
