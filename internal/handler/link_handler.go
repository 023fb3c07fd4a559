package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shorty/internal/domain"
	"shorty/internal/service"
	"shorty/pkg/logger"
)

// LinkHandler handles HTTP requests for the shortener
type LinkHandler struct {
	service         service.LinkService
	apiKeyMandatory bool
	logger          *logger.Logger
}

// NewLinkHandler creates a new link handler with dependencies
func NewLinkHandler(service service.LinkService, apiKeyMandatory bool, logger *logger.Logger) *LinkHandler {
	return &LinkHandler{
		service:         service,
		apiKeyMandatory: apiKeyMandatory,
		logger:          logger,
	}
}

// Register mounts the shortener routes on r
func (h *LinkHandler) Register(r gin.IRoutes) {
	r.POST("/", h.Shorten)
	r.GET("/:id", h.Goto)
}

// Goto handles GET /:id
// Redirects to the stored URL. Location is written verbatim since
// c.Redirect would resolve a scheme-less URL against the request path.
func (h *LinkHandler) Goto(c *gin.Context) {
	id := c.Param("id")

	url, ok := h.service.Lookup(c.Request.Context(), id)
	if !ok {
		h.logger.Debugw("No URL found", "id", id)
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Location", url)
	c.Status(http.StatusFound)
}

// Shorten handles POST /
// Body: {"api_key": "...", "url": "..."}
func (h *LinkHandler) Shorten(c *gin.Context) {
	var req domain.ShortenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Kind:    domain.KindInvalidRequest,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if req.APIKey == nil && h.apiKeyMandatory {
		c.JSON(http.StatusForbidden, domain.ErrorResponse{
			Kind:    domain.KindInvalidAPIKey.String(),
			Message: domain.MissingAPIKeyMessage,
		})
		return
	}

	req.RequestHost = c.Request.Host

	result, err := h.service.Shorten(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleError maps shortener errors to HTTP responses
func (h *LinkHandler) handleError(c *gin.Context, err error) {
	kind := domain.KindOf(err)

	if kind.Internal() {
		h.logger.Errorw("Shorten failed", "kind", kind.String(), "error", err)
	}

	_ = c.Error(err)
	c.JSON(kind.StatusCode(), domain.NewErrorResponse(err))
}
