// Package api exposes the extraction pipeline over HTTP for the browser
// extension and batch tooling.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"product-extractor/extractor"
	"product-extractor/internal/types"

	"github.com/gin-gonic/gin"
)

// maxBatchPages bounds a single batch request
const maxBatchPages = 50

// PageRequest carries a page the caller already loaded
type PageRequest struct {
	URL      string `json:"url" binding:"required"`
	HTML     string `json:"html" binding:"required"`
	Platform string `json:"platform,omitempty"`
}

// BatchRequest carries several pages
type BatchRequest struct {
	Pages []PageRequest `json:"pages" binding:"required,min=1,dive"`
}

// Response is the envelope of every API answer
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service     *extractor.Service
	logger      types.Logger
	itemTimeout time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(service *extractor.Service, config *types.Config, logger types.Logger) *Handler {
	timeout := config.ItemTimeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().ItemTimeout
	}
	return &Handler{service: service, logger: logger, itemTimeout: timeout}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "product-extractor",
		"selector_version": h.service.Registry().Version(),
	})
}

// Extract extracts one page posted by the extension
func (h *Handler) Extract(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	page, err := types.NewPage(req.URL, req.HTML)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.itemTimeout)
	defer cancel()

	var product *types.Product
	if req.Platform != "" {
		platform, ok := types.ParsePlatform(req.Platform)
		if !ok {
			h.sendError(c, http.StatusBadRequest, "Unknown platform: "+req.Platform)
			return
		}
		product, err = h.service.ExtractAs(ctx, platform, page)
	} else {
		product, err = h.service.Extract(ctx, page)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrUnusablePage) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.Warnf("Extraction failed for %s: %v", req.URL, err)
		h.sendError(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: product})
}

// ExtractBatch extracts several posted pages; failed items are reported
// per item
func (h *Handler) ExtractBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Pages) > maxBatchPages {
		h.sendError(c, http.StatusRequestEntityTooLarge, "Too many pages in one batch")
		return
	}

	pages := make([]*types.Page, len(req.Pages))
	for i, p := range req.Pages {
		page, err := types.NewPage(strings.TrimSpace(p.URL), p.HTML)
		if err != nil {
			h.logger.Warnf("Skipping unparsable page %s: %v", p.URL, err)
			continue
		}
		pages[i] = page
	}

	h.logger.Infof("API batch request received for %d pages", len(pages))
	result := h.service.ExtractBatch(c.Request.Context(), pages)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// Selectors describes the active selector snapshot
func (h *Handler) Selectors(c *gin.Context) {
	snap := h.service.Registry().Snapshot()
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"version":   snap.Version,
		"source":    snap.Source,
		"updatedAt": snap.UpdatedAt,
	}})
}

// RefreshSelectors refreshes the registry when the refresh interval has elapsed
func (h *Handler) RefreshSelectors(c *gin.Context) {
	if err := h.service.Registry().Load(c.Request.Context()); err != nil {
		h.sendError(c, http.StatusBadGateway, err.Error())
		return
	}
	h.Selectors(c)
}

func (h *Handler) sendError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}
