package handler

import (
	"errors"
	"net/http"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/services"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaHandler struct {
	service *services.MediaService
}

func NewMediaHandler(service *services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// Create handles POST /media: the durable record for already-stored bytes.
func (h *MediaHandler) Create(c *gin.Context) {
	var req httpdto.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), media.Item{
		MediaURL:     req.MediaURL,
		MediaType:    media.MediaType(req.MediaType),
		Title:        req.Title,
		UploaderName: req.UploaderName,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		if errors.Is(err, album_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Get handles GET /media/:id.
func (h *MediaHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid media id", "INVALID_REQUEST"))
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, album_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("media item not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /media/:id.
func (h *MediaHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid media id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, album_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("media item not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /media with paging and an optional media-type filter.
func (h *MediaHandler) List(c *gin.Context) {
	var req httpdto.ListMediaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid query", "INVALID_REQUEST"))
		return
	}

	items, total, err := h.service.List(c.Request.Context(), req.MediaType, req.Page, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	if items == nil {
		items = []media.Item{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// Count handles GET /media/count.
func (h *MediaHandler) Count(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context(), c.Query("media_type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
