package handler

import (
	"errors"
	"net/http"

	"github.com/eidan66/wedding-album-sub000/internal/services"
	"github.com/eidan66/wedding-album-sub000/internal/storage"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.PresignService
}

func NewUploadHandler(service *services.PresignService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadURL handles POST /upload-url: a single presigned PUT target.
func (h *UploadHandler) UploadURL(c *gin.Context) {
	var req httpdto.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	target, err := h.service.Single(c.Request.Context(), services.PresignInput{
		FileName:     req.Filename,
		ContentType:  req.Filetype,
		SizeBytes:    req.Filesize,
		Title:        req.Title,
		UploaderName: req.UploaderName,
	})
	if err != nil {
		respondPresignError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.UploadURLResponse{URL: target.URL, Key: target.Key})
}

// Presign handles POST /uploads/presign: couple-scoped single presign.
func (h *UploadHandler) Presign(c *gin.Context) {
	var req httpdto.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	target, err := h.service.Single(c.Request.Context(), services.PresignInput{
		FileName:    req.FileName,
		ContentType: req.Mime,
		SizeBytes:   req.FileSize,
		CoupleID:    req.CoupleID,
	})
	if err != nil {
		respondPresignError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.UploadURLResponse{URL: target.URL, Key: target.Key})
}

// PresignBatch handles POST /uploads/presign/batch. Validation is
// all-or-nothing: one bad file fails the whole batch before any URL exists.
func (h *UploadHandler) PresignBatch(c *gin.Context) {
	var req httpdto.BatchPresignRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	inputs := make([]services.PresignInput, 0, len(req.Files))
	for _, f := range req.Files {
		inputs = append(inputs, services.PresignInput{
			FileName:     f.Filename,
			ContentType:  f.Filetype,
			SizeBytes:    f.Filesize,
			Title:        f.Title,
			UploaderName: f.UploaderName,
		})
	}

	targets, err := h.service.Batch(c.Request.Context(), inputs)
	if err != nil {
		respondPresignError(c, err)
		return
	}

	urls := make([]httpdto.UploadURLResponse, 0, len(targets))
	for _, t := range targets {
		urls = append(urls, httpdto.UploadURLResponse{URL: t.URL, Key: t.Key})
	}
	c.JSON(http.StatusOK, httpdto.BatchPresignResponse{URLs: urls})
}

// MultipartCreate handles POST /uploads/multipart/create.
func (h *UploadHandler) MultipartCreate(c *gin.Context) {
	var req httpdto.MultipartCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	session, err := h.service.CreateMultipart(c.Request.Context(), services.PresignInput{
		FileName:     req.FileName,
		ContentType:  req.Mime,
		SizeBytes:    req.Size,
		Title:        req.Title,
		UploaderName: req.UploaderName,
		CoupleID:     req.CoupleID,
	})
	if err != nil {
		respondPresignError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartCreateResponse{
		UploadID: session.UploadID,
		Key:      session.Key,
		Bucket:   session.Bucket,
	})
}

// MultipartParts handles POST /uploads/multipart/parts.
func (h *UploadHandler) MultipartParts(c *gin.Context) {
	var req httpdto.MultipartPartsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	urls, err := h.service.PartURLs(c.Request.Context(), req.Key, req.UploadID, req.PartNumbers)
	if err != nil {
		respondPresignError(c, err)
		return
	}

	out := make([]httpdto.PartURLResponse, 0, len(urls))
	for _, u := range urls {
		out = append(out, httpdto.PartURLResponse{PartNumber: u.PartNumber, URL: u.URL})
	}
	c.JSON(http.StatusOK, out)
}

// MultipartComplete handles POST /uploads/multipart/complete. The service
// sorts parts by part number and records the media item on success.
func (h *UploadHandler) MultipartComplete(c *gin.Context) {
	var req httpdto.MultipartCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Parts) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	parts := make([]storage.CompletedPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		parts = append(parts, storage.CompletedPart{ETag: p.ETag, PartNumber: p.PartNumber})
	}

	location, item, err := h.service.CompleteMultipart(c.Request.Context(), services.CompleteInput{
		Key:          req.Key,
		UploadID:     req.UploadID,
		Parts:        parts,
		Title:        req.Title,
		UploaderName: req.UploaderName,
	})
	if err != nil {
		respondPresignError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartCompleteResponse{
		Success:   true,
		Location:  location,
		MediaItem: item,
	})
}

// MultipartAbort handles POST /uploads/multipart/abort. Best-effort; the
// client's cleanup never blocks on a failed abort.
func (h *UploadHandler) MultipartAbort(c *gin.Context) {
	var req httpdto.MultipartAbortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.AbortMultipart(c.Request.Context(), req.Key, req.UploadID); err != nil {
		respondPresignError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartAbortResponse{Success: true, Message: "upload aborted"})
}

func respondPresignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, album_errors.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "UNSUPPORTED_FILE_TYPE"))
	case errors.Is(err, album_errors.ErrInvalidPartNumbers):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_PART_NUMBERS"))
	case errors.Is(err, album_errors.ErrTooLarge):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "FILE_TOO_LARGE"))
	case errors.Is(err, album_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	case errors.Is(err, album_errors.ErrStorageNotConfigured):
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "STORAGE_NOT_CONFIGURED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
	}
}
