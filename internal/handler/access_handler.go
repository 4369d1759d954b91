package handler

import (
	"errors"
	"net/http"

	"github.com/eidan66/wedding-album-sub000/internal/services"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	service *services.AccessService
}

func NewAccessHandler(service *services.AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

// Verify handles POST /access/verify: shared-code check, rate limited per IP.
func (h *AccessHandler) Verify(c *gin.Context) {
	var req httpdto.AccessVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	token, err := h.service.VerifyCode(c.Request.Context(), req.Code, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, album_errors.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("too many attempts", "RATE_LIMITED"))
		case errors.Is(err, album_errors.ErrAccessDenied):
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid access code", "ACCESS_DENIED"))
		default:
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		}
		return
	}

	c.JSON(http.StatusOK, httpdto.AccessVerifyResponse{Token: token})
}
