package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Message sends {"message": message} with the given status
func (h *BaseHandler) Message(c *gin.Context, status int, message string) {
	c.JSON(status, dto.NewMessage(message))
}

// NotFound sends a 404 with message
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Message(c, http.StatusNotFound, message)
}

// BadRequest sends a 400 with message
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Message(c, http.StatusBadRequest, message)
}

// ServerError logs err in full and sends a generic 500
func (h *BaseHandler) ServerError(c *gin.Context, err error) {
	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	_ = c.Error(err)
	h.Message(c, http.StatusInternalServerError, dto.MsgServerError)
}

// HandleError maps a service error for kind to a response: absent rows answer 404
// with the kind's message, everything else is a server error.
func (h *BaseHandler) HandleError(c *gin.Context, kind shared.Kind, err error) {
	if shared.IsNotFound(err) {
		h.NotFound(c, kind.NotFoundMessage())
		return
	}
	h.ServerError(c, err)
}

// BindBody decodes the JSON body into dst. It answers 413 or 400 and returns
// false when the body is unusable.
func (h *BaseHandler) BindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Message(c, http.StatusRequestEntityTooLarge, dto.MsgBodyTooLarge)
			return false
		}
		h.BadRequest(c, dto.MsgInvalidBody)
		return false
	}
	return true
}

// parseID reads the :id path parameter. Only positive integers can name a row.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
