package handlers

import (
	"errors"
	"net/http"

	"github.com/Brownie44l1/propvest/internal/api/dto"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondSuccess sends a successful JSON response
func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// respondError sends a request error that never reached a service.
func respondError(c *gin.Context, statusCode int, message string, err error) {
	notice := models.Notice{Kind: models.KindValidation, Level: models.NoticeWarning, Message: message}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   message,
		Message: err.Error(),
		Notice:  notice,
	})
}

// respondServiceError maps err through the error taxonomy into a status
// code and the toast the UI shows.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	notice := models.NoticeFor(err)
	status := statusFor(notice.Kind)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: notice.Message,
		Notice:  notice,
	})
}

// statusFor maps error kinds to HTTP status codes
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindNotFound, models.KindUserNotFound, models.KindRecipientNotFound:
		return http.StatusNotFound
	case models.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case models.KindVerificationPending:
		return http.StatusAccepted
	case models.KindCooldown:
		return http.StatusTooManyRequests
	case models.KindConflict:
		return http.StatusConflict
	case models.KindCancelled:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

var errInvalidPage = errors.New("page must be a positive integer")
