package common

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/auth"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrBadRequest ошибки разбора запроса на транспортном уровне
var ErrBadRequest = errors.New("bad request")

const internalMessage = "internal server error"

// errorStatuses порядок важен: первая совпавшая ошибка определяет код
var errorStatuses = []struct {
	err     error
	status  int
	message string // фиксированный текст вместо err.Error()
}{
	{auth.ErrInvalidToken, http.StatusUnauthorized, "could not validate credentials"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, ""},
	{service.ErrForbidden, http.StatusForbidden, ""},
	{service.ErrNotFound, http.StatusNotFound, ""},
	{service.ErrInvalidInput, http.StatusBadRequest, ""},
	{ErrBadRequest, http.StatusBadRequest, ""},
	{service.ErrConflict, http.StatusConflict, ""},
	{service.ErrInsufficientBalance, http.StatusPaymentRequired, ""},
}

// StatusOf HTTP-код для ошибки сервиса, 500 для всего неизвестного
func StatusOf(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// ErrorMessage текст для клиента без префикса sentinel-ошибки
func ErrorMessage(err error) string {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			if e.message != "" {
				return e.message
			}
			msg := strings.TrimPrefix(err.Error(), e.err.Error()+": ")
			if msg == "" {
				return e.err.Error()
			}
			return msg
		}
	}
	return internalMessage
}

// WriteError отвечает {"detail": ...}. Неожиданные ошибки логируются, клиенту уходит общий текст
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": ErrorMessage(err)})
}
