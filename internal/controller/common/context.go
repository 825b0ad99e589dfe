package common

import (
	"fmt"
	"strconv"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

// SetPrincipal кладёт вызывающего в контекст запроса
func SetPrincipal(c *gin.Context, p model.Principal) {
	c.Set(principalKey, p)
}

// Principal вызывающий, установленный middleware аутентификации
func Principal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}

// Pager лимиты пагинации из конфига
type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

// Page читает skip/limit из query
func (p Pager) Page(c *gin.Context) (model.Page, error) {
	var page model.Page
	var err error

	if raw := c.Query("skip"); raw != "" {
		if page.Skip, err = strconv.Atoi(raw); err != nil || page.Skip < 0 {
			return page, fmt.Errorf("%w: skip must be a non-negative integer", ErrBadRequest)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil || page.Limit < 0 {
			return page, fmt.Errorf("%w: limit must be a non-negative integer", ErrBadRequest)
		}
	}

	return page.Normalize(p.DefaultLimit, p.MaxLimit), nil
}

// ParseID разбирает UUID из строки запроса
func ParseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid UUID", ErrBadRequest, field)
	}
	return id, nil
}

// RequireID проверяет, что id из тела запроса задан
func RequireID(id uuid.UUID, field string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s is required", ErrBadRequest, field)
	}
	return nil
}

// BadRequest оборачивает ошибку разбора запроса
func BadRequest(err error) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
}

// BindJSON разбирает тело запроса
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return BadRequest(err)
	}
	return nil
}
