package handlers

import (
	"net/http"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/gin-gonic/gin"
)

// Health GET /api/<service>/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// mustPrincipal маршруты с этим вызовом всегда стоят за middleware.Auth
func mustPrincipal(c *gin.Context) model.Principal {
	p, ok := common.Principal(c)
	if !ok {
		panic("handlers: principal missing, route registered without auth middleware")
	}
	return p
}

// bindWithID разбирает JSON и проверяет обязательные id
func bindWithID(c *gin.Context, dst any, check func() error) error {
	if err := common.BindJSON(c, dst); err != nil {
		return err
	}
	return check()
}

// blankQuery пустые значения и заглушки из сгенерированных клиентов выкидываются
func blankQuery(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && v != "string" {
			out = append(out, v)
		}
	}
	return out
}
