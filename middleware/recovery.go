package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/inventory-service/internal/logger"
	"github.com/duynhne/inventory-service/internal/web/response"
)

// Recovery turns a panic into a 500 error envelope and logs it.
func Recovery(exposeErrors bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		_ = c.Error(err)
		response.InternalError(c, err, exposeErrors)
	})
}
