package middleware

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one zap entry per request. The level follows the status class.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		status := ctx.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()),
			zap.String("request_id", requestid.Get(ctx)),
		}
		if id, ok := UserID(ctx); ok {
			fields = append(fields, zap.Uint("user_id", id))
		}

		switch {
		case status >= 500:
			zap.L().Error("request completed", fields...)
		case status >= 400:
			zap.L().Warn("request completed", fields...)
		default:
			zap.L().Info("request completed", fields...)
		}
	}
}
