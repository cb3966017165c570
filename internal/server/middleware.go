package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
)

// RequestContext tags the request with an id and the acting user, if any.
// Authentication happens upstream; a malformed user id is rejected.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)
		ctx := common.WithRequestID(c.Request.Context(), rid)

		if raw := strings.TrimSpace(c.GetHeader(HeaderUserID)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.Request = c.Request.WithContext(ctx)
				RespondError(c, common.InputRejected("X-User-ID must be a UUID", err))
				return
			}
			ctx = common.WithActor(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", common.RequestIDFromContext(c.Request.Context())),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("http.request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("http.request", fields...)
		default:
			logger.Info("http.request", fields...)
		}
	}
}
