package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/service/audit"
)

// AuditWriter accepts entries without blocking the request.
type AuditWriter interface {
	Log(ctx context.Context, entry audit.Entry)
}

type AuditMiddleware struct {
	writer AuditWriter
}

func NewAuditMiddleware(writer AuditWriter) *AuditMiddleware {
	return &AuditMiddleware{writer: writer}
}

// AuditLog records an audit entry for every request to the group. GET
// requests are recorded as reads.
func (m *AuditMiddleware) AuditLog(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := audit.Entry{
			Action:     auditAction(c.Request.Method),
			EntityType: entityType,
			Metadata: map[string]interface{}{
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"status":     c.Writer.Status(),
				"request_id": c.GetString(ContextRequestID),
			},
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if user, ok := CurrentUser(c); ok {
			id := user.ID
			entry.UserID = &id
		}
		if id, err := uuid.Parse(c.Param("id")); err == nil {
			entry.EntityID = &id
		}

		m.writer.Log(c.Request.Context(), entry)
	}
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
