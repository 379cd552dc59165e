package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

// Lister reads the audit trail.
type Lister interface {
	List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error)
}

type Handler struct {
	service Lister
}

func NewHandler(service Lister) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs", middleware.RequireRoles(model.UserTypeAdmin))
	{
		logs.GET("", h.ListLogs)
		logs.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	logs, ok := h.list(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}

// ExportLogs streams the filtered trail as CSV.
func (h *Handler) ExportLogs(c *gin.Context) {
	logs, ok := h.list(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("audit-logs-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "created_at", "user_id", "action", "entity_type", "entity_id", "ip_address", "user_agent"})
	for _, l := range logs {
		_ = w.Write([]string{
			l.ID.String(),
			l.CreatedAt.UTC().Format(time.RFC3339),
			uuidString(l.UserID),
			l.Action,
			l.EntityType,
			uuidString(l.EntityID),
			l.IPAddress,
			l.UserAgent,
		})
	}
	w.Flush()
}

func (h *Handler) list(c *gin.Context) ([]*model.AuditLog, bool) {
	var filter model.AuditFilter
	if !handler.BindQuery(c, &filter) {
		return nil, false
	}
	userID, ok := handler.QueryUUID(c, "user_id")
	if !ok {
		return nil, false
	}
	filter.UserID = userID

	logs, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return nil, false
	}
	return logs, true
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
