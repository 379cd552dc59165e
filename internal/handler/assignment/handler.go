package assignment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/assignment"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

const entity = "assignment"

type Handler struct {
	service assignment.Service
}

func NewHandler(service assignment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, events *event.EventTrackerMiddleware) {
	admin := middleware.RequireRoles(model.UserTypeAdmin)

	assignments := r.Group("/physician-patients")
	{
		assignments.GET("", h.List)
		assignments.POST("", admin, events.TrackEvent(entity, "created"), h.Create)
		assignments.DELETE("", admin, events.TrackEvent(entity, "deleted"), h.DeleteFromQuery)
		assignments.DELETE("/:id", admin, events.TrackEvent(entity, "deleted"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	physicianID, ok := handler.QueryUUID(c, "physician_id")
	if !ok {
		return
	}
	patientID, ok := handler.QueryUUID(c, "patient_id")
	if !ok {
		return
	}

	assignments, err := h.service.List(c.Request.Context(), caller, &model.AssignmentFilter{
		PhysicianID: physicianID,
		PatientID:   patientID,
	})
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(assignments))
}

func (h *Handler) Create(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.CreateAssignmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(created)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Physician assigned to patient successfully", created))
}

func (h *Handler) Delete(c *gin.Context) {
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.delete(c, id)
	}
}

// DeleteFromQuery serves DELETE /physician-patients?id=.
func (h *Handler) DeleteFromQuery(c *gin.Context) {
	id, ok := handler.QueryUUID(c, "id")
	if !ok {
		return
	}
	if id == nil {
		handler.RespondError(c, apperrors.BadRequest("id is required"))
		return
	}
	h.delete(c, *id)
}

func (h *Handler) delete(c *gin.Context, id uuid.UUID) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(gin.H{"id": id})
	c.JSON(http.StatusOK, handler.NewMessageResponse("Relationship removed successfully", nil))
}
