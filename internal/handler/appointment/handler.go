package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

const entity = "appointment"

type Handler struct {
	service appointment.Service
}

func NewHandler(service appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, events *event.EventTrackerMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", events.TrackEvent(entity, "created"), h.CreateAppointment)
		appointments.PUT("", events.TrackEvent(entity, "updated"), h.UpdateFromBody)
		appointments.DELETE("", events.TrackEvent(entity, "deleted"), h.DeleteFromQuery)
		appointments.POST("/request", events.TrackEvent(entity, "requested"), h.RequestAppointment)
		appointments.GET("/upcoming", h.ListUpcoming)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", events.TrackEvent(entity, "updated"), h.UpdateAppointment)
		appointments.DELETE("/:id", events.TrackEvent(entity, "deleted"), h.DeleteAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	appointments, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	appointments, err := h.service.Upcoming(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(created)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Appointment created successfully", created))
}

func (h *Handler) RequestAppointment(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.RequestAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Request(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(created)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Appointment requested successfully", created))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.update(c, id, &req)
}

// UpdateFromBody serves PUT /appointments with the id in the body.
func (h *Handler) UpdateFromBody(c *gin.Context) {
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.ID == nil || *req.ID == uuid.Nil {
		handler.RespondError(c, apperrors.BadRequest("id is required"))
		return
	}
	h.update(c, *req.ID, &req)
}

func (h *Handler) update(c *gin.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	before, after, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetChange(before, after)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment updated successfully", after))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.delete(c, id)
	}
}

// DeleteFromQuery serves DELETE /appointments?id=.
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

	deleted, err := h.service.Delete(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(deleted)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment deleted successfully", nil))
}
