package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/patient"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

const entity = "patient"

type Handler struct {
	service patient.Service
}

func NewHandler(service patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, events *event.EventTrackerMiddleware) {
	staff := middleware.RequireRoles(model.UserTypeAdmin, model.UserTypePhysician)

	patients := r.Group("/patients")
	{
		patients.GET("", staff, h.ListPatients)
		patients.POST("", staff, events.TrackEvent(entity, "created"), h.CreatePatient)
		patients.GET("/stats", staff, h.GetStats)
		patients.GET("/search", h.SearchPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", events.TrackEvent(entity, "updated"), h.UpdatePatient)
		patients.DELETE("/:id", events.TrackEvent(entity, "deleted"), h.DeletePatient)
		patients.GET("/:id/activity", h.GetActivity)
	}

	r.GET("/patient-portal/:id", h.GetPortal)
}

func (h *Handler) ListPatients(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var filter model.PatientFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	resp, err := h.service.List(c.Request.Context(), caller, &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) CreatePatient(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(created)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Patient created successfully", created))
}

func (h *Handler) GetPatient(c *gin.Context) {
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

func (h *Handler) UpdatePatient(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	before, after, err := h.service.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetChange(before, after)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Patient updated successfully", after))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(deleted)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Patient deleted successfully", nil))
}

func (h *Handler) GetStats(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	resp, err := h.service.Search(c.Request.Context(), caller, c.Query("q"), handler.QueryInt(c, "limit"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) GetActivity(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Activity(c.Request.Context(), caller, id, handler.QueryInt(c, "limit"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) GetPortal(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Portal(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
