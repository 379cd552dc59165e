package medicalhistory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/medical"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

const entity = "medical_history"

type Handler struct {
	service medical.Service
}

func NewHandler(service medical.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, events *event.EventTrackerMiddleware) {
	staff := middleware.RequireRoles(model.UserTypeAdmin, model.UserTypePhysician)

	histories := r.Group("/medical-history")
	{
		histories.GET("", h.List)
		histories.POST("", staff, events.TrackEvent(entity, "created"), h.Create)
		histories.PUT("", events.TrackEvent(entity, "updated"), h.UpdateFromBody)
		histories.DELETE("", events.TrackEvent(entity, "deleted"), h.DeleteFromQuery)
		histories.GET("/stats", middleware.RequireRoles(model.UserTypeAdmin), h.Stats)
		histories.GET("/search", staff, h.Search)
		histories.GET("/patients/without-history", staff, h.PatientsWithoutHistory)
		histories.GET("/user/:userId", h.GetByUser)
		histories.GET("/:id", h.Get)
		histories.PUT("/:id", events.TrackEvent(entity, "updated"), h.Update)
		histories.DELETE("/:id", events.TrackEvent(entity, "deleted"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	histories, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(histories))
}

func (h *Handler) Create(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.CreateMedicalHistoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	event.FromContext(c).SetData(created)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Medical history created successfully", created))
}

func (h *Handler) Get(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) GetByUser(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	userID, ok := handler.ParamUUID(c, "userId")
	if !ok {
		return
	}

	history, err := h.service.GetByUserID(c.Request.Context(), caller, userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateMedicalHistoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.update(c, id, &req)
}

// UpdateFromBody serves PUT /medical-history with the id in the body.
func (h *Handler) UpdateFromBody(c *gin.Context) {
	var req model.UpdateMedicalHistoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.ID == nil || *req.ID == uuid.Nil {
		handler.RespondError(c, apperrors.BadRequest("id is required"))
		return
	}
	h.update(c, *req.ID, &req)
}

func (h *Handler) update(c *gin.Context, id uuid.UUID, req *model.UpdateMedicalHistoryRequest) {
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
	c.JSON(http.StatusOK, handler.NewMessageResponse("Medical history updated successfully", after))
}

func (h *Handler) Delete(c *gin.Context) {
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.delete(c, id)
	}
}

// DeleteFromQuery serves DELETE /medical-history?id=.
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
	c.JSON(http.StatusOK, handler.NewMessageResponse("Medical history deleted successfully", nil))
}

func (h *Handler) Stats(c *gin.Context) {
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

func (h *Handler) Search(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	results, err := h.service.Search(c.Request.Context(), caller, c.Query("q"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}

func (h *Handler) PatientsWithoutHistory(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	patients, err := h.service.PatientsWithoutHistory(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
