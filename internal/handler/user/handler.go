package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/user"
)

type Handler struct {
	service user.Service
}

func NewHandler(service user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", middleware.RequireRoles(model.UserTypeAdmin), h.CreateUser)
		users.PUT("", h.UpdateSelf)
		users.DELETE("", h.DeleteSelf)
		users.GET("/me", h.GetSelf)
		users.GET("/physicians", h.ListPhysicians)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	users, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) CreateUser(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	var req model.CreateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewMessageResponse("User created successfully", created))
}

func (h *Handler) GetSelf(c *gin.Context) {
	if caller := middleware.MustCurrentUser(c); caller != nil {
		h.get(c, caller, caller.ID)
	}
}

func (h *Handler) GetUser(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.get(c, caller, id)
	}
}

func (h *Handler) UpdateSelf(c *gin.Context) {
	if caller := middleware.MustCurrentUser(c); caller != nil {
		h.update(c, caller, caller.ID)
	}
}

func (h *Handler) UpdateUser(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.update(c, caller, id)
	}
}

func (h *Handler) DeleteSelf(c *gin.Context) {
	if caller := middleware.MustCurrentUser(c); caller != nil {
		h.delete(c, caller, caller.ID)
	}
}

func (h *Handler) DeleteUser(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}
	if id, ok := handler.ParamUUID(c, "id"); ok {
		h.delete(c, caller, id)
	}
}

func (h *Handler) ListPhysicians(c *gin.Context) {
	physicians, err := h.service.ListPhysicians(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(physicians))
}

func (h *Handler) get(c *gin.Context, caller *model.AuthUser, id uuid.UUID) {
	found, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) update(c *gin.Context, caller *model.AuthUser, id uuid.UUID) {
	var req model.UpdateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("User updated successfully", updated))
}

func (h *Handler) delete(c *gin.Context, caller *model.AuthUser, id uuid.UUID) {
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("User deleted successfully", nil))
}
