package auth

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/auth"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

type Handler struct {
	svc          auth.Service
	secureCookie bool
}

// NewHandler marks the token cookie Secure when secureCookie is set, which
// should be the case in production.
func NewHandler(svc auth.Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authenticate gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/register", h.Register)
		group.POST("/logout", h.Logout)
		group.GET("/me", authenticate, h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	// An empty body leaves req zero so the service reports missing credentials.
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		handler.RespondError(c, apperrors.BadRequest(handler.BindingMessage(err)))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.setCookie(c, resp.Token)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Login successful", resp))
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.setCookie(c, resp.Token)
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Registration successful", resp))
}

func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if err := h.svc.Logout(c.Request.Context(), token); err != nil {
			handler.RespondError(c, err)
			return
		}
	}

	h.clearCookie(c)
	c.JSON(http.StatusOK, handler.NewMessageResponse("Logout successful", nil))
}

func (h *Handler) Me(c *gin.Context) {
	caller := middleware.MustCurrentUser(c)
	if caller == nil {
		return
	}

	user, err := h.svc.Me(c.Request.Context(), caller.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.svc.TokenTTL().Seconds()), "/", "", h.secureCookie, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
}
