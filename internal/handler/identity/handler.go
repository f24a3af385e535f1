package identity

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/handler"
	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/service/identity"
	"github.com/medchain/medchain-api/pkg/auth"
)

type Handler struct {
	service   *identity.Service
	jwtSvc    auth.JWTService
	adminOnly gin.HandlerFunc
}

func NewHandler(service *identity.Service, jwtSvc auth.JWTService, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{
		service:   service,
		jwtSvc:    jwtSvc,
		adminOnly: adminOnly,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}

	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/pending", h.adminOnly, h.PendingUsers)
		users.POST("/:id/approve", h.adminOnly, h.ApproveUser)
		users.POST("/:id/reject", h.adminOnly, h.RejectUser)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Name, req.Email, model.Role(req.Role))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, ok, err := h.service.Login(c.Request.Context(), req.Email, model.Role(req.Role))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid email or role, or account not active"))
		return
	}

	token, err := h.jwtSvc.GenerateToken(user)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(&model.TokenResponse{
		Token: token,
		User:  user,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	h.service.Logout()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListUsers(c *gin.Context) {
	if role := c.Query("role"); role != "" {
		if !model.Role(role).Valid() {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid role"))
			return
		}
		users, err := h.service.UsersByRole(c.Request.Context(), model.Role(role))
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
		return
	}

	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) PendingUsers(c *gin.Context) {
	users, err := h.service.PendingUsers(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) ApproveUser(c *gin.Context) {
	h.review(c, h.service.ApproveUser)
}

func (h *Handler) RejectUser(c *gin.Context) {
	h.review(c, h.service.RejectUser)
}

func (h *Handler) review(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*model.User, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	user, err := apply(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("user not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}
