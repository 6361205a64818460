package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-service/internal/domain"
	"go-user-service/internal/service"
	resp "go-user-service/internal/transport/http/response"
)

// UserHandler exposes the users REST surface. Create, sign_in,
// refresh_token and token resolution are public; everything else sits
// behind the access-token middleware.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) MountPublic(g *gin.RouterGroup) {
	g.POST("/users", h.create)
	g.POST("/users/sign_in", h.signIn)
	g.POST("/users/refresh_token", h.refresh)
	g.GET("/users/token", h.resolveToken)
}

func (h *UserHandler) MountProtected(g *gin.RouterGroup) {
	g.GET("/users", h.list)
	g.GET("/users/count", h.count)
	g.GET("/users/:id", h.get)
	g.PUT("/users/:id", h.update)
	g.DELETE("/users/:id", h.delete)
}

func (h *UserHandler) create(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

type listQuery struct {
	Offset      int    `form:"offset,default=0"`
	Limit       int    `form:"limit,default=20"`
	Q           string `form:"q"`
	WithDeleted bool   `form:"with_deleted"`
}

func (q listQuery) domain() domain.Query {
	return domain.Query{Offset: q.Offset, Limit: q.Limit, Search: q.Q, WithDeleted: q.WithDeleted}
}

func (h *UserHandler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	users, err := h.svc.List(c.Request.Context(), q.domain())
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"items": users}))
}

func (h *UserHandler) count(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	n, err := h.svc.Count(c.Request.Context(), q.domain())
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"count": n}))
}

func (h *UserHandler) update(c *gin.Context) {
	var in service.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

func (h *UserHandler) delete(c *gin.Context) {
	u, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}

type signInIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) signIn(c *gin.Context) {
	var in signInIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, err := h.svc.SignIn(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(pair))
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *UserHandler) refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(pair))
}

func (h *UserHandler) resolveToken(c *gin.Context) {
	token := c.Query("accessToken")
	if token == "" {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "missing accessToken"))
		return
	}
	u, err := h.svc.ResolveToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(u))
}
