package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-user-service/internal/core/auth"
	"go-user-service/internal/transport/http/handler"
	mdw "go-user-service/internal/transport/http/middleware"
)

// NewAPIEngine wires the /v1 surface. Mutating and read routes other than
// token endpoints require a bearer access token.
func NewAPIEngine(l *zap.Logger, h *handler.UserHandler, tokens *auth.Tokens) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	Register(h)

	v1 := r.Group("/v1")
	MountAllPublic(v1)

	protected := r.Group("/v1")
	protected.Use(mdw.AuthAccessToken(tokens))
	MountAllProtected(protected)

	return r
}
