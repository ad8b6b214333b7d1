// Package api wires the gateway's HTTP surface: routes, bearer-token auth,
// CORS, request logging, and panic recovery.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/router-for-me/MailRelayGateway/internal/http/api/handlers"
	"github.com/router-for-me/MailRelayGateway/internal/mail"
	"github.com/router-for-me/MailRelayGateway/internal/models"
	"github.com/router-for-me/MailRelayGateway/internal/store"
	"github.com/router-for-me/MailRelayGateway/internal/token"

	log "github.com/sirupsen/logrus"
)

// Dependencies holds the collaborators injected into the router.
type Dependencies struct {
	Store    store.Store
	Codec    *token.Codec
	Sender   mail.Sender
	TokenTTL time.Duration
	MailTo   string
	NowFn    func() time.Time
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.NowFn == nil {
		deps.NowFn = time.Now
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	healthHandler := handlers.NewHealthHandler(deps.Store)
	r.GET("/healthz", healthHandler.Healthz)

	versionHandler := handlers.NewVersionHandler()
	r.GET("/version", versionHandler.GetVersion)

	authHandler := handlers.NewAuthHandler(deps.Store, deps.Codec, deps.TokenTTL, deps.NowFn)
	r.POST("/login", authHandler.Login)

	authed := r.Group("")
	authed.Use(authMiddleware(deps.Codec))

	sendHandler := handlers.NewSendHandler(deps.Store, deps.Sender, deps.MailTo, deps.NowFn)
	authed.POST("/send", sendHandler.Send)

	admin := authed.Group("")
	admin.Use(requireAdmin())

	userHandler := handlers.NewUserHandler(deps.Store, deps.NowFn)
	admin.POST("/users", userHandler.Create)
	admin.GET("/users", userHandler.List)

	return r
}

// authMiddleware validates the bearer token and loads its claims into the
// request context.
func authMiddleware(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization header"})
			return
		}

		raw := strings.TrimPrefix(authHeader, "Bearer ")
		if raw == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid authorization format"})
			return
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "empty token"})
			return
		}

		claims, errVerify := codec.Verify(raw)
		if errVerify != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		c.Set(handlers.ContextUsername, claims.Username)
		c.Set(handlers.ContextRole, claims.Role)
		c.Next()
	}
}

// requireAdmin rejects verified callers whose token lacks the admin role.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(handlers.ContextRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
			return
		}
		c.Next()
	}
}

// requestLogger records one line per request with a generated request ID.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(handlers.ContextRequestID, requestID)
		c.Next()
		log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
		}).Info("request")
	}
}
