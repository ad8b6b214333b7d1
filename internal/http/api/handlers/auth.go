package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/MailRelayGateway/internal/quota"
	"github.com/router-for-me/MailRelayGateway/internal/store"
	"github.com/router-for-me/MailRelayGateway/internal/token"

	log "github.com/sirupsen/logrus"
)

// Context keys set by the router middleware.
const (
	ContextUsername  = "username"
	ContextRole      = "role"
	ContextRequestID = "requestID"
)

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	store    store.Store
	codec    *token.Codec
	tokenTTL time.Duration
	nowFn    func() time.Time
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(s store.Store, codec *token.Codec, tokenTTL time.Duration, nowFn func() time.Time) *AuthHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AuthHandler{store: s, codec: codec, tokenTTL: tokenTTL, nowFn: nowFn}
}

// loginRequest defines the login request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials against the stored collection and issues a
// bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}

	users, _, errLoad := h.store.Load(c.Request.Context())
	if errLoad != nil {
		log.WithError(errLoad).Error("login: load users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	rec := users.Find(username)
	if rec == nil || rec.Password != body.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid username or password"})
		return
	}

	now := h.nowFn()
	// Expired premium is reported as off; the canonical record is only
	// rewritten by mutating operations.
	quota.RecomputePremium(rec, now)

	claims := token.Claims{
		Username: rec.Username,
		Role:     rec.EffectiveRole(),
		Exp:      now.Add(h.tokenTTL).UnixMilli(),
	}
	tok, errIssue := h.codec.Issue(claims)
	if errIssue != nil {
		log.WithError(errIssue).Error("login: issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successful",
		"role":    claims.Role,
		"premium": rec.Premium,
		"token":   tok,
	})
}
