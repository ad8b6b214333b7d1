package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/MailRelayGateway/internal/models"
	"github.com/router-for-me/MailRelayGateway/internal/store"

	log "github.com/sirupsen/logrus"
)

// UserHandler serves the admin user-provisioning endpoints.
type UserHandler struct {
	store store.Store
	nowFn func() time.Time
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(s store.Store, nowFn func() time.Time) *UserHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &UserHandler{store: s, nowFn: nowFn}
}

// createUserRequest defines the request body for user creation. The mail
// app password arrives as app_pass but is stored under the single canonical
// record field.
type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppPass     string `json:"app_pass"`
	PremiumDays int    `json:"premiumDays"`
}

// Create appends a new user record and persists the collection.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}
	role := strings.TrimSpace(body.Role)
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid role"})
		return
	}

	users, version, errLoad := h.store.Load(c.Request.Context())
	if errLoad != nil {
		log.WithError(errLoad).Error("create user: load users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	if users.Contains(username) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "user already exists"})
		return
	}

	now := h.nowFn()
	var premiumUntil int64
	if body.PremiumDays > 0 {
		premiumUntil = now.UnixMilli() + int64(body.PremiumDays)*24*60*60*1000
	}

	users = append(users, models.UserRecord{
		Username:       username,
		Password:       body.Password,
		Role:           role,
		Email:          strings.TrimSpace(body.Email),
		AppPassword:    strings.TrimSpace(body.AppPass),
		Premium:        body.PremiumDays > 0,
		PremiumUntil:   premiumUntil,
		LastSend:       0,
		UsedToday:      0,
		DailyResetDate: models.DailyResetSentinel,
	})

	if errSave := h.store.Save(c.Request.Context(), users, version, "add user "+username); errSave != nil {
		if errors.Is(errSave, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "store conflict, retry"})
			return
		}
		log.WithError(errSave).Error("create user: save users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user created"})
}

// List returns a credential-free summary of every user record.
func (h *UserHandler) List(c *gin.Context) {
	users, _, errLoad := h.store.Load(c.Request.Context())
	if errLoad != nil {
		log.WithError(errLoad).Error("list users: load users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		rec := &users[i]
		out = append(out, gin.H{
			"username":     rec.Username,
			"role":         rec.EffectiveRole(),
			"premium":      rec.Premium,
			"premiumUntil": rec.PremiumUntil,
			"usedToday":    rec.UsedToday,
			"lastSend":     rec.LastSend,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}
