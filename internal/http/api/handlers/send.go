package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/MailRelayGateway/internal/mail"
	"github.com/router-for-me/MailRelayGateway/internal/quota"
	"github.com/router-for-me/MailRelayGateway/internal/store"

	log "github.com/sirupsen/logrus"
)

// SendHandler serves the relay-send endpoint.
type SendHandler struct {
	store  store.Store
	sender mail.Sender
	mailTo string
	nowFn  func() time.Time
}

// NewSendHandler constructs a SendHandler.
func NewSendHandler(s store.Store, sender mail.Sender, mailTo string, nowFn func() time.Time) *SendHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SendHandler{store: s, sender: sender, mailTo: mailTo, nowFn: nowFn}
}

// sendRequest defines the send request body.
type sendRequest struct {
	Number string `json:"number"`
}

// Send relays the phone number to the support address using the caller's
// own mail credentials, then advances the caller's usage counters. The
// check, the send, and the commit form one best-effort pass; a racing
// writer makes the final save fail with a conflict instead of clobbering.
func (h *SendHandler) Send(c *gin.Context) {
	var body sendRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "number required"})
		return
	}
	number := strings.TrimSpace(body.Number)
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "number required"})
		return
	}

	username := c.GetString(ContextUsername)

	users, version, errLoad := h.store.Load(c.Request.Context())
	if errLoad != nil {
		log.WithError(errLoad).Error("send: load users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	// A valid token without a record is treated as an authorization gap, not
	// a 404, so usernames cannot be probed.
	rec := users.Find(username)
	if rec == nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "user not found"})
		return
	}

	now := h.nowFn()
	res := quota.Check(rec, now)
	if !res.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": res.Message})
		return
	}

	if rec.Email == "" || rec.AppPassword == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "sender email or app password not configured"})
		return
	}

	errSend := h.sender.Send(mail.Message{
		From:        rec.Email,
		AppPassword: rec.AppPassword,
		To:          h.mailTo,
		Subject:     "",
		Body:        number,
	})
	if errSend != nil {
		log.WithError(errSend).WithField("username", username).Error("send: mail dispatch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to send email"})
		return
	}

	quota.Commit(rec, now)

	if errSave := h.store.Save(c.Request.Context(), users, version, "update usage for "+username); errSave != nil {
		if errors.Is(errSave, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "store conflict, retry"})
			return
		}
		log.WithError(errSave).Error("send: save users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "email sent to support"})
}
