package api

import (
	"net/http"

	"pos-agent/internal/models"
	"pos-agent/internal/notify"

	"github.com/gin-gonic/gin"
)

func (h *Handler) sessionView() gin.H {
	view := gin.H{
		"state":   h.provider.State(),
		"loading": h.provider.Loading(),
		"user":    h.provider.CurrentUser(),
	}
	if pending := h.navigator.Pending(); pending != "" {
		view["redirect"] = pending
	}
	return view
}

// getSession reports who is logged in. ?revalidate=true re-probes first.
func (h *Handler) getSession(c *gin.Context) {
	if c.Query("revalidate") == "true" {
		h.provider.Revalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, h.sessionView())
}

func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if _, err := h.provider.Login(c.Request.Context(), req); err != nil {
		respondError(c, err, "Login failed")
		return
	}
	h.navigator.Take()

	c.JSON(http.StatusOK, h.sessionView())
}

func (h *Handler) logout(c *gin.Context) {
	h.provider.Logout(c.Request.Context())
	h.notifications.Notify(notify.LevelSuccess, "Logged out")

	view := h.sessionView()
	view["redirect"] = h.navigator.Take()
	c.JSON(http.StatusOK, view)
}

func (h *Handler) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid signup form", err)
		return
	}
	picture, err := formFile(c, "profilePicture")
	if err != nil {
		badRequest(c, "Invalid profile picture", err)
		return
	}

	resp, err := h.provider.Signup(c.Request.Context(), req, picture)
	if err != nil {
		respondError(c, err, "Signup failed")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
