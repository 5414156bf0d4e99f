package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lotto/internal/game"
	"lotto/internal/services"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service   *services.LotteryService
	templates *template.Template
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.LotteryService, templates *template.Template) *HTTPHandler {
	return &HTTPHandler{
		service:   service,
		templates: templates,
	}
}

type identityRequest struct {
	Name string `json:"name"`
}

type purchaseRequest struct {
	Count *int `json:"count" binding:"required"`
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData)
	if err != nil {
		logger.Errorf("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	err = h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData)
	if err != nil {
		logger.Errorf("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// RegisterPublicRoutes registers the routes that need no session.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/dashboard", h.ShowDashboard)
	router.GET("/api/players", h.ListPlayers)
}

// RegisterTenantRoutes registers the routes bound to a player session.
func (h *HTTPHandler) RegisterTenantRoutes(router gin.IRouter) {
	router.GET("/api/session", h.GetSession)
	router.DELETE("/api/session", h.DeleteSession)
	router.POST("/api/session/identity", h.ResolveIdentity)
	router.POST("/api/session/tickets", h.BuyTickets)
	router.POST("/api/session/draw", h.StartDraw)
	router.POST("/api/session/reset", h.ResetGame)
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.service.SessionCount()})
}

// GetSession returns the session's full state.
func (h *HTTPHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot(c.Request.Context(), tenantID(c)))
}

// DeleteSession drops the session.
func (h *HTTPHandler) DeleteSession(c *gin.Context) {
	h.service.ClearSession(tenantID(c))
	c.Status(http.StatusNoContent)
}

// ResolveIdentity binds a named player to the session.
func (h *HTTPHandler) ResolveIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	tenant := tenantID(c)
	if _, err := h.service.ResolveIdentity(ctx, tenant, req.Name); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Snapshot(ctx, tenant))
}

// BuyTickets purchases tickets for the session's player.
func (h *HTTPHandler) BuyTickets(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Fractional or non-numeric count.
			h.fail(c, game.ErrInvalidTicketCount)
			return
		}
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	tenant := tenantID(c)
	tickets, err := h.service.BuyTickets(ctx, tenant, *req.Count)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"session": h.service.Snapshot(ctx, tenant),
	})
}

// StartDraw closes the session's round.
func (h *HTTPHandler) StartDraw(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := tenantID(c)
	result, err := h.service.Draw(ctx, tenant)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"session": h.service.Snapshot(ctx, tenant),
	})
}

// ResetGame restores the session to its initial state.
func (h *HTTPHandler) ResetGame(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Reset(c.Request.Context(), tenantID(c)))
}

// ListPlayers returns every stored player.
func (h *HTTPHandler) ListPlayers(c *gin.Context) {
	players, err := h.service.ListPlayers(c.Request.Context())
	if err != nil {
		logger.Errorf("Error listing players: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, players)
}

// ShowDashboard renders the operator dashboard.
func (h *HTTPHandler) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	players, err := h.service.ListPlayers(ctx)
	if err != nil {
		logger.Errorf("Error listing players: %v", err)
		c.String(http.StatusServiceUnavailable, "Player store unavailable")
		return
	}
	operator, err := h.service.Operator(ctx)
	if err != nil {
		logger.Errorf("Error loading operator: %v", err)
		c.String(http.StatusServiceUnavailable, "Player store unavailable")
		return
	}

	data := gin.H{
		"title":    "Operator Dashboard",
		"Players":  players,
		"Operator": operator,
	}
	h.renderPage(c, data, "dashboard.html")
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	code := services.ErrorCode(err)
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("Request %s failed: %v", requestID(c), err)
	}

	body := gin.H{"error": code, "message": err.Error()}
	if errors.Is(err, services.ErrStoreUnavailable) {
		body["session"] = h.service.Snapshot(c.Request.Context(), tenantID(c))
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNameMissing), errors.Is(err, game.ErrInvalidTicketCount):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrRoundLocked), errors.Is(err, game.ErrRoundOpen):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientBalance), errors.Is(err, game.ErrInsufficientTickets):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
}
