package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dileep-u-k/location-agent/internal/agent"
)

// GatewayHandler exposes the agent over HTTP: session lifecycle plus a
// server-sent-events chat endpoint that relays intermediate diagnostics and
// the final answer per turn.
type GatewayHandler struct {
	driver   *agent.Driver
	sessions *agent.SessionStore
	config   *AppConfig
}

func NewGatewayHandler(driver *agent.Driver, sessions *agent.SessionStore, config *AppConfig) *GatewayHandler {
	return &GatewayHandler{driver: driver, sessions: sessions, config: config}
}

type createSessionRequest struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Radius    string `json:"radius"`
}

// HandleCreateSession creates a session. Coordinates and radius, when
// provided, become agent-visible session attributes.
func (h *GatewayHandler) HandleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	attrs := map[string]string{"radius": h.config.DefaultRadius}
	if req.Radius != "" {
		attrs["radius"] = req.Radius
	}
	if req.Latitude != "" && req.Longitude != "" {
		attrs["latitude"] = req.Latitude
		attrs["longitude"] = req.Longitude
	}

	sess := h.sessions.Create(attrs)
	log.Printf("🆕 Session created: %s", sess.ID)
	c.JSON(http.StatusOK, gin.H{"sessionId": sess.ID})
}

// HandleEndSession discards a session's state, locally and remotely. The
// remote side is best effort.
func (h *GatewayHandler) HandleEndSession(c *gin.Context) {
	id := c.Param("id")
	if sess, ok := h.sessions.Get(id); ok {
		if err := h.driver.EndSession(c.Request.Context(), sess); err != nil {
			log.Printf("⚠️ Remote session end failed for %s: %v", id, err)
		}
	}
	h.sessions.Remove(id)
	c.Status(http.StatusNoContent)
}

type chatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// HandleChat runs one turn and streams its outcome as server-sent events:
// zero or more intermediate "trace"/"tool_call"/"tool_result" events in
// order, then exactly one terminal "final" or "error" event.
func (h *GatewayHandler) HandleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown session: " + req.SessionID})
		return
	}

	log.Printf("--- New Turn (Session: %s, Input: '%.40s') ---", sess.ID, req.Message)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	emit := func(ev agent.Event) {
		c.SSEvent(string(ev.Type), ev)
		c.Writer.Flush()
	}

	answer, err := h.driver.RunTurn(c.Request.Context(), sess, req.Message, emit)
	if err != nil {
		// Agent-service failures terminate the turn visibly; the process
		// keeps serving other turns.
		log.Printf("❌ Turn failed for session %s: %v", sess.ID, err)
		c.SSEvent("error", gin.H{"message": err.Error()})
		c.Writer.Flush()
		return
	}

	c.SSEvent("final", answer)
	c.Writer.Flush()
}

// HandleHealthz reports liveness and build metadata.
func (h *GatewayHandler) HandleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, GetBuildInfo())
}
