package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"droneOpsBooking/internal/assistant"
	"droneOpsBooking/internal/auth"
	"droneOpsBooking/internal/booking"
	"droneOpsBooking/models"
)

// Handler serves the assistant's REST surface.
type Handler struct {
	assistant *assistant.Service
	engine    *booking.Engine
	log       *zap.Logger
}

func NewHandler(svc *assistant.Service, engine *booking.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{assistant: svc, engine: engine, log: log}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	History   []models.Turn `json:"history"`
	UserInput string        `json:"user_input"`
	SessionID string        `json:"session_id,omitempty"`
}

// Chat runs one conversational turn.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, h.log, http.StatusBadRequest, "invalid chat request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		jsonError(c, h.log, http.StatusBadRequest, "invalid chat request", "user_input is required")
		return
	}
	for _, t := range req.History {
		if t.Role != models.RoleUser && t.Role != models.RoleAssistant {
			jsonError(c, h.log, http.StatusBadRequest, "invalid chat request", "history roles must be user or assistant")
			return
		}
	}
	reply := h.assistant.Converse(c.Request.Context(), req.SessionID, req.History, req.UserInput)
	c.JSON(http.StatusOK, reply)
}

// Status returns the fleet overview.
func (h *Handler) Status(c *gin.Context) {
	st, err := h.assistant.ListStatus(c.Request.Context())
	if err != nil {
		h.log.Error("status failed", zap.Error(err))
		jsonError(c, h.log, http.StatusInternalServerError, "failed to read status", "")
		return
	}
	c.JSON(http.StatusOK, st)
}

// CSV returns the mission export wrapped in JSON.
func (h *Handler) CSV(c *gin.Context) {
	out, err := h.assistant.ExportMissionsCSV(c.Request.Context())
	if err != nil {
		h.log.Error("csv export failed", zap.Error(err))
		jsonError(c, h.log, http.StatusInternalServerError, "failed to export missions", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"csv_content": out})
}

// CSVDownload returns the mission export as a file.
func (h *Handler) CSVDownload(c *gin.Context) {
	out, err := h.assistant.ExportMissionsCSV(c.Request.Context())
	if err != nil {
		h.log.Error("csv export failed", zap.Error(err))
		jsonError(c, h.log, http.StatusInternalServerError, "failed to export missions", "")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="missions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// Release runs a release sweep. The optional ?today=YYYY-MM-DD overrides the
// engine clock.
func (h *Handler) Release(c *gin.Context) {
	today := h.engine.Today()
	if raw := c.Query("today"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			jsonError(c, h.log, http.StatusBadRequest, "invalid today", err.Error())
			return
		}
		today = d
	}
	operator := "unknown"
	if p, ok := auth.PrincipalFrom(c); ok {
		operator = p.Name
	}
	released, err := h.engine.Release(c.Request.Context(), today)
	if err != nil {
		h.log.Error("release failed", zap.String("operator", operator), zap.Error(err))
		jsonError(c, h.log, http.StatusInternalServerError, "release failed", "")
		return
	}
	if released.Pilots == nil {
		released.Pilots = []string{}
	}
	if released.Drones == nil {
		released.Drones = []string{}
	}
	h.log.Info("release sweep",
		zap.String("operator", operator),
		zap.String("today", today.String()),
		zap.Strings("pilots", released.Pilots),
		zap.Strings("drones", released.Drones))
	c.JSON(http.StatusOK, released)
}

// Health reports liveness and whether the oracle is configured.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "oracle_configured": h.assistant.OracleConfigured()})
}
