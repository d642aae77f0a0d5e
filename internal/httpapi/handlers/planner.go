package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/common"
	"github.com/everafter-ai/everafter/internal/convo"
	"github.com/everafter-ai/everafter/internal/planning"
	"github.com/everafter-ai/everafter/internal/tools"
)

type turnReq struct {
	Message string `json:"message"`
}

// HandleOnboardingTurn runs one conversational onboarding turn. The message
// is optional on the opening turn only.
func (h *Handler) HandleOnboardingTurn(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req turnReq
	_ = c.ShouldBindJSON(&req) // empty body allowed on the opening turn

	res, err := h.Convo.HandleTurn(c.Request.Context(), tid, req.Message)
	if err != nil {
		if errors.Is(err, convo.ErrEmptyMessage) {
			common.Fail(c, http.StatusBadRequest, 10005, "message required")
			return
		}
		log.Printf("[HandleOnboardingTurn] tenant=%d err=%v", tid, err)
		common.Fail(c, http.StatusBadGateway, 50201, "assistant unavailable, nothing was saved")
		return
	}

	common.OK(c, res)
}

type toolCallReq struct {
	Tool   string         `json:"tool" binding:"required"`
	Params map[string]any `json:"params"`
}

// ExecuteToolCall dispatches a model- or UI-issued tool call. The executor
// never errors; its structured result is passed through as-is.
func (h *Handler) ExecuteToolCall(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req toolCallReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	res := h.Tools.Execute(c.Request.Context(), req.Tool, req.Params, tools.Context{TenantID: tid})
	common.OK(c, res)
}

func (h *Handler) GetDecisions(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	rows, err := h.Tracker.All(c.Request.Context(), tid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list decisions")
		return
	}
	common.OK(c, gin.H{"decisions": rows})
}

func (h *Handler) GetDecisionProgress(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	progress, err := h.Tracker.Progress(c.Request.Context(), tid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to compute progress")
		return
	}
	common.OK(c, progress)
}

func (h *Handler) GetPlanningGaps(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	gaps, err := planning.AnalyzeGaps(c.Request.Context(), h.Pages, tid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to analyze gaps")
		return
	}
	common.OK(c, gin.H{"gaps": gaps})
}

func (h *Handler) GetKernel(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	k, err := h.Kernels.Get(c.Request.Context(), tid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40403, "no facts recorded yet")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to load facts")
		return
	}
	common.OK(c, k)
}

func (h *Handler) ListTranscript(c *gin.Context) {
	tid, ok := tenantIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	var beforeID uint64
	if v := c.Query("before_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.Convo.Transcript(c.Request.Context(), tid, limit, beforeID)
	if err != nil {
		if convo.IsNotFound(err) {
			common.Fail(c, http.StatusNotFound, 40404, "no conversation yet")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	var nextBeforeID uint64
	if len(msgs) > 0 {
		nextBeforeID = msgs[len(msgs)-1].ID
	}

	common.OK(c, gin.H{
		"messages":       msgs,
		"next_before_id": nextBeforeID,
	})
}
