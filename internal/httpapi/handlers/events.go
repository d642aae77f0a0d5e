package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/everafter-ai/everafter/internal/common"
	"github.com/everafter-ai/everafter/internal/httpapi/middleware"
	"github.com/everafter-ai/everafter/internal/store/rabbitmq"
)

type ingestEventReq struct {
	SessionID string         `json:"session_id"`
	EventType string         `json:"event_type" binding:"required"`
	Page      string         `json:"page"`
	Metadata  map[string]any `json:"metadata"`
}

// IngestEvent accepts one public analytics event and enqueues it. The rate
// limiter has already run and fixed the session of record; a body that
// names a different session is rejected so the limit cannot be sidestepped.
func (h *Handler) IngestEvent(c *gin.Context) {
	var req ingestEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	sessionID := c.GetString(middleware.SessionIDKey)
	if req.SessionID != "" && req.SessionID != sessionID {
		common.Fail(c, http.StatusBadRequest, 10012, "session id mismatch")
		return
	}
	if len(req.Metadata) > 0 {
		// reject oversized metadata before it rides the queue
		if b, err := json.Marshal(req.Metadata); err != nil || len(b) > 8*1024 {
			common.Fail(c, http.StatusBadRequest, 10011, "metadata too large")
			return
		}
	}

	eventID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	msg := rabbitmq.EventMessage{
		EventID:   eventID,
		SessionID: sessionID,
		EventType: req.EventType,
		Page:      req.Page,
		Metadata:  req.Metadata,
		Ts:        time.Now().Unix(),
	}
	if err := h.Rabbit.PublishEvent(c.Request.Context(), msg); err != nil {
		log.Printf("[IngestEvent] publish failed session=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
		return
	}

	common.OK(c, gin.H{"event_id": eventID})
}
