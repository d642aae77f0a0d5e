package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/everafter-ai/everafter/internal/httpapi/middleware"
	"github.com/everafter-ai/everafter/internal/store/rabbitmq"
)

type recordingPublisher struct {
	published []rabbitmq.EventMessage
}

func (p *recordingPublisher) PublishEvent(_ context.Context, msg rabbitmq.EventMessage) error {
	p.published = append(p.published, msg)
	return nil
}

func newEventsRouter(pub EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{Rabbit: pub}
	r := gin.New()
	r.POST("/events", func(c *gin.Context) {
		// stands in for the rate limiter, which fixes the session of record
		c.Set(middleware.SessionIDKey, "sess-a")
	}, h.IngestEvent)
	return r
}

func TestIngestEvent_BodySessionMustMatchLimitedSession(t *testing.T) {
	pub := &recordingPublisher{}
	r := newEventsRouter(pub)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"session_id":"sess-b","event_type":"page_view"}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if len(pub.published) != 0 {
		t.Fatalf("mismatched session was published: %+v", pub.published)
	}
}

func TestIngestEvent_AttributesLimitedSession(t *testing.T) {
	pub := &recordingPublisher{}
	r := newEventsRouter(pub)

	// no session in the body: the event carries the limited key
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"event_type":"page_view"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if len(pub.published) != 1 || pub.published[0].SessionID != "sess-a" {
		t.Fatalf("published = %+v", pub.published)
	}

	// a matching body session is fine too
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"session_id":"sess-a","event_type":"click"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if len(pub.published) != 2 || pub.published[1].SessionID != "sess-a" {
		t.Fatalf("published = %+v", pub.published)
	}
}
