package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(userID, orgID uuid.UUID) *client {
	return &client{userID: userID, orgID: orgID, events: make(chan Event, clientBuffer)}
}

func TestPublishToOrganizationReachesOnlyMembers(t *testing.T) {
	s := New(logger.New("development"))
	orgA, orgB := uuid.New(), uuid.New()
	member := newClient(uuid.New(), orgA)
	outsider := newClient(uuid.New(), orgB)
	s.addClient(member)
	s.addClient(outsider)

	delivered := s.PublishToOrganization(orgA, Event{Type: EventDocumentUploaded, Message: "report.pdf"})

	assert.Equal(t, 1, delivered)
	require.Len(t, member.events, 1)
	assert.Empty(t, outsider.events)
	assert.Equal(t, "report.pdf", (<-member.events).Message)
}

func TestPublishDropsWhenBufferIsFull(t *testing.T) {
	s := New(logger.New("development"))
	userID := uuid.New()
	c := newClient(userID, uuid.Nil)
	s.addClient(c)

	for i := 0; i < clientBuffer; i++ {
		s.Publish(userID, Event{Type: EventDocumentDeleted})
	}
	assert.Equal(t, 0, s.Publish(userID, Event{Type: EventDocumentDeleted}))
}

func TestRemoveClientForgetsMembership(t *testing.T) {
	s := New(logger.New("development"))
	orgID := uuid.New()
	c := newClient(uuid.New(), orgID)
	s.addClient(c)
	s.removeClient(c)

	assert.Equal(t, 0, s.PublishToOrganization(orgID, Event{Type: EventDocumentUploaded}))
	_, open := <-c.events
	assert.False(t, open)
}

func TestHandlerStreamsOrganizationEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(logger.New("development"))
	userID, orgID := uuid.New(), uuid.New()

	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextTenantIDKey, orgID)
		c.Next()
	}, s.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		engine.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.PublishToOrganization(orgID, Event{Type: EventDocumentUploaded, Message: "minutes.docx"}) > 0
	}, time.Second, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream"))
	assert.Contains(t, body, "event:connected")
	assert.Contains(t, body, "event:document_uploaded")
	assert.Contains(t, body, "minutes.docx")
}

func TestHandlerRejectsAnonymousCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(logger.New("development"))
	engine := gin.New()
	engine.GET("/stream", s.Handler())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
