// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"sync"

	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventDocumentUploaded EventType = "document_uploaded"
	EventDocumentDeleted  EventType = "document_deleted"
)

const clientBuffer = 32

// Event represents an SSE event payload
type Event struct {
	Type       EventType   `json:"type"`
	DocumentID uuid.UUID   `json:"documentId,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

type client struct {
	userID uuid.UUID
	orgID  uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // userID -> clients
	orgs    map[uuid.UUID]map[uuid.UUID]struct{}
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		orgs:    make(map[uuid.UUID]map[uuid.UUID]struct{}),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
	if c.orgID != uuid.Nil {
		members, ok := s.orgs[c.orgID]
		if !ok {
			members = make(map[uuid.UUID]struct{})
			s.orgs[c.orgID] = members
		}
		members[c.userID] = struct{}{}
	}
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
		if members, ok := s.orgs[c.orgID]; ok {
			delete(members, c.userID)
			if len(members) == 0 {
				delete(s.orgs, c.orgID)
			}
		}
	}
}

// Publish sends an event to every open connection of a user. A client whose
// buffer is full misses the event.
func (s *Service) Publish(userID uuid.UUID, event Event) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delivered := 0
	for _, c := range s.clients[userID] {
		select {
		case c.events <- event:
			delivered++
		default:
			s.log.Warn("sse buffer full", "userId", userID, "type", event.Type)
		}
	}
	return delivered
}

// PublishToOrganization broadcasts an event to all connected org members.
func (s *Service) PublishToOrganization(orgID uuid.UUID, event Event) int {
	s.mu.RLock()
	userIDs := make([]uuid.UUID, 0, len(s.orgs[orgID]))
	for id := range s.orgs[orgID] {
		userIDs = append(userIDs, id)
	}
	s.mu.RUnlock()

	delivered := 0
	for _, userID := range userIDs {
		delivered += s.Publish(userID, event)
	}
	s.log.Debug("sse event published", "type", event.Type, "orgId", orgID, "clients", delivered)
	return delivered
}

// Handler returns a Gin handler streaming events for the caller's organization.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.MustGetIdentity(c)
		if id == nil {
			return
		}

		var orgID uuid.UUID
		if tenant := id.TenantID(); tenant != nil {
			orgID = *tenant
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			userID: id.UserID(),
			orgID:  orgID,
			events: make(chan Event, clientBuffer),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": cl.userID, "orgId": orgID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every client.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
	s.orgs = make(map[uuid.UUID]map[uuid.UUID]struct{})
}
