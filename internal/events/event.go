// Package events holds the domain events modules exchange over the bus.
// The bus itself lives in platform/events.
package events

import (
	"ngo_erp_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Meta        = events.Meta
	InMemoryBus = events.InMemoryBus
)

var (
	NewMeta        = events.NewMeta
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Registration Domain Events
// =============================================================================

// TenantRegistered is published after an organization, its admin identity,
// profile and module subscriptions were all created.
type TenantRegistered struct {
	Meta
	OrganizationID   uuid.UUID `json:"organizationId"`
	OrganizationName string    `json:"organizationName"`
	UserID           uuid.UUID `json:"userId"`
	Email            string    `json:"email"`
	ContactName      string    `json:"contactName"`
	Modules          []string  `json:"modules"`
}

func (e TenantRegistered) EventName() string { return "registration.tenant.registered" }

// =============================================================================
// Document Domain Events
// =============================================================================

// DocumentUploaded is published after a document's object and metadata were stored.
type DocumentUploaded struct {
	Meta
	DocumentID     uuid.UUID `json:"documentId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UploadedBy     uuid.UUID `json:"uploadedBy"`
	FileName       string    `json:"fileName"`
	SizeBytes      int64     `json:"sizeBytes"`
}

func (e DocumentUploaded) EventName() string { return "documents.document.uploaded" }

// DocumentDeleted is published after a document was removed.
type DocumentDeleted struct {
	Meta
	DocumentID     uuid.UUID `json:"documentId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	DeletedBy      uuid.UUID `json:"deletedBy"`
}

func (e DocumentDeleted) EventName() string { return "documents.document.deleted" }
