package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated         EventType = "user_created"
	EventUserUpdated         EventType = "user_updated"
	EventUserDeleted         EventType = "user_deleted"
	EventProductCreated      EventType = "product_created"
	EventProductUpdated      EventType = "product_updated"
	EventProductDeleted      EventType = "product_deleted"
	EventProductPriceChanged EventType = "product_price_changed"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventProductPriceChanged,
}

// Resource names the record family an event refers to.
type Resource string

const (
	ResourceUser    Resource = "user"
	ResourceProduct Resource = "product"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Resource   Resource    `json:"resource"`
	ResourceID string      `json:"resource_id"`
	ActorID    *string     `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserPayload snapshots a user after a change.
type UserPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProductPayload snapshots a product after a change.
type ProductPayload struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Stock     int64   `json:"stock"`
	Available bool    `json:"available"`
}

// PriceChangedPayload payload.
type PriceChangedPayload struct {
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
}

// DeletedPayload payload.
type DeletedPayload struct {
	Message string `json:"message"`
}
