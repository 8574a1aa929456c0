package sales

import (
	"context"
	"time"
)

// Event types published after a successful write.
const (
	EventSaleCreated = "sale.created"
	EventSaleUpdated = "sale.updated"
	EventSaleDeleted = "sale.deleted"
)

// SaleEvent describes a change to a sale.
type SaleEvent struct {
	Type       string       `json:"type"`
	Sale       SaleResponse `json:"sale"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// EventPublisher delivers sale events to downstream consumers.
type EventPublisher interface {
	PublishSaleEvent(ctx context.Context, event SaleEvent) error
}
