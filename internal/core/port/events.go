package port

import (
	"context"
	"csv-drop/internal/core/domain"
)

// CompensationQueue accepts cleanup steps that failed in the foreground
type CompensationQueue interface {
	Enqueue(ctx context.Context, task domain.CompensationTask) error
}

// EventConsumer is an interface to define a compensation task consumer (nats, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
