package ports

import (
	"context"

	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	"github.com/BeadW/vyb-web-sub000/domain/events"
)

// HistoryRepository persists the engine state as opaque records. Save is
// best-effort relative to the in-memory transition that triggered it:
// failures are logged by the caller and never propagated as fatal.
type HistoryRepository interface {
	// Save stores the full engine state
	Save(ctx context.Context, state aggregates.HistoryState) error

	// Load retrieves the last saved state. A nil state with a nil error
	// means nothing has been persisted yet.
	Load(ctx context.Context) (*aggregates.HistoryState, error)
}

// EventPublisher delivers domain events to interested subscribers after
// each mutating operation. Publishing happens in-process; the engine knows
// nothing about any UI framework.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// StateCodec converts the engine state to and from a portable byte form
// for export and import.
type StateCodec interface {
	Encode(state aggregates.HistoryState) ([]byte, error)
	Decode(data []byte) (*aggregates.HistoryState, error)
}
