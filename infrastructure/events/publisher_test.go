package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/domain/core/valueobjects"
	domainevents "github.com/BeadW/vyb-web-sub000/domain/events"
)

func TestBus_Publish_RoutesByType(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var captured []string
	bus.Subscribe("history.undone", func(ctx context.Context, event domainevents.DomainEvent) {
		captured = append(captured, event.GetEventType())
	})

	undone := domainevents.NewHistoryUndone(valueobjects.NewNodeID(), valueobjects.NewNodeID(), time.Now())
	redone := domainevents.NewHistoryRedone(valueobjects.NewNodeID(), valueobjects.NewNodeID(), time.Now())

	require.NoError(t, bus.Publish(context.Background(), undone, redone))

	assert.Equal(t, []string{"history.undone"}, captured)
}

func TestBus_Publish_WildcardReceivesAll(t *testing.T) {
	bus := NewBus(zap.NewNop())

	count := 0
	bus.Subscribe("*", func(ctx context.Context, event domainevents.DomainEvent) {
		count++
	})

	navigated := domainevents.NewHistoryNavigated(valueobjects.NewNodeID(), true, time.Now())
	created := domainevents.NewBranchCreated(valueobjects.NewBranchID(), "side", valueobjects.NewNodeID(), time.Now())

	require.NoError(t, bus.Publish(context.Background(), navigated, created))
	assert.Equal(t, 2, count)
}

func TestBus_Publish_NoSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	evicted := domainevents.NewNodesEvicted([]valueobjects.NodeID{valueobjects.NewNodeID()}, time.Now())
	assert.NoError(t, bus.Publish(context.Background(), evicted))
}
