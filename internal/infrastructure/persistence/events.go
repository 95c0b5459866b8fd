package persistence

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
)

// publishEvents drains the aggregate's pending domain events onto the bus.
// A nil bus disables publishing; events are still cleared so an aggregate
// reused across calls never replays them.
func publishEvents(ctx context.Context, bus shared.EventBus, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	aggregate.ClearDomainEvents()
	if bus == nil || len(events) == 0 {
		return
	}
	_ = bus.Publish(ctx, events...)
}
