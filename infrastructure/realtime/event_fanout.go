package realtime

import (
	"context"

	"ytpm/domain/repository"
)

// EventFanout implements repository.IActionEvents by delivering the event to
// connected SSE subscribers and forwarding to an optional downstream
// publisher (Pub/Sub when configured).
type EventFanout struct {
	hub  *Hub
	next repository.IActionEvents
}

func NewEventFanout(hub *Hub, next repository.IActionEvents) *EventFanout {
	return &EventFanout{hub: hub, next: next}
}

func (f *EventFanout) PublishActionFinished(ctx context.Context, event repository.ActionFinishedEvent) error {
	if f.hub != nil {
		f.hub.BroadcastActionFinished(event)
	}
	if f.next != nil {
		return f.next.PublishActionFinished(ctx, event)
	}
	return nil
}
