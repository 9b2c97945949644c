package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytpm/domain/model"
	"ytpm/domain/repository"
)

func TestBroadcastActionFinished_DeliversToOwner(t *testing.T) {
	hub := NewActionHub()
	ch := make(chan repository.ActionFinishedEvent, 1)
	hub.addSubscriber("user-1", ch)
	defer hub.removeSubscriber("user-1", ch)

	evt := repository.ActionFinishedEvent{
		ActionID: "act-1",
		UserID:   "user-1",
		Type:     model.ActionTypeAdd,
		Status:   model.ActionStatusSuccess,
		Counts:   model.ActionCounts{Total: 2, Success: 2},
	}
	hub.BroadcastActionFinished(evt)

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, "act-1", got.ActionID)
	assert.Equal(t, model.ActionStatusSuccess, got.Status)
}

func TestBroadcastActionFinished_SkipsOtherUsers(t *testing.T) {
	hub := NewActionHub()
	ch := make(chan repository.ActionFinishedEvent, 1)
	hub.addSubscriber("user-2", ch)
	defer hub.removeSubscriber("user-2", ch)

	hub.BroadcastActionFinished(repository.ActionFinishedEvent{ActionID: "act-1", UserID: "user-1"})

	assert.Len(t, ch, 0)
}

func TestEventFanout_NilPartsAreSafe(t *testing.T) {
	fanout := NewEventFanout(nil, nil)
	err := fanout.PublishActionFinished(context.Background(), repository.ActionFinishedEvent{ActionID: "act-1"})
	assert.NoError(t, err)
}
