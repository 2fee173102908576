package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/totegamma/moodboard/internal/domain"
	"github.com/totegamma/moodboard/internal/infra/database"
)

func TestHubFanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	hub := NewHub()

	a, cancelA := hub.Subscribe(ctx)
	b, cancelB := hub.Subscribe(ctx)
	defer cancelB()
	require.Equal(t, 2, hub.Subscribers())

	event := domain.NewEvent(domain.EventImageSaved, "/images/a.png")
	require.NoError(t, hub.Publish(ctx, event))

	assert.Equal(t, event, <-a)
	assert.Equal(t, event, <-b)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers())
}

func TestHubPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	ch, cancel := hub.Subscribe(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			_ = hub.Publish(ctx, domain.NewEvent(domain.EventTextAppended, ""))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestSignalServicePublishUnreachable(t *testing.T) {
	rdb := database.NewRedis("127.0.0.1:1", "", 0)
	svc := NewSignalService(rdb, "moodboard:test")
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := svc.Publish(ctx, domain.NewEvent(domain.EventTextDeleted, ""))
	assert.Error(t, err)
}
