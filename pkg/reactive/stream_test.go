package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesCurrentValueFirst(t *testing.T) {
	s := NewStream(42)
	ch, cancel := s.Subscribe(context.Background())
	defer cancel()

	select {
	case v := <-ch:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial value")
	}
}

func TestPublishBroadcastsToAllSubscribers(t *testing.T) {
	s := NewStream(0)
	ch1, cancel1 := s.Subscribe(context.Background())
	ch2, cancel2 := s.Subscribe(context.Background())
	defer cancel1()
	defer cancel2()

	<-ch1
	<-ch2

	s.Publish(7)
	assert.Equal(t, 7, <-ch1)
	assert.Equal(t, 7, <-ch2)
	assert.Equal(t, 7, s.Current())
}

func TestPublishCoalescesForSlowSubscriber(t *testing.T) {
	s := NewStream(0)
	ch, cancel := s.Subscribe(context.Background())
	defer cancel()
	<-ch // drain initial value, subscriber now behind

	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	// Only the latest published value should be observed; the buffer
	// depth is one so earlier values are dropped rather than queued.
	require.Eventually(t, func() bool {
		select {
		case v := <-ch:
			return v == 3
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestCancelStopsDelivery(t *testing.T) {
	s := NewStream(0)
	ch, cancel := s.Subscribe(context.Background())
	<-ch
	cancel()

	s.Publish(99)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestContextCancellationDetachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(0)
	ch, _ := s.Subscribe(ctx)
	<-ch
	cancel()

	require.Eventually(t, func() bool {
		return s.SubscriberCount() == 0
	}, time.Second, time.Millisecond)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestCloseDetachesAllSubscribers(t *testing.T) {
	s := NewStream(0)
	ch1, _ := s.Subscribe(context.Background())
	ch2, _ := s.Subscribe(context.Background())
	<-ch1
	<-ch2

	s.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	assert.False(t, ok1)
	assert.False(t, ok2)

	// Publish after close must not panic.
	s.Publish(5)
}
