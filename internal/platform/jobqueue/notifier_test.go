package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_Notify(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		wantErr bool
	}{
		{
			name: "publishes to the channel topic",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectPublish("jobs:emails", "1").SetVal(1)
			},
		},
		{
			name: "no subscribers is not an error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectPublish("jobs:emails", "1").SetVal(0)
			},
		},
		{
			name: "redis failure is returned",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectPublish("jobs:emails", "1").SetErr(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			err := NewRedisNotifier(client).Notify(context.Background(), "emails")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisNotifier_Subscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	n := NewRedisNotifier(client)
	wake := n.Subscribe(ctx, "emails")

	// wait until the subscription is registered before publishing
	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("jobs:*")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, n.Notify(ctx, "emails"))

	select {
	case <-wake:
	case <-time.After(2 * time.Second):
		t.Fatal("no wake-up received")
	}

	cancel()
	select {
	case _, ok := <-wake:
		assert.False(t, ok, "wake channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("wake channel was not closed")
	}
}
