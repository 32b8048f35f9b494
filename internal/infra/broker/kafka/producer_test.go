package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestProducerPublishSendsHeadersAndKey(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, "inquiry.events.v1", msg.Topic)
		key, _ := msg.Key.Encode()
		require.Equal(t, "inq-1", string(key))
		require.Len(t, msg.Headers, 1)
		require.Equal(t, "content-type", string(msg.Headers[0].Key))
		return nil
	})
	p := newProducer(mock)
	defer p.Close()

	err := p.Publish(context.Background(), "inquiry.events.v1", "inq-1", []byte(`{}`), map[string]string{"content-type": "application/cloudevents+json"})
	require.NoError(t, err)
}

func TestProducerPublishHonoursCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := newProducer(mock)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
}

func TestLogProducerNeverFails(t *testing.T) {
	require.NoError(t, LogProducer{}.Publish(context.Background(), "t", "k", []byte("x"), nil))
}
