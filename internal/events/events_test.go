package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	p := NewLogPublisher(logger)

	err := p.Publish(context.Background(), Event{
		Type:         TypeDifficultyChanged,
		LearnerID:    "ada",
		SubmissionID: "sub-1",
		OccurredAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:      DifficultyPayload{From: "beginner", To: "intermediate", Direction: "up"},
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event published", line["msg"])
	assert.Equal(t, TypeDifficultyChanged, line["type"])
	assert.Equal(t, "ada", line["learner_id"])

	var body Event
	require.NoError(t, json.Unmarshal([]byte(line["body"].(string)), &body))
	payload := body.Payload.(map[string]any)
	assert.Equal(t, "intermediate", payload["to"])
}

func TestEncode_RejectsUnencodablePayload(t *testing.T) {
	_, err := encode(Event{Type: TypePerformanceUpdated, Payload: make(chan int)})
	assert.Error(t, err)
}

// TestAMQPPublisher_Live runs against a real broker when
// BRIGHTPATH_TEST_AMQP_URL is set.
func TestAMQPPublisher_Live(t *testing.T) {
	url := os.Getenv("BRIGHTPATH_TEST_AMQP_URL")
	if url == "" {
		t.Skip("BRIGHTPATH_TEST_AMQP_URL not set")
	}

	const exchange = "brightpath.test"
	p, err := NewAMQPPublisher(url, exchange, nil)
	require.NoError(t, err)
	defer p.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "difficulty.*", exchange, false, nil))
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), Event{
		Type:      TypeDifficultyChanged,
		LearnerID: "ada",
		Payload:   DifficultyPayload{To: "advanced"},
	}))

	select {
	case m := <-msgs:
		assert.Equal(t, TypeDifficultyChanged, m.RoutingKey)
		assert.Equal(t, "application/json", m.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

type fakeChannel struct {
	publishErr error
	published  []amqp.Publishing
	closed     bool
}

func (c *fakeChannel) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fakeBroker hands out sessions whose close notifications the test controls.
type fakeBroker struct {
	dialErr  error
	dials    int
	channels []*fakeChannel
	notify   []chan *amqp.Error
}

func (b *fakeBroker) dial(string, string) (*amqpSession, error) {
	b.dials++
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	ch := &fakeChannel{}
	notify := make(chan *amqp.Error, 1)
	b.channels = append(b.channels, ch)
	b.notify = append(b.notify, notify)
	return &amqpSession{conn: nopCloser{}, channel: ch, closed: []chan *amqp.Error{notify}}, nil
}

func (b *fakeBroker) drop(i int) {
	b.notify[i] <- amqp.ErrClosed
}

func newFakePublisher(t *testing.T, b *fakeBroker) *AMQPPublisher {
	t.Helper()
	p, err := newAMQPPublisher("amqp://fake", "brightpath.events", b.dial, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return p
}

func TestAMQPPublisher_RedialsAfterConnectionClosed(t *testing.T) {
	b := &fakeBroker{}
	p := newFakePublisher(t, b)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, Event{Type: TypePerformanceUpdated, LearnerID: "ada"}))
	b.drop(0)
	require.NoError(t, p.Publish(ctx, Event{Type: TypePerformanceUpdated, LearnerID: "ada"}))

	assert.Equal(t, 2, b.dials)
	assert.Len(t, b.channels[0].published, 1)
	assert.True(t, b.channels[0].closed)
	assert.Len(t, b.channels[1].published, 1)
}

func TestAMQPPublisher_RetriesOnceWhenChannelClosed(t *testing.T) {
	b := &fakeBroker{}
	p := newFakePublisher(t, b)
	b.channels[0].publishErr = amqp.ErrClosed

	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeDifficultyChanged}))
	assert.Equal(t, 2, b.dials)
	assert.Len(t, b.channels[1].published, 1)
}

func TestAMQPPublisher_BacksOffWhileBrokerDown(t *testing.T) {
	b := &fakeBroker{}
	p := newFakePublisher(t, b)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	b.drop(0)
	b.dialErr = errors.New("connection refused")
	assert.Error(t, p.Publish(ctx, Event{Type: TypePerformanceUpdated}))
	assert.Equal(t, 2, b.dials)

	// Still inside the backoff window: no dial.
	assert.Error(t, p.Publish(ctx, Event{Type: TypePerformanceUpdated}))
	assert.Equal(t, 2, b.dials)

	now = now.Add(minRedialWait)
	b.dialErr = nil
	require.NoError(t, p.Publish(ctx, Event{Type: TypePerformanceUpdated}))
	assert.Equal(t, 3, b.dials)
	assert.Len(t, b.channels[1].published, 1)
}

func TestAMQPPublisher_PublishAfterClose(t *testing.T) {
	b := &fakeBroker{}
	p := newFakePublisher(t, b)
	require.NoError(t, p.Close())

	assert.Error(t, p.Publish(context.Background(), Event{Type: TypePerformanceUpdated}))
	assert.Equal(t, 1, b.dials)
}
