package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const (
	minRedialWait = time.Second
	maxRedialWait = 30 * time.Second
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpSession is one connection with its publishing channel. closed receives
// (or is closed) when the broker drops either of them.
type amqpSession struct {
	conn    io.Closer
	channel amqpChannel
	closed  []chan *amqp.Error
}

func (s *amqpSession) broken() bool {
	for _, c := range s.closed {
		select {
		case <-c:
			return true
		default:
		}
	}
	return false
}

func (s *amqpSession) close() error {
	_ = s.channel.Close()
	return s.conn.Close()
}

type dialFunc func(url, exchange string) (*amqpSession, error)

// AMQPPublisher publishes events to a durable topic exchange. The routing key
// is the event type so consumers can bind to "difficulty.*" and the like.
//
// A connection dropped by the broker is noticed through NotifyClose and
// re-dialed on the next publish, backing off between failed attempts.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     dialFunc
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	session  *amqpSession
	wait     time.Duration
	nextDial time.Time
	shut     bool
}

// NewAMQPPublisher dials url and declares exchange. A nil logger uses
// slog.Default().
func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	return newAMQPPublisher(url, exchange, dialAMQP, logger)
}

func newAMQPPublisher(url, exchange string, dial dialFunc, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		dial:     dial,
		logger:   logger,
		now:      time.Now,
		session:  s,
		wait:     minRedialWait,
	}, nil
}

func dialAMQP(url, exchange string) (*amqpSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &amqpSession{
		conn:    conn,
		channel: ch,
		closed: []chan *amqp.Error{
			conn.NotifyClose(make(chan *amqp.Error, 1)),
			ch.NotifyClose(make(chan *amqp.Error, 1)),
		},
	}, nil
}

// Publish sends e as a persistent JSON message. A publish that finds the
// connection closed re-dials once and retries.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(e)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.SubmissionID,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shut {
		return fmt.Errorf("publish %s: publisher closed", e.Type)
	}

	for attempt := 0; ; attempt++ {
		s, err := p.ensureSession()
		if err != nil {
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
		err = s.channel.Publish(p.exchange, e.Type, false, false, msg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
		p.drop()
	}
}

// ensureSession returns a live session, re-dialing when the current one was
// closed. Callers hold p.mu.
func (p *AMQPPublisher) ensureSession() (*amqpSession, error) {
	if p.session != nil && p.session.broken() {
		p.logger.Warn("amqp connection lost", "exchange", p.exchange)
		p.drop()
	}
	if p.session != nil {
		return p.session, nil
	}

	now := p.now()
	if now.Before(p.nextDial) {
		return nil, fmt.Errorf("amqp unavailable, next attempt in %s", p.nextDial.Sub(now).Round(time.Millisecond))
	}
	s, err := p.dial(p.url, p.exchange)
	if err != nil {
		p.nextDial = now.Add(p.wait)
		p.wait = min(p.wait*2, maxRedialWait)
		return nil, err
	}
	p.logger.Info("amqp reconnected", "exchange", p.exchange)
	p.session = s
	p.wait = minRedialWait
	p.nextDial = time.Time{}
	return s, nil
}

func (p *AMQPPublisher) drop() {
	if p.session != nil {
		_ = p.session.close()
		p.session = nil
	}
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shut = true
	if p.session == nil {
		return nil
	}
	err := p.session.close()
	p.session = nil
	return err
}
