// Package service publishes session lifecycle events to RabbitMQ.  Publishing
// is best-effort: errors are logged and returned so callers can ignore them
// without interrupting a login or logout.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/ghani250za/abdelghani-amrani/internal/queue"
)

// Publisher sends session events somewhere.
type Publisher interface {
	PublishSession(ctx context.Context, ev q.SessionEvent) error
}

// ErrBacklog is returned when the async buffer is full and the event was dropped.
var ErrBacklog = errors.New("event backlog full")

// Async hands events to a background goroutine so a slow or unreachable
// broker never delays the caller.  Close flushes what is queued.
type Async struct {
	next    Publisher
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	ch     chan q.SessionEvent
	done   chan struct{}
}

func NewAsync(next Publisher, buffer int, log *zap.Logger) *Async {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	a := &Async{
		next:    next,
		log:     log,
		timeout: 10 * time.Second,
		ch:      make(chan q.SessionEvent, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// PublishSession queues ev without blocking.
func (a *Async) PublishSession(_ context.Context, ev q.SessionEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrBacklog
	}
	select {
	case a.ch <- ev:
		return nil
	default:
		a.log.Warn("session event dropped", zap.String("event", string(ev.Type)))
		return ErrBacklog
	}
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.ch {
		// the request that produced ev may already be finished
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.PublishSession(ctx, ev); err != nil {
			a.log.Debug("session event not delivered", zap.String("event", string(ev.Type)), zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to
// end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop drops every event.  Used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) PublishSession(context.Context, q.SessionEvent) error { return nil }

// AMQPPublisher dials the broker per event; session events are rare enough
// that a long-lived channel is not worth its reconnect handling.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
	Log         *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{URL: url, DialTimeout: 3 * time.Second, Log: log}
}

// PublishSession marks messages persistent and routes them through the
// default exchange to q.SessionQueue.
func (p *AMQPPublisher) PublishSession(ctx context.Context, ev q.SessionEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.SessionQueue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.SessionQueue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("event", string(ev.Type)))
		return err
	}
	return nil
}

// Recorder keeps published events in memory so tests can assert on them.
type Recorder struct {
	mu     sync.Mutex
	events []q.SessionEvent
}

func (r *Recorder) PublishSession(_ context.Context, ev q.SessionEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []q.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]q.SessionEvent(nil), r.events...)
}
