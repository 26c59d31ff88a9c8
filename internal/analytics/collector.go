package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/kafka"
)

// Publisher forwards events to an external sink. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers events, records them in the in-process Aggregator and
// forwards them to the Publisher when one is configured. Track never blocks
// the request path; events are dropped when the buffer is full.
type Collector struct {
	publisher  Publisher
	aggregator *Aggregator
	eventCh    chan any
	logger     *slog.Logger
	done       chan struct{}
	mu         sync.RWMutex
	closed     bool
}

// NewCollector returns a Collector. publisher may be nil.
func NewCollector(aggregator *Aggregator, publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher:  publisher,
		aggregator: aggregator,
		eventCh:    make(chan any, bufferSize),
		logger:     slog.Default().With("component", "analytics-collector"),
		done:       make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.handle(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"publishing", c.publisher != nil,
	)
}

// Track queues event. Events tracked after Close are dropped.
func (c *Collector) Track(event any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for buffered ones to be handled.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.eventCh)
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) handle(ctx context.Context, event any) {
	c.aggregator.Record(event)
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, kafka.Event{Key: eventKey(event), Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	var pending []kafka.Event
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.flush(pending)
				return
			}
			c.aggregator.Record(event)
			pending = append(pending, kafka.Event{Key: eventKey(event), Value: event})
		default:
			c.flush(pending)
			return
		}
	}
}

func (c *Collector) flush(events []kafka.Event) {
	if c.publisher == nil || len(events) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(context.Background(), events); err != nil {
		c.logger.Error("failed to publish remaining events", "count", len(events), "error", err)
	}
}

func eventKey(event any) string {
	switch e := event.(type) {
	case QueryEvent:
		return string(e.Type)
	case LoadEvent:
		return e.DocumentID
	default:
		return "analytics"
	}
}
