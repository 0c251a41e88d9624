package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Publisher emits domain events on the NATS bus
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS and returns a publisher
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// PublishLowStock emits a low-stock event for an item
func (p *Publisher) PublishLowStock(ev LowStockEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal low-stock event: %w", err)
	}
	return p.conn.Publish(SubjectLowStock, data)
}

// Close drains and closes the connection
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// LowStockHandler processes one low-stock event
type LowStockHandler func(ctx context.Context, ev LowStockEvent)

// Subscriber listens for low-stock events and hands them to the pipeline
type Subscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewSubscriber connects to NATS and returns a subscriber
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// Start subscribes to the low-stock subject. Each event is handled on its
// own goroutine so a slow pipeline run does not back up the bus.
func (s *Subscriber) Start(ctx context.Context, handler LowStockHandler) error {
	sub, err := s.conn.Subscribe(SubjectLowStock, func(msg *nats.Msg) {
		var ev LowStockEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("Dropping malformed low-stock event: %v", err)
			return
		}
		go handler(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectLowStock, err)
	}
	s.sub = sub
	log.Printf("Subscribed to %s", SubjectLowStock)
	return nil
}

// Stop unsubscribes and closes the connection
func (s *Subscriber) Stop() {
	if s.sub != nil {
		if err := s.sub.Drain(); err != nil {
			log.Printf("Error draining subscription: %v", err)
		}
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
