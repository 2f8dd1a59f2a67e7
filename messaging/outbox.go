package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"cvgateway/metrics"
	"cvgateway/store"
)

// OutboxStore is the slice of store.DB the drainer uses.
type OutboxStore interface {
	EnqueueOutbox(topic string, payload []byte, msgType string) error
	ListPendingOutbox(limit int) ([]*store.OutboxMessage, error)
	AckOutbox(id int64) error
	IncrementOutboxRetries(id int64) error
}

// Publisher sends one message. *Client implements it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

const drainBatch = 50

// Enqueue stages an envelope for publication on topic.
func Enqueue(db OutboxStore, topic string, env *Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}
	return db.EnqueueOutbox(topic, data, env.MsgType)
}

// OutboxDrainer periodically sends pending outbox messages.
type OutboxDrainer struct {
	db       OutboxStore
	pub      Publisher
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewOutboxDrainer(db OutboxStore, pub Publisher, interval time.Duration) *OutboxDrainer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxDrainer{
		db:       db,
		pub:      pub,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (d *OutboxDrainer) Start() {
	go d.run()
}

func (d *OutboxDrainer) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
}

func (d *OutboxDrainer) run() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.Drain(context.Background())
		}
	}
}

// Drain publishes one batch of pending messages and returns how many were sent.
func (d *OutboxDrainer) Drain(ctx context.Context) int {
	msgs, err := d.db.ListPendingOutbox(drainBatch)
	if err != nil {
		log.Printf("outbox: list pending: %v", err)
		return 0
	}
	sent := 0
	for _, msg := range msgs {
		if err := d.pub.Publish(ctx, msg.Topic, msg.MsgType, msg.Payload); err != nil {
			log.Printf("outbox: publish %d to %s failed: %v", msg.ID, msg.Topic, err)
			if err := d.db.IncrementOutboxRetries(msg.ID); err != nil {
				log.Printf("outbox: increment retries %d: %v", msg.ID, err)
			}
			continue
		}
		if err := d.db.AckOutbox(msg.ID); err != nil {
			log.Printf("outbox: ack %d: %v", msg.ID, err)
			continue
		}
		metrics.OutboxPublishedTotal.Inc()
		sent++
	}
	return sent
}
