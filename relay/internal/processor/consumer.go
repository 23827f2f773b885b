package processor

import (
	"context"
	"fmt"

	"github.com/keywinf/relay-stack/common/logging"
	"github.com/keywinf/relay-stack/common/messaging"
	"github.com/keywinf/relay-stack/common/messaging/nats"
)

// ConsumerName is the durable consumer the relay workers share. All relay
// replicas attach to the same consumer, so the broker load-balances events
// across them.
const ConsumerName = "relay-websocket"

// Consumer binds a Processor to the domain-events stream.
type Consumer struct {
	client    *nats.JetStreamClient
	processor *Processor
	logger    *logging.Logger
	stop      func()
}

// NewConsumer creates a consumer over the given JetStream client.
func NewConsumer(client *nats.JetStreamClient, processor *Processor, logger *logging.Logger) *Consumer {
	return &Consumer{
		client:    client,
		processor: processor,
		logger:    logger,
	}
}

// EnsureTopology declares the streams and the durable consumer the relay
// needs. Idempotent; every replica calls it on boot.
func (c *Consumer) EnsureTopology(ctx context.Context) error {
	if _, err := c.client.CreateOrUpdateStream(ctx, nats.DomainEventsStream); err != nil {
		return fmt.Errorf("ensure domain events stream: %w", err)
	}
	if _, err := c.client.CreateOrUpdateStream(ctx, nats.WebsocketDeliveryStream); err != nil {
		return fmt.Errorf("ensure websocket delivery stream: %w", err)
	}

	cfg := nats.DefaultConsumerConfig(ConsumerName, messaging.SubjectEventsDomainAll)
	if _, err := c.client.CreateOrUpdateConsumer(ctx, nats.DomainEventsStream.Name, cfg); err != nil {
		return fmt.Errorf("ensure consumer: %w", err)
	}
	return nil
}

// Start begins consuming domain events. Blocks only for the subscription
// setup; processing happens on broker callbacks until Stop.
func (c *Consumer) Start(ctx context.Context) error {
	stop, err := c.client.ConsumeMessages(ctx, nats.DomainEventsStream.Name, ConsumerName, c.processor.Handle)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.stop = stop
	c.logger.InfoContext(ctx, "consuming domain events",
		logging.Subject(messaging.SubjectEventsDomainAll))
	return nil
}

// Stop halts consumption. In-flight handlers are cancelled through the
// consume context.
func (c *Consumer) Stop() {
	if c.stop != nil {
		c.stop()
	}
}

// JetStreamPublisher adapts the JetStream client to the processor's
// Publisher, so outbound envelopes get a broker acknowledgment before the
// inbound message is acked.
type JetStreamPublisher struct {
	Client *nats.JetStreamClient
}

func (p JetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.Client.PublishSync(ctx, subject, data)
	return err
}
