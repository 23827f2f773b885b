// Package processor drives the relay pipeline: decode the domain event,
// resolve who may see it, gate it for freshness, project the outbound
// payload, and publish the result toward the websocket tier.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/keywinf/relay-stack/common/logging"
	"github.com/keywinf/relay-stack/common/messaging"
	"github.com/keywinf/relay-stack/relay/internal/event"
	"github.com/keywinf/relay-stack/relay/internal/gate"
	"github.com/keywinf/relay-stack/relay/internal/metrics"
	"github.com/keywinf/relay-stack/relay/internal/projection"
	"github.com/keywinf/relay-stack/relay/internal/recipient"
)

// Outcome classifies what happened to one inbound message.
type Outcome string

const (
	OutcomeRelayed    Outcome = "relayed"    // published to the delivery subject
	OutcomeSuppressed Outcome = "suppressed" // dropped by the admission gate
	OutcomeSkipped    Outcome = "skipped"    // well-formed but unrouted event type
	OutcomeMalformed  Outcome = "malformed"  // unparseable, dead-lettered
	OutcomeFailed     Outcome = "failed"     // transient failure, redelivered
)

// OutboundEnvelope is the message published toward the websocket tier. The
// recipient field encodes the authorization decision: null means broadcast,
// an empty array never leaves the relay, an array lists user ids.
type OutboundEnvelope struct {
	Type       event.Type         `json:"type"`
	ProducedAt time.Time          `json:"produced_at"`
	Metadata   event.Metadata     `json:"metadata"`
	Recipient  recipient.Set      `json:"recipient"`
	Payload    projection.Payload `json:"payload"`
}

// Publisher is the outbound side of the relay.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Processor turns raw domain-event messages into websocket delivery
// envelopes. Safe for concurrent use.
type Processor struct {
	resolver  *recipient.Resolver
	projector *projection.Projector
	gate      *gate.Gate
	publisher Publisher
	logger    *logging.Logger
	timeout   time.Duration
}

// New creates a processor. Each message gets at most timeout of wall time;
// zero means 10 seconds.
func New(resolver *recipient.Resolver, projector *projection.Projector, g *gate.Gate, publisher Publisher, logger *logging.Logger, timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Processor{
		resolver:  resolver,
		projector: projector,
		gate:      g,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

// Handle adapts Process to the broker handler contract: malformed messages
// return a permanent error so the broker dead-letters them, transient
// failures return a plain error to trigger redelivery, everything else acks.
func (p *Processor) Handle(ctx context.Context, msg *messaging.Message) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outcome, err := p.Process(ctx, msg.Data)
	switch outcome {
	case OutcomeMalformed:
		return messaging.Permanent(err)
	case OutcomeFailed:
		return err
	default:
		return nil
	}
}

// Process runs one message through the pipeline and reports what happened.
// The returned error is non-nil only for OutcomeMalformed and OutcomeFailed.
func (p *Processor) Process(ctx context.Context, data []byte) (Outcome, error) {
	start := time.Now()

	env, err := event.Parse(data)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("unknown", string(OutcomeMalformed)).Inc()
		p.logger.ErrorContext(ctx, "dropping malformed envelope", logging.Error(err))
		return OutcomeMalformed, err
	}

	ctx = logging.WithEventID(ctx, env.Metadata.EventID)
	if env.Metadata.CorrelationID != "" {
		ctx = logging.WithCorrelationID(ctx, env.Metadata.CorrelationID)
	}

	outcome, err := p.process(ctx, env)

	metrics.EventsTotal.WithLabelValues(string(env.Type), string(outcome)).Inc()
	metrics.ProcessingDuration.WithLabelValues(string(env.Type)).Observe(time.Since(start).Seconds())
	return outcome, err
}

func (p *Processor) process(ctx context.Context, env *event.Envelope) (Outcome, error) {
	payload, err := event.Decode(env)
	if errors.Is(err, event.ErrUnknownType) {
		p.logger.DebugContext(ctx, "skipping unrouted event type",
			logging.EventType(string(env.Type)))
		return OutcomeSkipped, nil
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "dropping event with malformed payload",
			logging.EventType(string(env.Type)), logging.Error(err))
		return OutcomeMalformed, err
	}

	recipients, err := p.resolver.Resolve(ctx, env, payload)
	if err != nil {
		metrics.ReadModelErrors.Inc()
		p.logger.WarnContext(ctx, "recipient resolution failed, will retry",
			logging.EventType(string(env.Type)), logging.Error(err))
		return OutcomeFailed, fmt.Errorf("resolve recipients: %w", err)
	}

	verdict := p.gate.Evaluate(env, recipients)
	metrics.EventAge.Observe(verdict.Age.Seconds())
	if !verdict.Admit {
		metrics.SuppressedTotal.WithLabelValues(verdict.Reason).Inc()
		p.logger.InfoContext(ctx, "suppressing event",
			logging.EventType(string(env.Type)),
			logging.Outcome(verdict.Reason),
			logging.Duration(verdict.Age.Milliseconds()))
		return OutcomeSuppressed, nil
	}

	projected, err := p.projector.Project(ctx, env, payload)
	if err != nil {
		metrics.ReadModelErrors.Inc()
		p.logger.WarnContext(ctx, "projection failed, will retry",
			logging.EventType(string(env.Type)), logging.Error(err))
		return OutcomeFailed, fmt.Errorf("project payload: %w", err)
	}

	out := OutboundEnvelope{
		Type:       env.Type,
		ProducedAt: env.ProducedAt,
		Metadata:   env.Metadata,
		Recipient:  recipients,
		Payload:    projected,
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Payloads are JSON round-trips; this only fires on a bug.
		p.logger.ErrorContext(ctx, "dropping unmarshalable outbound envelope",
			logging.EventType(string(env.Type)), logging.Error(err))
		return OutcomeMalformed, err
	}

	if err := p.publisher.Publish(ctx, messaging.SubjectWebsocketDelivery, data); err != nil {
		metrics.PublishErrors.Inc()
		p.logger.WarnContext(ctx, "outbound publish failed, will retry",
			logging.EventType(string(env.Type)), logging.Error(err))
		return OutcomeFailed, fmt.Errorf("publish envelope: %w", err)
	}

	p.logger.InfoContext(ctx, "relayed event",
		logging.EventType(string(env.Type)),
		logging.AggregateID(env.Metadata.AggregateID),
		logging.Outcome(string(OutcomeRelayed)))
	return OutcomeRelayed, nil
}
