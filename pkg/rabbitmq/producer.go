/**
 * @description
 * This package provides a producer for publishing audit events to RabbitMQ.
 * Every attestation issued and every KYC submission is published so downstream
 * compliance tooling can replay oracle activity. Publishing is best-effort:
 * the service never blocks or fails a request on broker trouble.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 * - github.com/google/uuid: Event identifiers.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// AttestationIssuedEvent is published whenever the oracle signs an attestation.
type AttestationIssuedEvent struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"` // "issuance" or "payment"
	Subject   string    `json:"subject"`
	Nonce     string    `json:"nonce"`
	Timestamp time.Time `json:"timestamp"`
}

// KYCSubmittedEvent is published whenever an identity submission is recorded.
type KYCSubmittedEvent struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// Publisher is the interface implemented by types that can publish audit events.
type Publisher interface {
	PublishAttestationIssued(ctx context.Context, event AttestationIssuedEvent) error
	PublishKYCSubmitted(ctx context.Context, event KYCSubmittedEvent) error
	Close()
}

// EventProducerFallback is a minimal no-op publisher used when RabbitMQ is unavailable at startup.
type EventProducerFallback struct{}

func (p *EventProducerFallback) PublishAttestationIssued(ctx context.Context, event AttestationIssuedEvent) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"attestation event publish skipped\" kind=%s", event.Kind)
	return nil
}

func (p *EventProducerFallback) PublishKYCSubmitted(ctx context.Context, event KYCSubmittedEvent) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"kyc event publish skipped\" address=%s", event.Address)
	return nil
}

func (p *EventProducerFallback) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer creates and returns a new EventProducer bound to one exchange.
func NewEventProducer(amqpURL, exchange string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Use a bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch, exchange: exchange}, nil
}

// publish sends a message to the producer's exchange with a routing key.
func (p *EventProducer) publish(ctx context.Context, routingKey string, body interface{}) error {
	// Ensure the exchange exists (durable topic)
	if err := p.channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		log.Printf("level=warn component=rabbitmq_producer msg=\"exchange declare failed; reopening channel\" exchange=%s err=%v", p.exchange, err)
		// Attempt simple channel reopen once
		if p.conn == nil {
			return err
		}
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		if err2 := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err2 != nil {
			return err2
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Printf("level=error component=rabbitmq_producer msg=\"json marshal failed\" exchange=%s routing_key=%s err=%v", p.exchange, routingKey, err)
		return err
	}

	publishing := amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        jsonBody,
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, publishing)
	if err != nil {
		log.Printf("level=warn component=rabbitmq_producer msg=\"publish failed; reopening channel\" exchange=%s routing_key=%s err=%v", p.exchange, routingKey, err)
		// One-shot retry: reopen channel and try again
		if p.conn != nil {
			if ch, chErr := p.conn.Channel(); chErr == nil {
				p.channel = ch
				if exErr := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); exErr == nil {
					if err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, publishing); err == nil {
						return nil
					}
				}
			}
		}
		return err
	}
	return nil
}

// PublishAttestationIssued publishes an attestation audit event.
func (p *EventProducer) PublishAttestationIssued(ctx context.Context, event AttestationIssuedEvent) error {
	return p.publish(ctx, "oracle.attestation."+event.Kind, event)
}

// PublishKYCSubmitted publishes a KYC submission audit event.
func (p *EventProducer) PublishKYCSubmitted(ctx context.Context, event KYCSubmittedEvent) error {
	return p.publish(ctx, "kyc.submitted", event)
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
