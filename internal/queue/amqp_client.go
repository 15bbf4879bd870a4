package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPClient publishes messages to a topic exchange with routing key
// "contact.<candidateId>".
type AMQPClient struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       publisher
	exchange string
}

// NewAMQPClient dials url and declares a durable topic exchange.
func NewAMQPClient(url, exchange string) (*AMQPClient, error) {
	if url == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp declare exchange %s: %w", exchange, err)
	}
	return &AMQPClient{conn: conn, ch: ch, exchange: exchange}, nil
}

// Send publishes msg as a persistent JSON message.
func (c *AMQPClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}

	// amqp channels are not safe for concurrent publishers.
	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.ch.Publish(c.exchange, RoutingKey(msg.CandidateID), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.RequestID,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *AMQPClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// RoutingKey is the topic key for a candidate's contact messages.
func RoutingKey(candidateID string) string {
	return "contact." + candidateID
}

var _ Client = (*AMQPClient)(nil)
