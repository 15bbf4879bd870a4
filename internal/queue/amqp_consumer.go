package queue

import (
	"fmt"

	"github.com/streadway/amqp"
)

// BindingKey matches every candidate's contact messages.
const BindingKey = "contact.#"

// AMQPConsumer reads contact messages from a durable queue bound to the
// contact exchange.
type AMQPConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPConsumer dials url, declares exchange and queue, binds them with
// BindingKey and limits unacked deliveries to prefetch.
func NewAMQPConsumer(url, exchange, queue string, prefetch int) (*AMQPConsumer, error) {
	if url == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	if queue == "" {
		return nil, fmt.Errorf("queue name is required")
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
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, BindingKey, exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp bind %s: %w", queue, err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("amqp qos: %w", err)
		}
	}
	return &AMQPConsumer{conn: conn, ch: ch, queue: queue}, nil
}

// Deliveries starts consuming with manual acks. The channel closes when
// the connection does.
func (c *AMQPConsumer) Deliveries(consumerTag string) (<-chan amqp.Delivery, error) {
	deliveries, err := c.ch.Consume(c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp consume %s: %w", c.queue, err)
	}
	return deliveries, nil
}

// Close closes the underlying connection.
func (c *AMQPConsumer) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
