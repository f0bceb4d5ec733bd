package broadcast

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Topic exchange keyed by the caller-supplied channel id.
	ExchangeName = "ex.conversations"
	// Single bridge queue bound with a wildcard; the websocket bridge
	// routes per channel in process.
	BridgeQueue = "q.conversation-events"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		return err
	}

	// Non-durable, auto-delete: realtime chunks have no value after the
	// subscribers are gone.
	_, err = ch.QueueDeclare(BridgeQueue, false, true, false, false, nil)
	if err != nil {
		return err
	}

	return ch.QueueBind(BridgeQueue, "#", ExchangeName, false, nil)
}

// Close releases the channel and the connection. Resources are acquired and
// disposed explicitly by the process owner, never held as package globals.
func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}
