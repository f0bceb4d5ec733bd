package broadcast

import (
	"context"
	"encoding/json"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

var eventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broadcast_events_published_total",
		Help: "Total number of events published to conversation channels",
	},
	[]string{"event"},
)

// Publisher fans turn events out to a conversation channel. Publish is fire
// and forget: the lead document is the source of truth, so a lost broadcast
// is logged here and never surfaces into the turn pipeline.
type Publisher struct {
	Ch *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{Ch: ch}
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (p *Publisher) Publish(ctx context.Context, channel, event string, data any) {
	body, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("[BROADCAST] failed to encode %s payload: %v", event, err)
		return
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		channel, // routing key = channel id
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			// Transient on purpose: chunks are worthless after the turn.
			DeliveryMode: amqp.Transient,
		},
	)
	if err != nil {
		log.Printf("[BROADCAST] failed to publish %s to channel %q: %v", event, channel, err)
		return
	}

	eventsPublished.WithLabelValues(event).Inc()
}
