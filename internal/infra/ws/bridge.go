package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/smarttech/leadflow/internal/infra/broadcast"
)

var activeSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "ws_active_subscribers",
		Help: "Number of connected websocket subscribers",
	},
)

// Bridge forwards broadcast envelopes from the bridge queue to the websocket
// clients subscribed to each conversation channel. It is the delivery half of
// the pub/sub pair: the Publisher writes to the exchange, the Bridge consumes
// the wildcard-bound queue and routes by routing key in process.
type Bridge struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool // channel id -> connections
}

func NewBridge() *Bridge {
	return &Bridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin policy is handled by the CORS layer; the
			// channel id is an unguessable caller-generated token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[string]map[*websocket.Conn]bool),
	}
}

// Start registers the queue consumer. Events are auto-acked: a chunk that
// cannot be delivered to a browser is not worth redelivering.
func (b *Bridge) Start(ch *amqp.Channel) error {
	msgs, err := ch.Consume(
		broadcast.BridgeQueue,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			b.fanOut(d.RoutingKey, d.Body)
		}
		log.Printf("[WS] bridge consumer closed")
	}()

	return nil
}

func (b *Bridge) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelId")
	if channelID == "" {
		http.Error(w, "channelId is required", http.StatusBadRequest)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed for channel %q: %v", channelID, err)
		return
	}

	b.add(channelID, conn)

	// Subscribers never send data; the read loop only notices the close.
	go func() {
		defer func() {
			b.remove(channelID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Bridge) fanOut(channelID string, body []byte) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.subs[channelID]))
	for conn := range b.subs[channelID] {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Printf("[WS] dropping subscriber on channel %q: %v", channelID, err)
			b.remove(channelID, conn)
			conn.Close()
		}
	}
}

func (b *Bridge) add(channelID string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[channelID] == nil {
		b.subs[channelID] = make(map[*websocket.Conn]bool)
	}
	b.subs[channelID][conn] = true
	activeSubscribers.Inc()
}

func (b *Bridge) remove(channelID string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conns, ok := b.subs[channelID]; ok {
		if conns[conn] {
			delete(conns, conn)
			activeSubscribers.Dec()
		}
		if len(conns) == 0 {
			delete(b.subs, channelID)
		}
	}
}
