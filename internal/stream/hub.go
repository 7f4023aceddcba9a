// Package stream pushes dashboard activity events to connected websockets.
// With Redis configured, events fan out to every API instance.
package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TopicAll receives every event.
const TopicAll = "all"

const channelPrefix = "dashboard:"

type Event struct {
	Topic string    `json:"topic"`
	Type  string    `json:"type"`
	ID    string    `json:"id,omitempty"`
	Actor string    `json:"actor,omitempty"`
	At    time.Time `json:"at"`
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

type Hub struct {
	redis   *redis.Client
	log     *zap.Logger
	origin  string
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	pubsub  *redis.PubSub
}

type Client struct {
	Topic string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client, log *zap.Logger) *Hub {
	h := &Hub{
		redis:   redisClient,
		log:     log,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(context.Background(), channelPrefix+"*")
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(topic string) *Client {
	if topic == "" {
		topic = TopicAll
	}
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topicClients, ok := h.clients[client.Topic]; ok {
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.clients, client.Topic)
		}
	}
	close(client.Send)
}

// Publish delivers ev to local subscribers of its topic and of TopicAll, then
// forwards it to other instances through Redis.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.deliver(ev.Topic, payload)

	if h.redis != nil {
		msg, _ := json.Marshal(envelope{Origin: h.origin, Event: ev})
		if err := h.redis.Publish(ctx, redisChannel(ev.Topic), msg).Err(); err != nil {
			h.log.Warn("redis publish failed", zap.String("topic", ev.Topic), zap.Error(err))
		}
	}
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(clients map[*Client]struct{}) {
		for client := range clients {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
	send(h.clients[topic])
	if topic != TopicAll {
		send(h.clients[TopicAll])
	}
}

func (h *Hub) subscribeRedis() {
	for msg := range h.pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.log.Warn("dropping malformed activity message", zap.String("channel", msg.Channel))
			continue
		}
		if env.Origin == h.origin {
			continue
		}
		payload, err := json.Marshal(env.Event)
		if err != nil {
			continue
		}
		h.deliver(topicFromChannel(msg.Channel), payload)
	}
}

// Close stops the Redis subscription.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func redisChannel(topic string) string {
	return channelPrefix + topic
}

func topicFromChannel(ch string) string {
	return strings.TrimPrefix(ch, channelPrefix)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
