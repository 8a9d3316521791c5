// Package messaging carries calculation events over MQTT.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

// Event is the payload published for every recorded calculation.
type Event struct {
	EventID   string          `json:"eventId"`
	Kind      string          `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent wraps calc with a fresh event id.
func NewEvent(calc domain.Calculation) Event {
	return Event{
		EventID:   uuid.NewString(),
		Kind:      calc.Kind,
		Input:     json.RawMessage(calc.Input),
		Result:    json.RawMessage(calc.Result),
		CreatedAt: calc.CreatedAt,
	}
}

// Calculation converts the event back into an audit row.
func (e Event) Calculation() domain.Calculation {
	return domain.Calculation{
		Kind:      e.Kind,
		Input:     []byte(e.Input),
		Result:    []byte(e.Result),
		CreatedAt: e.CreatedAt,
	}
}

var ErrInvalidEvent = errors.New("invalid calculation event")

// DecodeEvent parses an MQTT payload.
func DecodeEvent(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	switch e.Kind {
	case domain.KindFlatRate, domain.KindLoadProfile:
	default:
		return Event{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if len(e.Input) == 0 || len(e.Result) == 0 {
		return Event{}, fmt.Errorf("%w: missing input or result", ErrInvalidEvent)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return e, nil
}

// Connect dials broker and blocks until the session is up.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetAutoReconnect(true)
	if clientID != "" {
		opts.SetClientID(clientID)
	}
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher is an audit.Sink that publishes each calculation as an Event.
type Publisher struct {
	client publisher
	topic  string
}

func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Append publishes at QoS 1 and waits for the broker ack or ctx.
func (p *Publisher) Append(ctx context.Context, calc domain.Calculation) error {
	payload, err := json.Marshal(NewEvent(calc))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	token := p.client.Publish(p.topic, 1, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
