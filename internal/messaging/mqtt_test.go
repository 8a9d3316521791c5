package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	topic   string
	qos     byte
	payload []byte
	token   *fakeToken
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic, c.qos = topic, qos
	c.payload = payload.([]byte)
	return c.token
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func TestPublisherAppend(t *testing.T) {
	client := &fakeClient{token: doneToken(nil)}
	p := &Publisher{client: client, topic: "calculations/audit"}
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	calc := domain.Calculation{Kind: domain.KindFlatRate, Input: []byte(`{"motors":1}`), Result: []byte(`{"annualROI":"Infinity"}`), CreatedAt: ts}

	require.NoError(t, p.Append(context.Background(), calc))
	assert.Equal(t, "calculations/audit", client.topic)
	assert.Equal(t, byte(1), client.qos)

	event, err := DecodeEvent(client.payload)
	require.NoError(t, err)
	assert.NotEmpty(t, event.EventID)
	got := event.Calculation()
	assert.Equal(t, domain.KindFlatRate, got.Kind)
	assert.JSONEq(t, `{"motors":1}`, string(got.Input))
	assert.JSONEq(t, `{"annualROI":"Infinity"}`, string(got.Result))
	assert.True(t, ts.Equal(got.CreatedAt))
}

func TestPublisherAppendErrors(t *testing.T) {
	p := &Publisher{client: &fakeClient{token: doneToken(errors.New("not connected"))}, topic: "x"}
	err := p.Append(context.Background(), domain.Calculation{Kind: domain.KindFlatRate})
	assert.ErrorContains(t, err, "mqtt publish: not connected")

	pending := &fakeToken{done: make(chan struct{})}
	p = &Publisher{client: &fakeClient{token: pending}, topic: "x"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Append(ctx, domain.Calculation{Kind: domain.KindFlatRate}), context.Canceled)
}

func TestNewEventIDsAreUnique(t *testing.T) {
	calc := domain.Calculation{Kind: domain.KindLoadProfile}
	assert.NotEqual(t, NewEvent(calc).EventID, NewEvent(calc).EventID)
}

func TestDecodeEvent(t *testing.T) {
	_, err := DecodeEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = DecodeEvent([]byte(`{"kind":"readings","input":{},"result":{}}`))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = DecodeEvent([]byte(`{"kind":"flat_rate","input":{}}`))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	e, err := DecodeEvent([]byte(`{"eventId":"e1","kind":"load_profile","input":{"hp":100},"result":{"kw":74.6}}`))
	require.NoError(t, err)
	assert.Equal(t, "e1", e.EventID)
	assert.False(t, e.CreatedAt.IsZero())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"input":{"hp":100}`)
}
