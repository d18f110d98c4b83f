package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	channel string
	text    string
	ctxErr  error
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []sent
	err   error
	delay time.Duration
}

func (f *fakeSender) Send(ctx context.Context, channelID, text string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{channel: channelID, text: text, ctxErr: ctx.Err()})
	return f.err
}

func (f *fakeSender) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	topics    []string
	payloads  []interface{}
	err       error
}

func (p *fakePublisher) Publish(topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *fakePublisher) IsConnected() bool { return p.connected }

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver(map[string]string{"g1": "c1", "g2": ""}, "")

	ch, ok := r.Resolve("g1")
	assert.True(t, ok)
	assert.Equal(t, "c1", ch)

	_, ok = r.Resolve("g2")
	assert.False(t, ok)

	_, ok = r.Resolve("unknown")
	assert.False(t, ok)

	r = NewStaticResolver(nil, "fallback")
	ch, ok = r.Resolve("anything")
	assert.True(t, ok)
	assert.Equal(t, "fallback", ch)
}

func TestStaticResolverCopiesMap(t *testing.T) {
	m := map[string]string{"g1": "c1"}
	r := NewStaticResolver(m, "")
	m["g1"] = "changed"

	ch, _ := r.Resolve("g1")
	assert.Equal(t, "c1", ch)
}

func TestEmitDelivers(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier(NewStaticResolver(map[string]string{"g1": "c1"}, ""), s, time.Second, nil)

	n.Emit(context.Background(), "g1", "Warned <@u1> for: spam")
	n.Wait()

	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "c1", msgs[0].channel)
	assert.Equal(t, "Warned <@u1> for: spam", msgs[0].text)
}

func TestEmitUnresolvedIsSkipped(t *testing.T) {
	s := &fakeSender{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := NewNotifier(NewStaticResolver(nil, ""), s, time.Second, m)

	n.Emit(context.Background(), "g1", "hello")
	n.Wait()

	assert.Empty(t, s.messages())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AuditFailures))
}

func TestEmitSurvivesCallerCancellation(t *testing.T) {
	s := &fakeSender{delay: 30 * time.Millisecond}
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	n.Emit(ctx, "g1", "hello")
	cancel()
	n.Wait()

	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.NoError(t, msgs[0].ctxErr, "delivery context must not inherit caller cancellation")
}

func TestEmitReturnsBeforeDelivery(t *testing.T) {
	s := &fakeSender{delay: 200 * time.Millisecond}
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, nil)

	start := time.Now()
	n.Emit(context.Background(), "g1", "hello")
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	n.Wait()
}

func TestEmitFailureIsCounted(t *testing.T) {
	s := &fakeSender{err: errors.New("Missing Access")}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, m)

	n.Emit(context.Background(), "g1", "hello")
	n.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditFailures))
}

func TestDeliverWrapsFailure(t *testing.T) {
	s := &fakeSender{err: errors.New("Missing Access")}
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, nil)

	err := n.Deliver(context.Background(), "g1", "hello")
	assert.ErrorIs(t, err, ErrNotifierFailure)
	assert.Contains(t, err.Error(), "Missing Access")
}

func TestDeliverPublishesToSinks(t *testing.T) {
	s := &fakeSender{}
	pub := &fakePublisher{connected: true}
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, nil, NewMQTTSink(pub, ""))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	require.NoError(t, n.Deliver(context.Background(), "g1", "hello"))

	require.Len(t, pub.topics, 1)
	assert.Equal(t, DefaultTopic, pub.topics[0])
	ev, ok := pub.payloads[0].(Event)
	require.True(t, ok)
	assert.Equal(t, "g1", ev.GuildID)
	assert.Equal(t, "c1", ev.ChannelID)
	assert.Equal(t, "hello", ev.Message)
	assert.Equal(t, fixed, ev.Timestamp)
	assert.NotEmpty(t, ev.ID)
}

func TestDisconnectedSinkFailsButChannelStillSent(t *testing.T) {
	s := &fakeSender{}
	pub := &fakePublisher{connected: false}
	n := NewNotifier(NewStaticResolver(nil, "c1"), s, time.Second, nil, NewMQTTSink(pub, "custom/topic"))

	err := n.Deliver(context.Background(), "g1", "hello")
	assert.ErrorIs(t, err, ErrNotifierFailure)
	assert.Len(t, s.messages(), 1)
	assert.Empty(t, pub.topics)
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.Emit(context.Background(), "g1", "hello")
		n.Wait()
	})
}
