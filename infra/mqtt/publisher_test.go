package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/patrolsim/core/factory"
	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts         *paho.ClientOptions
	connectErr   error
	published    []published
	publishErrs  []error
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return !m.disconnected }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) { m.disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestPublisher_RecordRun(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	rec := coremetrics.RunRecord{RunID: "r1", Year: 2016, Month: 3, Day: 12, Agents: 5, Mishandled: 4}
	if err := p.RecordRun(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected one message, got %d", len(mc.published))
	}
	msg := mc.published[0]
	if msg.topic != "patrolsim/runs" || msg.qos != 1 || !msg.retain {
		t.Fatalf("unexpected publish %+v", msg)
	}
	var got coremetrics.RunRecord
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.RunID != "r1" || got.Mishandled != 4 || got.Agents != 5 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublisher_GraphAndSweepTopics(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "denver"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	_ = p.RecordGraph(coremetrics.GraphEvent{Year: 2016, Vertices: 7, Edges: 21})
	_ = p.RecordSweep(nil)
	_ = p.RecordSweep([]coremetrics.SweepPoint{{Agents: 1}, {Agents: 2}})
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mc.published))
	}
	if mc.published[0].topic != "denver/graphs" || mc.published[1].topic != "denver/sweeps" {
		t.Fatalf("unexpected topics %q %q", mc.published[0].topic, mc.published[1].topic)
	}
	var pts []coremetrics.SweepPoint
	if err := json.Unmarshal(mc.published[1].payload, &pts); err != nil || len(pts) != 2 {
		t.Fatalf("sweep payload %s: %v", mc.published[1].payload, err)
	}
}

func TestPublisher_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	withMock(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := p.RecordRun(coremetrics.RunRecord{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected a retry, got %d attempts", len(mc.published))
	}
}

func TestPublisher_RetryExhausted(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMock(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := p.RecordRun(coremetrics.RunRecord{}); !errors.Is(err, fail) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestPublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	withMock(t, mc)
	if _, err := NewPublisher(Config{Broker: "tcp://localhost:1883"}); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestPublisher_FlushDisconnects(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", LWTTopic: "patrolsim/status", LWTPayload: "offline"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if !mc.opts.WillEnabled || mc.opts.WillTopic != "patrolsim/status" {
		t.Fatalf("will not configured")
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !mc.disconnected {
		t.Fatalf("expected disconnect")
	}
}

func TestFactoryCreatesPublisher(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "mqtt",
		Conf: map[string]any{"broker": "tcp://localhost:1883", "qos": "1", "topic_prefix": "sim"},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, ok := s.(*Publisher)
	if !ok {
		t.Fatalf("expected *Publisher, got %T", s)
	}
	if p.qos != 1 || p.Topic(TopicRuns) != "sim/runs" {
		t.Fatalf("config not decoded: qos=%d topic=%s", p.qos, p.Topic(TopicRuns))
	}
}
